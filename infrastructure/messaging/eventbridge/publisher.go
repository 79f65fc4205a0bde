// Package eventbridge implements the sync event publisher using AWS
// EventBridge. Subscriptions are configured externally through Rules and
// Targets, so this side only writes.
package eventbridge

import (
	"context"
	"encoding/json"
	"fmt"

	"gangablog-backend/application/ports"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
	"go.uber.org/zap"
)

// EventSource identifies this service on the bus
const EventSource = "gangablog.sync"

// Publisher implements ports.EventPublisher using AWS EventBridge
type Publisher struct {
	client       *eventbridge.Client
	eventBusName string
	logger       *zap.Logger
}

var _ ports.EventPublisher = (*Publisher)(nil)

// NewPublisher creates a new EventBridge publisher
func NewPublisher(client *eventbridge.Client, eventBusName string, logger *zap.Logger) *Publisher {
	return &Publisher{
		client:       client,
		eventBusName: eventBusName,
		logger:       logger,
	}
}

// Publish sends a single sync event to EventBridge
func (p *Publisher) Publish(ctx context.Context, event ports.SyncEvent) error {
	return p.PublishBatch(ctx, []ports.SyncEvent{event})
}

// PublishBatch sends multiple sync events to EventBridge
func (p *Publisher) PublishBatch(ctx context.Context, events []ports.SyncEvent) error {
	if len(events) == 0 {
		return nil
	}

	// EventBridge limits to 10 events per PutEvents call
	const batchSize = 10

	for i := 0; i < len(events); i += batchSize {
		end := i + batchSize
		if end > len(events) {
			end = len(events)
		}
		if err := p.publishBatch(ctx, events[i:end]); err != nil {
			return err
		}
	}

	return nil
}

func (p *Publisher) publishBatch(ctx context.Context, events []ports.SyncEvent) error {
	entries := make([]types.PutEventsRequestEntry, 0, len(events))

	for _, event := range events {
		detail, err := json.Marshal(event)
		if err != nil {
			p.logger.Error("Failed to marshal sync event",
				zap.Error(err),
				zap.String("eventType", string(event.Type)),
			)
			continue
		}

		entries = append(entries, types.PutEventsRequestEntry{
			EventBusName: aws.String(p.eventBusName),
			Source:       aws.String(EventSource),
			DetailType:   aws.String("content." + string(event.Type)),
			Detail:       aws.String(string(detail)),
			Time:         aws.Time(event.OccurredAt),
			Resources: []string{
				fmt.Sprintf("arn:aws:gangablog::%s", event.ItemID),
			},
		})
	}

	if len(entries) == 0 {
		return nil
	}

	result, err := p.client.PutEvents(ctx, &eventbridge.PutEventsInput{
		Entries: entries,
	})
	if err != nil {
		return fmt.Errorf("failed to publish events to EventBridge: %w", err)
	}

	if result.FailedEntryCount > 0 {
		for i, entry := range result.Entries {
			if entry.ErrorCode != nil {
				p.logger.Error("Failed to publish sync event",
					zap.String("eventType", string(events[i].Type)),
					zap.String("errorCode", *entry.ErrorCode),
					zap.String("errorMessage", aws.ToString(entry.ErrorMessage)),
				)
			}
		}
		return fmt.Errorf("%d events failed to publish", result.FailedEntryCount)
	}

	p.logger.Debug("Sync events published to EventBridge",
		zap.Int("count", len(entries)),
		zap.String("eventBus", p.eventBusName),
	)

	return nil
}

// The sync worker consumes publication events from EventBridge and drives
// the same synchronization pipeline the HTTP trigger does. CMS webhooks
// land on the bus; this function is its rule target.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"gangablog-backend/application/ports"
	"gangablog-backend/infrastructure/di"
	appErrors "gangablog-backend/pkg/errors"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"
)

var container *di.Container

// publicationDetail is the EventBridge detail payload for CMS publication
// events
type publicationDetail struct {
	ItemID string `json:"itemId"`
	Event  string `json:"event"`
}

func init() {
	start := time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var err error
	container, err = di.InitializeContainer(ctx)
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}

	log.Printf("Sync worker cold start completed in %v", time.Since(start))
}

// Handler processes one publication event
func Handler(ctx context.Context, event events.CloudWatchEvent) error {
	var detail publicationDetail
	if err := json.Unmarshal(event.Detail, &detail); err != nil {
		container.Logger.Error("Malformed event detail, dropping",
			zap.String("eventId", event.ID), zap.Error(err))
		// Malformed input will never succeed on retry.
		return nil
	}
	if detail.ItemID == "" {
		container.Logger.Error("Event detail missing itemId, dropping",
			zap.String("eventId", event.ID))
		return nil
	}

	err := container.Sync.Sync(ctx, detail.ItemID, ports.SyncEventType(detail.Event))
	switch {
	case err == nil:
		return nil
	case appErrors.IsValidation(err):
		container.Logger.Error("Invalid sync event, dropping",
			zap.String("itemId", detail.ItemID),
			zap.String("event", detail.Event),
			zap.Error(err))
		return nil
	case appErrors.IsPartialSync(err):
		// The artifact landed; retry only the index rather than re-render.
		container.Logger.Warn("Partial sync, retrying site index",
			zap.String("itemId", detail.ItemID), zap.Error(err))
		if retryErr := container.Sync.RegenerateIndex(ctx); retryErr != nil {
			return fmt.Errorf("site index retry failed: %w", retryErr)
		}
		return nil
	default:
		// Returning the error lets EventBridge redrive the event.
		return fmt.Errorf("sync of item %s failed: %w", detail.ItemID, err)
	}
}

func main() {
	lambda.Start(Handler)
}

package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Error_IncludesContext(t *testing.T) {
	err := NewPartialSync("index regeneration failed", stderrors.New("timeout")).
		WithContext("item-1", "best-slots-tips", "siteindex")

	msg := err.Error()
	assert.Contains(t, msg, "PARTIAL_SYNC")
	assert.Contains(t, msg, "best-slots-tips")
	assert.Contains(t, msg, "siteindex")
	assert.Contains(t, msg, "timeout")
}

func TestWrap_PreservesType(t *testing.T) {
	inner := NewFetch("record unreadable", stderrors.New("conn refused")).
		WithContext("item-2", "my-slug", "fetch")

	wrapped := Wrap(inner, "publish failed")

	require.True(t, IsFetch(wrapped))
	assert.False(t, IsInternal(wrapped))

	var appErr *AppError
	require.True(t, stderrors.As(wrapped, &appErr))
	assert.Equal(t, "my-slug", appErr.Slug)
}

func TestWrap_NilPassthrough(t *testing.T) {
	assert.NoError(t, Wrap(nil, "should stay nil"))
}

func TestTypePredicates(t *testing.T) {
	cases := []struct {
		err  error
		pred func(error) bool
	}{
		{NewFetch("f", nil), IsFetch},
		{NewArtifactWrite("w", nil), IsArtifactWrite},
		{NewPartialSync("p", nil), IsPartialSync},
		{NewUpstreamFetch("u", nil), IsUpstreamFetch},
		{NewNotFound("n"), IsNotFound},
		{NewValidation("v"), IsValidation},
		{NewInternal("i", nil), IsInternal},
	}

	for _, tc := range cases {
		assert.True(t, tc.pred(tc.err), tc.err.Error())
	}

	// Predicates see through plain fmt wrapping too.
	deep := fmt.Errorf("outer: %w", NewUpstreamFetch("lookup failed", nil))
	assert.True(t, IsUpstreamFetch(deep))
	assert.False(t, IsNotFound(deep))
}

func TestStaleCacheWarning_IsSentinel(t *testing.T) {
	err := fmt.Errorf("surface home:hero: %w", StaleCacheWarning)
	assert.True(t, stderrors.Is(err, StaleCacheWarning))
}

package cache

import (
	"context"
	"testing"
	"time"
)

func TestGetPredictions_NilCacheIsMiss(t *testing.T) {
	var c *SnapshotCache

	if _, ok := c.GetPredictions(context.Background(), 12); ok {
		t.Error("Nil cache reported a hit")
	}

	// Writing to a nil cache must be a no-op, not a panic.
	c.SetPredictions(context.Background(), 12, []byte(`{}`))
}

func TestGetPredictions_NilClientIsMiss(t *testing.T) {
	c := New(nil, time.Minute)

	if _, ok := c.GetPredictions(context.Background(), 3); ok {
		t.Error("Cache without a client reported a hit")
	}

	c.SetPredictions(context.Background(), 3, []byte(`{}`))
}

func TestPredictionKey(t *testing.T) {
	if got := predictionKey(7); got != "predictions:hour:7" {
		t.Errorf("predictionKey(7) = %q, want predictions:hour:7", got)
	}
}

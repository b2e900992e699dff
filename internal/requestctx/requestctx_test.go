package requestctx

import (
	"context"
	"testing"

	"go.uber.org/zap"
)

func TestRequestID(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-42")
	if got := GetRequestID(ctx); got != "req-42" {
		t.Fatalf("expected req-42, got %q", got)
	}
	if got := GetRequestID(context.Background()); got != "" {
		t.Fatalf("expected empty id, got %q", got)
	}
}

func TestLogger(t *testing.T) {
	if Logger(context.Background()) == nil {
		t.Fatal("expected no-op logger")
	}
	base := zap.NewExample()
	if Logger(WithLogger(context.Background(), base)) != base {
		t.Fatal("expected stored logger")
	}
}

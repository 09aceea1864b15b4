package tracing

import (
	"context"
	"testing"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestInit_WithoutEndpointIsNoop(t *testing.T) {
	p, err := Init(context.Background(), Config{ServiceName: "medication-timeline"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := p.Shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}

	var nilProvider *Provider
	if err := nilProvider.Shutdown(context.Background()); err != nil {
		t.Fatalf("nil provider shutdown: %v", err)
	}
}

func TestSampler(t *testing.T) {
	if got := sampler(1).Description(); got != sdktrace.AlwaysSample().Description() {
		t.Fatalf("expected always sample, got %s", got)
	}
	if got := sampler(0).Description(); got != sdktrace.NeverSample().Description() {
		t.Fatalf("expected never sample, got %s", got)
	}
}

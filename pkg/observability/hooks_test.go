package observability

import (
	"context"
	"testing"
	"time"
)

type recordingPipelineHooks struct {
	NoopPipelineHooks
	loads   int
	renders int
}

func (h *recordingPipelineHooks) OnLoadStart(context.Context, string, string) {
	h.loads++
}

func (h *recordingPipelineHooks) OnRenderStart(context.Context, string, int) {
	h.renders++
}

type recordingCacheHooks struct {
	NoopCacheHooks
	hits int
}

func (h *recordingCacheHooks) OnCacheHit(context.Context, string) {
	h.hits++
}

func TestDefaultsAreNoop(t *testing.T) {
	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Errorf("Pipeline() = %T, want NoopPipelineHooks", Pipeline())
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Errorf("Cache() = %T, want NoopCacheHooks", Cache())
	}

	// Noop hooks must be safe to call.
	ctx := context.Background()
	Pipeline().OnLoadStart(ctx, "local", "pipeline")
	Pipeline().OnLoadComplete(ctx, "local", "pipeline", 3, time.Millisecond, nil)
	Pipeline().OnRenderStart(ctx, "text", 3)
	Pipeline().OnRenderComplete(ctx, "text", 5, time.Millisecond, nil)
	Cache().OnCacheHit(ctx, "graph")
	Cache().OnCacheMiss(ctx, "graph")
	Cache().OnCacheSet(ctx, "graph", 128)
}

func TestSetPipelineHooks(t *testing.T) {
	t.Cleanup(func() { SetPipelineHooks(NoopPipelineHooks{}) })

	h := &recordingPipelineHooks{}
	SetPipelineHooks(h)

	Pipeline().OnLoadStart(context.Background(), "local", "pipeline")
	Pipeline().OnRenderStart(context.Background(), "text", 3)

	if h.loads != 1 || h.renders != 1 {
		t.Errorf("loads = %d, renders = %d, want 1 and 1", h.loads, h.renders)
	}
}

func TestSetCacheHooks(t *testing.T) {
	t.Cleanup(func() { SetCacheHooks(NoopCacheHooks{}) })

	h := &recordingCacheHooks{}
	SetCacheHooks(h)

	Cache().OnCacheHit(context.Background(), "graph")
	Cache().OnCacheHit(context.Background(), "graph")

	if h.hits != 2 {
		t.Errorf("hits = %d, want 2", h.hits)
	}
}

func TestSetHooksIgnoresNil(t *testing.T) {
	SetPipelineHooks(nil)
	SetCacheHooks(nil)

	if Pipeline() == nil || Cache() == nil {
		t.Fatal("nil registration replaced the active hooks")
	}
}

package beacon

import (
	"context"
	"testing"
)

func TestRouteContext(t *testing.T) {
	if _, ok := RouteFromContext(context.Background()); ok {
		t.Error("bare context should carry no route")
	}

	ctx := WithRoute(context.Background(), "/rewards")
	route, ok := RouteFromContext(ctx)
	if !ok || route != "/rewards" {
		t.Errorf("route = %q, %v", route, ok)
	}
}

func TestSessionIDContext(t *testing.T) {
	ctx := WithSessionID(context.Background(), "sess-9")
	id, ok := SessionIDFromContext(ctx)
	if !ok || id != "sess-9" {
		t.Errorf("session = %q, %v", id, ok)
	}
}

// recover.go provides the Recover helper for panic capture.
// Use this in HTTP handlers, goroutines, or other code outside the UI layer.

package beacon

import (
	"context"
	"fmt"
)

// Recover captures a panic, tracks it as a fatal event, and returns the
// recovered value without re-panicking.
//
// Use in defer:
//
//	func handler(ctx context.Context) {
//	    defer beacon.Recover(ctx, client)
//	    // code that might panic
//	}
func Recover(ctx context.Context, client *Client) any {
	r := recover()
	if r == nil {
		return nil
	}

	client.Track(ctx, CaptureRequest{
		EventType: string(EventError),
		Level:     string(LevelFatal),
		Message:   formatRecovered(r),
		Error:     &ErrorInfo{Code: "panic", Name: fmt.Sprintf("%T", r)},
	})

	return r
}

func formatRecovered(recovered any) string {
	if recovered == nil {
		return "<nil>"
	}
	if err, ok := recovered.(error); ok {
		return err.Error()
	}
	return fmt.Sprintf("%v", recovered)
}

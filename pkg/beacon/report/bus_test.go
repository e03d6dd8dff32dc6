package report

import "testing"

func TestBus_DeliversInSubscriptionOrder(t *testing.T) {
	b := NewBus()
	var got []string

	b.Subscribe(func(Event) { got = append(got, "first") })
	b.Subscribe(func(Event) { got = append(got, "second") })
	b.Publish(Event{Type: "error"})

	if len(got) != 2 || got[0] != "first" || got[1] != "second" {
		t.Errorf("delivery order = %v", got)
	}
}

func TestBus_CancelStopsDelivery(t *testing.T) {
	b := NewBus()
	calls := 0

	cancel := b.Subscribe(func(Event) { calls++ })
	b.Publish(Event{})
	cancel()
	cancel() // second cancel is harmless
	b.Publish(Event{})

	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestBus_PublishWithNoSubscribers(t *testing.T) {
	NewBus().Publish(Event{Type: "error"}) // must not panic
}

func TestBus_SubscribeDuringDelivery(t *testing.T) {
	b := NewBus()
	lateCalls := 0

	b.Subscribe(func(Event) {
		b.Subscribe(func(Event) { lateCalls++ })
	})
	b.Publish(Event{})
	if lateCalls != 0 {
		t.Error("a subscriber added mid-delivery must not see the current event")
	}

	b.Publish(Event{})
	if lateCalls != 1 {
		t.Errorf("late subscriber calls = %d, want 1", lateCalls)
	}
}

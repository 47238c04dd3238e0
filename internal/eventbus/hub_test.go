package eventbus

import (
	"context"
	"testing"
	"time"
)

func TestHubPublishSubscribe(t *testing.T) {
	h := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	ch := h.Subscribe(ctx, 4)

	h.Publish(Event{Type: ActionStarted, Data: map[string]any{"actionId": "chop"}})
	select {
	case evt := <-ch:
		if evt.Type != ActionStarted || evt.Timestamp == 0 || evt.Data["actionId"] != "chop" {
			t.Fatalf("evt=%+v", evt)
		}
	case <-time.After(time.Second):
		t.Fatalf("event not delivered")
	}

	cancel()
	for range ch {
	}
	if h.Subscribers() != 0 {
		t.Fatalf("subscribers=%d after cancel", h.Subscribers())
	}
}

func TestHubDropsForSlowSubscriber(t *testing.T) {
	h := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch := h.Subscribe(ctx, 1)

	for i := 0; i < 5; i++ {
		h.Publish(Event{Type: ActionProgress})
	}
	if len(ch) != 1 {
		t.Fatalf("buffered=%d, want 1", len(ch))
	}
	if h.Dropped() != 4 {
		t.Fatalf("dropped=%d, want 4", h.Dropped())
	}
}

func TestHubTopicFilter(t *testing.T) {
	h := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	skills := h.Subscribe(ctx, 8, "skill", " ")
	all := h.Subscribe(ctx, 8)

	h.Publish(Event{Type: ActionCompleted})
	h.Publish(Event{Type: SkillLeveledUp})
	h.Publish(Event{Type: ResourceReward})

	if len(skills) != 1 || len(all) != 3 {
		t.Fatalf("skills=%d all=%d, want 1 and 3", len(skills), len(all))
	}
	if evt := <-skills; evt.Type != SkillLeveledUp {
		t.Fatalf("evt=%+v", evt)
	}
}

func TestEventTopic(t *testing.T) {
	cases := map[string]string{
		ActionStarted:     "action",
		GameOfflineReplay: "game",
		"plain":           "plain",
	}
	for typ, want := range cases {
		if got := (Event{Type: typ}).Topic(); got != want {
			t.Fatalf("Topic(%q)=%q, want %q", typ, got, want)
		}
	}
}

func TestNilHubPublishIsNoop(t *testing.T) {
	var h *Hub
	h.Publish(Event{Type: ActionStopped})
}

package eventbus

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

type Event struct {
	Type      string         `json:"type"`
	Timestamp int64          `json:"timestamp"`
	Data      map[string]any `json:"data,omitempty"`
}

// Topic 事件类型冒号前的部分，如 "action:started" -> "action"
func (e Event) Topic() string {
	topic, _, _ := strings.Cut(e.Type, ":")
	return topic
}

type subscriber struct {
	ch     chan Event
	topics map[string]bool // 为空表示全部
}

func (s *subscriber) wants(evt Event) bool {
	return len(s.topics) == 0 || s.topics[evt.Topic()]
}

// Hub 进程内广播，只做通知，订阅方的处理结果不回流
// Publish 在 tick goroutine 上调用，永不阻塞：订阅方缓冲满时丢弃
type Hub struct {
	mu      sync.RWMutex
	subs    map[*subscriber]struct{}
	dropped atomic.Int64
}

func NewHub() *Hub {
	return &Hub{subs: make(map[*subscriber]struct{})}
}

func (h *Hub) Publish(evt Event) {
	if h == nil {
		return
	}
	if evt.Timestamp == 0 {
		evt.Timestamp = time.Now().UnixMilli()
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for s := range h.subs {
		if !s.wants(evt) {
			continue
		}
		select {
		case s.ch <- evt:
		default:
			h.dropped.Add(1)
		}
	}
}

// Subscribe 订阅事件直到 ctx 取消；topics 为空时接收全部主题
func (h *Hub) Subscribe(ctx context.Context, buffer int, topics ...string) <-chan Event {
	if buffer <= 0 {
		buffer = 16
	}
	s := &subscriber{ch: make(chan Event, buffer)}
	for _, t := range topics {
		if t = strings.TrimSpace(t); t != "" {
			if s.topics == nil {
				s.topics = make(map[string]bool)
			}
			s.topics[t] = true
		}
	}

	h.mu.Lock()
	h.subs[s] = struct{}{}
	h.mu.Unlock()

	go func() {
		<-ctx.Done()
		h.mu.Lock()
		delete(h.subs, s)
		h.mu.Unlock()
		close(s.ch)
	}()

	return s.ch
}

// Subscribers 当前订阅数
func (h *Hub) Subscribers() int {
	if h == nil {
		return 0
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Dropped 因订阅方缓冲满而丢弃的事件总数
func (h *Hub) Dropped() int64 {
	if h == nil {
		return 0
	}
	return h.dropped.Load()
}

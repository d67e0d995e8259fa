package widget

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/debemdeboas/inkwell/internal/push"
	"github.com/debemdeboas/inkwell/internal/store"
)

// Trigger is one independent signal that the widget should reload. Start must
// return once the trigger is listening; goroutines it starts are registered on
// wg and must exit when ctx is done.
type Trigger interface {
	Name() string
	Start(ctx context.Context, wg *sync.WaitGroup, request func(Reason)) error
}

// StoreTrigger reloads when the store reports a change to a document key:
// one of the recognized keys or any key passed to NewStoreTrigger.
type StoreTrigger struct {
	kv   store.KV
	keys []string
}

func NewStoreTrigger(kv store.KV, keys ...string) *StoreTrigger {
	return &StoreTrigger{kv: kv, keys: keys}
}

func (t *StoreTrigger) watches(key string) bool {
	return store.IsRecognizedKey(key) || slices.Contains(t.keys, key)
}

func (t *StoreTrigger) Name() string { return string(ReasonStore) }

func (t *StoreTrigger) Start(ctx context.Context, wg *sync.WaitGroup, request func(Reason)) error {
	changes, err := t.kv.Watch(ctx)
	if err != nil {
		return err
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case change, ok := <-changes:
				if !ok {
					return
				}
				if !t.watches(change.Key) {
					continue
				}
				request(ReasonStore)
			}
		}
	}()
	return nil
}

// MessageTrigger reloads on a documents-changed message from an allowed origin.
type MessageTrigger struct {
	messenger      push.Messenger
	target         string
	allowedOrigins []string
}

func NewMessageTrigger(messenger push.Messenger, target string, allowedOrigins []string) *MessageTrigger {
	return &MessageTrigger{
		messenger:      messenger,
		target:         target,
		allowedOrigins: allowedOrigins,
	}
}

func (t *MessageTrigger) Name() string { return string(ReasonMessage) }

func (t *MessageTrigger) Accepts(msg push.Message) bool {
	if msg.Type != push.TypeDocumentsChanged {
		return false
	}
	return slices.Contains(t.allowedOrigins, "*") || slices.Contains(t.allowedOrigins, msg.Origin)
}

func (t *MessageTrigger) Start(ctx context.Context, wg *sync.WaitGroup, request func(Reason)) error {
	messages, err := t.messenger.Subscribe(ctx, t.target)
	if err != nil {
		return err
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-messages:
				if !ok {
					return
				}
				if !t.Accepts(msg) {
					widgetLogger.Debug().Str("type", msg.Type).Str("origin", msg.Origin).Msg("Ignoring message")
					continue
				}
				request(ReasonMessage)
			}
		}
	}()
	return nil
}

// PollTrigger reloads at a fixed interval.
type PollTrigger struct {
	interval time.Duration
}

func NewPollTrigger(interval time.Duration) *PollTrigger {
	return &PollTrigger{interval: interval}
}

func (t *PollTrigger) Name() string { return string(ReasonPoll) }

func (t *PollTrigger) Start(ctx context.Context, wg *sync.WaitGroup, request func(Reason)) error {
	ticker := time.NewTicker(t.interval)

	wg.Add(1)
	go func() {
		defer wg.Done()
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				request(ReasonPoll)
			}
		}
	}()
	return nil
}

// VisibilityTrigger reloads when the host goes from hidden to visible.
type VisibilityTrigger struct {
	mu      sync.Mutex
	visible bool
	request func(Reason)
}

func NewVisibilityTrigger() *VisibilityTrigger {
	return &VisibilityTrigger{visible: true}
}

func (t *VisibilityTrigger) Name() string { return string(ReasonVisibility) }

func (t *VisibilityTrigger) Start(ctx context.Context, wg *sync.WaitGroup, request func(Reason)) error {
	t.mu.Lock()
	t.request = request
	t.mu.Unlock()

	wg.Add(1)
	go func() {
		defer wg.Done()
		<-ctx.Done()

		t.mu.Lock()
		t.request = nil
		t.mu.Unlock()
	}()
	return nil
}

func (t *VisibilityTrigger) Visible() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.visible
}

func (t *VisibilityTrigger) SetVisible(visible bool) {
	t.mu.Lock()
	shown := visible && !t.visible
	t.visible = visible
	request := t.request
	t.mu.Unlock()

	if shown && request != nil {
		request(ReasonVisibility)
	}
}

package push

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

const receiveTimeout = 2 * time.Second

func receive(t *testing.T, ch <-chan Message) Message {
	t.Helper()
	select {
	case msg, ok := <-ch:
		if !ok {
			t.Fatal("Channel closed unexpectedly")
		}
		return msg
	case <-time.After(receiveTimeout):
		t.Fatal("Timeout waiting for message")
	}
	return Message{}
}

func messengers(t *testing.T) map[string]Messenger {
	s := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { client.Close() })

	return map[string]Messenger{
		"broker": NewBroker(),
		"redis":  NewRedisMessengerWithClient(client, "test:"),
	}
}

func TestMessengers(t *testing.T) {
	for name, m := range messengers(t) {
		t.Run(name, func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			t.Run("No receivers", func(t *testing.T) {
				err := m.Send(ctx, "nobody", Message{Type: TypeDocumentsChanged})
				if !errors.Is(err, ErrUndelivered) {
					t.Errorf("Expected ErrUndelivered, got %v", err)
				}
			})

			ch, err := m.Subscribe(ctx, "widget")
			if err != nil {
				t.Fatalf("Subscribe failed: %v", err)
			}
			other, err := m.Subscribe(ctx, "other-widget")
			if err != nil {
				t.Fatalf("Subscribe failed: %v", err)
			}

			t.Run("Delivered to target only", func(t *testing.T) {
				if err := m.Send(ctx, "widget", Message{Type: TypeDocumentsChanged, Origin: "editor", DocumentID: 7}); err != nil {
					t.Fatalf("Send failed: %v", err)
				}

				msg := receive(t, ch)
				if msg.Type != TypeDocumentsChanged || msg.Origin != "editor" || msg.DocumentID != 7 {
					t.Errorf("Unexpected message %+v", msg)
				}

				select {
				case msg := <-other:
					t.Errorf("Expected nothing on another target, got %+v", msg)
				case <-time.After(50 * time.Millisecond):
				}
			})

			t.Run("Subscription ends with its context", func(t *testing.T) {
				sctx, scancel := context.WithCancel(ctx)
				sub, err := m.Subscribe(sctx, "short-lived")
				if err != nil {
					t.Fatalf("Subscribe failed: %v", err)
				}
				scancel()

				select {
				case _, ok := <-sub:
					if ok {
						t.Error("Expected channel to be closed")
					}
				case <-time.After(receiveTimeout):
					t.Fatal("Subscription was not closed")
				}
			})
		})
	}
}

func TestBrokerDropsForSlowClients(t *testing.T) {
	b := NewBroker()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if _, err := b.Subscribe(ctx, "w"); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < clientBuffer; i++ {
		if err := b.Send(ctx, "w", Message{Type: TypeDocumentsChanged}); err != nil {
			t.Fatalf("Send %d failed: %v", i, err)
		}
	}

	done := make(chan error, 1)
	go func() { done <- b.Send(ctx, "w", Message{Type: TypeDocumentsChanged}) }()

	select {
	case err := <-done:
		if !errors.Is(err, ErrUndelivered) {
			t.Errorf("Expected ErrUndelivered for a full client, got %v", err)
		}
	case <-time.After(receiveTimeout):
		t.Fatal("Send blocked on a slow client")
	}
}

func TestNotifier(t *testing.T) {
	b := NewBroker()
	n := NewNotifier(b, "social-hub", "inkwell-editor")

	// Without a listener the failure is swallowed.
	n.DocumentsChanged(context.Background(), 1)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch, _ := b.Subscribe(ctx, "social-hub")

	n.DocumentsChanged(ctx, 42)

	msg := receive(t, ch)
	want := Message{Type: TypeDocumentsChanged, Origin: "inkwell-editor", DocumentID: 42}
	if msg.Type != want.Type || msg.Origin != want.Origin || msg.DocumentID != want.DocumentID {
		t.Errorf("Expected %+v, got %+v", want, msg)
	}
}

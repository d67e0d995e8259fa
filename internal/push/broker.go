package push

import (
	"context"
	"sync"
)

const clientBuffer = 8

type Client struct {
	Msg    chan Message
	Target string
}

// Broker is the in-process Messenger. A client that is not keeping up misses
// messages rather than stalling the sender.
type Broker struct { // implements Messenger
	clients map[*Client]bool
	mu      sync.RWMutex
}

func NewBroker() *Broker {
	return &Broker{
		clients: make(map[*Client]bool),
	}
}

func (b *Broker) Add(client *Client) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.clients[client] = true
}

func (b *Broker) Delete(client *Client) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.clients[client] {
		delete(b.clients, client)
		close(client.Msg)
	}
}

// Broadcast hands msg to every client of target and returns how many took it.
func (b *Broker) Broadcast(target string, msg Message) int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	delivered := 0
	for client := range b.clients {
		if client.Target != target {
			continue
		}
		select {
		case client.Msg <- msg:
			delivered++
		default:
			pushLogger.Warn().Str("target", target).Str("type", msg.Type).Msg("Client is not keeping up, dropping message")
		}
	}
	return delivered
}

func (b *Broker) Count(target string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	n := 0
	for client := range b.clients {
		if client.Target == target {
			n++
		}
	}
	return n
}

func (b *Broker) Send(_ context.Context, target string, msg Message) error {
	if b.Broadcast(target, msg) == 0 {
		return ErrUndelivered
	}
	return nil
}

func (b *Broker) Subscribe(ctx context.Context, target string) (<-chan Message, error) {
	client := &Client{
		Msg:    make(chan Message, clientBuffer),
		Target: target,
	}
	b.Add(client)

	go func() {
		<-ctx.Done()
		b.Delete(client)
	}()

	return client.Msg, nil
}

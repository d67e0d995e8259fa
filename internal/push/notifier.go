package push

import (
	"context"
	"errors"

	"github.com/debemdeboas/inkwell/internal/model"
)

// Notifier tells the widget that the stored documents changed. Delivery is
// best effort: the widget also follows the store and polls.
type Notifier struct {
	messenger Messenger
	target    string
	origin    string
}

func NewNotifier(messenger Messenger, target, origin string) *Notifier {
	return &Notifier{
		messenger: messenger,
		target:    target,
		origin:    origin,
	}
}

func (n *Notifier) DocumentsChanged(ctx context.Context, id model.DocumentID) {
	msg := Message{
		Type:       TypeDocumentsChanged,
		Origin:     n.origin,
		DocumentID: id,
	}

	err := n.messenger.Send(ctx, n.target, msg)
	switch {
	case err == nil:
		pushLogger.Debug().Str("target", n.target).Str("document_id", id.String()).Msg("Documents changed notification sent")
	case errors.Is(err, ErrUndelivered):
		pushLogger.Debug().Str("target", n.target).Msg("No widget listening for documents changed notification")
	default:
		pushLogger.Error().Err(err).Str("target", n.target).Msg("Error sending documents changed notification")
	}
}

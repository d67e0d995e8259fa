// Package push carries small notifications between the editor and the
// widgets that display its documents.
package push

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/debemdeboas/inkwell/internal/model"
)

var pushLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	pushLogger = l
}

const (
	// TypeDocumentsChanged asks a widget to reload its document list.
	TypeDocumentsChanged = "REFRESH_POSTS"
	// TypeReloaded is emitted by a widget after it replaced its view.
	TypeReloaded = "reload"
	// TypeVisibility is sent by a browser-hosted widget when its page is shown or hidden.
	TypeVisibility = "visibility"
	TypeConnected  = "connected"
)

// ErrUndelivered means no receiver was listening on the target.
var ErrUndelivered = errors.New("message not delivered")

type Message struct {
	Type       string           `json:"type"`
	Origin     string           `json:"origin,omitempty"`
	DocumentID model.DocumentID `json:"documentId,omitempty"`
	Reason     string           `json:"reason,omitempty"`
	Visible    *bool            `json:"visible,omitempty"`
}

type Messenger interface {
	// Send delivers msg to every subscriber of target. It returns
	// ErrUndelivered when nobody received it.
	Send(ctx context.Context, target string, msg Message) error
	// Subscribe returns the messages sent to target until ctx is done.
	Subscribe(ctx context.Context, target string) (<-chan Message, error)
}

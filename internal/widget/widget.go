// Package widget implements the read-only view of the document list. The view
// never edits documents; it reloads the whole list from the store whenever
// one of its triggers asks it to.
package widget

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/debemdeboas/inkwell/internal/cache"
	"github.com/debemdeboas/inkwell/internal/model"
	"github.com/debemdeboas/inkwell/internal/push"
)

var widgetLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	widgetLogger = l
}

var ErrMounted = errors.New("widget already mounted")

type Reason string

const (
	ReasonMount      Reason = "mount"
	ReasonStore      Reason = "store"
	ReasonMessage    Reason = "message"
	ReasonVisibility Reason = "visibility"
	ReasonPoll       Reason = "poll"
	ReasonManual     Reason = "manual"
)

// Source is where the widget reads documents from.
type Source interface {
	LoadDocuments(ctx context.Context) []model.Document
}

type Widget struct {
	id     string
	source Source

	triggers   []Trigger
	visibility *VisibilityTrigger

	docsCache  *cache.Cache[model.DocumentID, model.Document]
	mu         sync.RWMutex
	docsSorted []model.Document
	loadedAt   time.Time
	reloads    int

	reloadMu sync.Mutex
	events   *push.Broker

	// requests holds at most one pending reload; further requests coalesce into it.
	requests chan Reason

	mountMu sync.Mutex
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// New creates a widget reading from source. The visibility trigger is always
// installed; the others are passed in.
func New(id string, source Source, triggers ...Trigger) *Widget {
	visibility := NewVisibilityTrigger()
	return &Widget{
		id:         id,
		source:     source,
		triggers:   append([]Trigger{visibility}, triggers...),
		visibility: visibility,
		docsCache:  cache.NewCache[model.DocumentID, model.Document](),
		events:     push.NewBroker(),
		requests:   make(chan Reason, 1),
	}
}

func (w *Widget) ID() string { return w.id }

// Mount loads the documents and starts every trigger. The widget stays
// mounted until Unmount is called or ctx is done.
func (w *Widget) Mount(ctx context.Context) error {
	w.mountMu.Lock()
	defer w.mountMu.Unlock()

	if w.cancel != nil {
		return ErrMounted
	}

	// Drop a request left over from a previous mount.
	select {
	case <-w.requests:
	default:
	}

	w.reload(ctx, ReasonMount)

	loopCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	w.wg.Add(1)
	go w.loop(loopCtx)

	for _, t := range w.triggers {
		if err := t.Start(loopCtx, &w.wg, w.request); err != nil {
			widgetLogger.Error().Err(err).Str("widget", w.id).Str("trigger", t.Name()).Msg("Error starting trigger, relying on the others")
			continue
		}
		widgetLogger.Debug().Str("widget", w.id).Str("trigger", t.Name()).Msg("Trigger started")
	}

	widgetLogger.Info().Str("widget", w.id).Int("triggers", len(w.triggers)).Msg("Widget mounted")
	return nil
}

// Unmount stops every trigger and the reload loop and waits for them to exit.
func (w *Widget) Unmount() {
	w.mountMu.Lock()
	defer w.mountMu.Unlock()

	if w.cancel == nil {
		return
	}
	w.cancel()
	w.wg.Wait()
	w.cancel = nil

	widgetLogger.Info().Str("widget", w.id).Msg("Widget unmounted")
}

func (w *Widget) Mounted() bool {
	w.mountMu.Lock()
	defer w.mountMu.Unlock()
	return w.cancel != nil
}

// request queues a reload. Every trigger reaches the queue whether or not the
// widget is visible; becoming visible is one more signal.
func (w *Widget) request(reason Reason) {
	select {
	case w.requests <- reason:
	default:
		widgetLogger.Debug().Str("widget", w.id).Str("reason", string(reason)).Msg("Reload already pending")
	}
}

func (w *Widget) loop(ctx context.Context) {
	defer w.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case reason := <-w.requests:
			w.reload(ctx, reason)
		}
	}
}

// Reload re-reads the full document list and replaces the view.
func (w *Widget) Reload(ctx context.Context) {
	w.reload(ctx, ReasonManual)
}

func (w *Widget) reload(ctx context.Context, reason Reason) {
	w.reloadMu.Lock()
	defer w.reloadMu.Unlock()

	docs := w.source.LoadDocuments(ctx)

	docsMap := make(map[model.DocumentID]model.Document, len(docs))
	for _, d := range docs {
		docsMap[d.ID] = d
	}

	w.mu.Lock()
	w.docsSorted = docs
	w.docsCache.SetTo(docsMap)
	w.loadedAt = time.Now()
	w.reloads++
	w.mu.Unlock()

	widgetLogger.Debug().Str("widget", w.id).Str("reason", string(reason)).Int("documents", len(docs)).Msg("Widget reloaded")
	w.events.Broadcast(w.id, push.Message{Type: push.TypeReloaded, Reason: string(reason)})
}

// SetVisible records whether the hosting page is shown. Going from hidden to
// visible reloads; visibility never suppresses the other triggers.
func (w *Widget) SetVisible(visible bool) {
	w.visibility.SetVisible(visible)
}

func (w *Widget) Visible() bool { return w.visibility.Visible() }

// Documents returns a copy of the current view.
func (w *Widget) Documents() []model.Document {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return slices.Clone(w.docsSorted)
}

func (w *Widget) Featured() []model.Document {
	w.mu.RLock()
	defer w.mu.RUnlock()

	var featured []model.Document
	for _, d := range w.docsSorted {
		if d.IsFeatured {
			featured = append(featured, d)
		}
	}
	return featured
}

func (w *Widget) Document(id model.DocumentID) (model.Document, bool) {
	return w.docsCache.Get(id)
}

func (w *Widget) LoadedAt() time.Time {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.loadedAt
}

// ReloadCount is the number of reloads since the widget was created.
func (w *Widget) ReloadCount() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.reloads
}

// Subscribe returns an event for every reload until ctx is done.
func (w *Widget) Subscribe(ctx context.Context) (<-chan push.Message, error) {
	return w.events.Subscribe(ctx, w.id)
}

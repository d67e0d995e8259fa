package editor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/debemdeboas/inkwell/internal/content"
	"github.com/debemdeboas/inkwell/internal/model"
	"github.com/debemdeboas/inkwell/internal/push"
	"github.com/debemdeboas/inkwell/internal/store"
)

const (
	widgetTarget = "social-hub"
	editorOrigin = "inkwell-editor"
)

type readOnlyKV struct{ *store.MemoryKV }

func (readOnlyKV) Set(context.Context, string, []byte) error {
	return errors.New("quota exceeded")
}

func newTestService(t *testing.T, kv store.KV, opts Options) (*Service, *store.DocumentStore, <-chan push.Message) {
	t.Helper()
	docs := store.NewDocumentStore(kv, "")
	broker := push.NewBroker()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	messages, err := broker.Subscribe(ctx, widgetTarget)
	if err != nil {
		t.Fatal(err)
	}

	svc := NewService(docs, push.NewNotifier(broker, widgetTarget, editorOrigin), NewMemoryRepository(), opts)
	t.Cleanup(svc.Shutdown)
	return svc, docs, messages
}

func expectMessage(t *testing.T, messages <-chan push.Message) push.Message {
	t.Helper()
	select {
	case msg := <-messages:
		return msg
	case <-time.After(time.Second):
		t.Fatal("Timeout waiting for documents changed message")
	}
	return push.Message{}
}

func expectNoMessage(t *testing.T, messages <-chan push.Message) {
	t.Helper()
	select {
	case msg := <-messages:
		t.Fatalf("Expected no message, got %+v", msg)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestServiceNewDocument(t *testing.T) {
	ctx := context.Background()
	svc, docs, messages := newTestService(t, store.NewMemoryKV(), DefaultOptions())

	s, err := svc.Open(ctx, 0)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if s.Title() != "Untitled" {
		t.Errorf("Expected untitled document, got %q", s.Title())
	}

	if _, err := s.InsertImage(ctx, content.ImageSpec{ID: 7, Src: "/cat.png"}); err != nil {
		t.Fatal(err)
	}

	msg := expectMessage(t, messages)
	if msg.Type != push.TypeDocumentsChanged || msg.Origin != editorOrigin {
		t.Errorf("Unexpected message %+v", msg)
	}

	doc, ok := svc.Document(s.ID())
	if !ok || doc.ID == 0 || msg.DocumentID != doc.ID {
		t.Fatalf("Expected the new document id in the message, got %+v and %+v", doc, msg)
	}

	t.Run("Later saves update the same document", func(t *testing.T) {
		if err := s.ResizeImageTo(7, model.SizeLarge); err != nil {
			t.Fatal(err)
		}
		expectMessage(t, messages)

		all := docs.LoadDocuments(ctx)
		if len(all) != 3 {
			t.Fatalf("Expected new document plus defaults, got %d documents", len(all))
		}
		if all[0].ID != doc.ID {
			t.Errorf("Expected the new document first, got %d", all[0].ID)
		}
		if img := imageIn(t, all[0].Content, 7); img.Width() != model.Px(600) {
			t.Errorf("Expected stored width 600px, got %v", img.Width())
		}
	})

	t.Run("Draft follows captures", func(t *testing.T) {
		draft, err := svc.Draft(s.ID())
		if err != nil {
			t.Fatal(err)
		}
		if string(draft.Content) != s.Content() {
			t.Errorf("Expected draft to hold the last capture")
		}
	})
}

func TestServiceExistingDocument(t *testing.T) {
	ctx := context.Background()
	svc, docs, messages := newTestService(t, store.NewMemoryKV(), DefaultOptions())

	s, err := svc.Open(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if s.Title() != "Welcome to Our Platform" || s.Content() != "This is a featured post!" {
		t.Errorf("Expected document 1 loaded, got %q %q", s.Title(), s.Content())
	}

	if err := s.Save(ctx); err != nil {
		t.Fatal(err)
	}
	expectMessage(t, messages)

	doc, err := docs.Document(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if !doc.IsFeatured || doc.Date != "9/23/2025" {
		t.Errorf("Expected metadata kept, got %+v", doc)
	}
	if len(docs.LoadDocuments(ctx)) != 2 {
		t.Error("Expected the document replaced in place")
	}
}

func TestServiceOpenUnknownDocument(t *testing.T) {
	svc, _, _ := newTestService(t, store.NewMemoryKV(), DefaultOptions())

	if _, err := svc.Open(context.Background(), 42); !errors.Is(err, store.ErrDocumentNotFound) {
		t.Errorf("Expected ErrDocumentNotFound, got %v", err)
	}
	if svc.Count() != 0 {
		t.Error("Expected no session")
	}
}

// Width and position survive a save and a fresh session on the stored content.
func TestServiceRoundTrip(t *testing.T) {
	ctx := context.Background()
	svc, _, messages := newTestService(t, store.NewMemoryKV(), DefaultOptions())

	s, _ := svc.Open(ctx, 0)
	s.InsertImage(ctx, content.ImageSpec{ID: 7, Src: "/cat.png"})
	s.ResizeImageTo(7, model.SizeSmall)
	s.PositionImageTo(7, model.PositionRight)
	for i := 0; i < 3; i++ {
		expectMessage(t, messages)
	}
	doc, _ := svc.Document(s.ID())
	svc.Close(s.ID())

	reopened, err := svc.Open(ctx, doc.ID)
	if err != nil {
		t.Fatal(err)
	}
	reopened.SelectImage(7)

	img, ok := reopened.surface.Image(7)
	if !ok {
		t.Fatal("Expected image 7 after reopening")
	}
	if img.Width() != model.Px(200) || img.Position() != model.PositionRight {
		t.Errorf("Expected 200px right image, got %v %s", img.Width(), img.Position())
	}
	if reopened.Manager().DecorationCount() != 9 {
		t.Error("Expected image 7 to be selectable after reopening")
	}
}

func TestServiceStorageUnavailable(t *testing.T) {
	ctx := context.Background()
	svc, _, messages := newTestService(t, readOnlyKV{store.NewMemoryKV()}, DefaultOptions())

	s, err := svc.Open(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.InsertImage(ctx, content.ImageSpec{Src: "/cat.png"}); err != nil {
		t.Errorf("Expected write failures not to surface, got %v", err)
	}
	if err := s.Save(ctx); err != nil {
		t.Errorf("Expected write failures not to surface, got %v", err)
	}
	expectNoMessage(t, messages)
}

func TestServiceClose(t *testing.T) {
	svc, _, _ := newTestService(t, store.NewMemoryKV(), DefaultOptions())

	s, _ := svc.Open(context.Background(), 0)
	if err := svc.Close(s.ID()); err != nil {
		t.Fatal(err)
	}

	if _, ok := svc.Session(s.ID()); ok {
		t.Error("Expected session to be gone")
	}
	if !s.Closed() {
		t.Error("Expected session to be closed")
	}
	if _, err := svc.Draft(s.ID()); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
	if err := svc.Close(s.ID()); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound on second close, got %v", err)
	}
}

func TestMemoryRepository(t *testing.T) {
	repo := NewMemoryRepository()

	draft, err := repo.CreateDraft(3)
	if err != nil {
		t.Fatal(err)
	}
	if draft.ID == "" || draft.Initialized {
		t.Errorf("Unexpected new draft %+v", draft)
	}

	if err := repo.SaveDraft(draft.ID, []byte("<p>x</p>")); err != nil {
		t.Fatal(err)
	}
	got, err := repo.GetDraft(draft.ID)
	if err != nil {
		t.Fatal(err)
	}
	if string(got.Content) != "<p>x</p>" || !got.Initialized || got.DocumentID != 3 {
		t.Errorf("Unexpected saved draft %+v", got)
	}
	if string(draft.Content) != "" {
		t.Error("Expected earlier draft value to stay unchanged")
	}

	repo.DeleteDraft(draft.ID)
	if _, err := repo.GetDraft(draft.ID); err == nil {
		t.Error("Expected deleted draft to be missing")
	}

	if err := repo.SaveDraft("unknown", nil); err != nil {
		t.Fatal(err)
	}
	if _, err := repo.GetDraft("unknown"); err == nil {
		t.Error("Expected empty save of an unknown draft to be ignored")
	}
}

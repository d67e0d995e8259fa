package content

import (
	"strings"
	"testing"

	"github.com/debemdeboas/inkwell/internal/model"
)

const sampleContent = `<p>Intro text</p><img id="img-7" src="/a.png" style="width: 400px; height: auto;"/> <p>More</p><img id="img-8" src="/b.png"/>`

func newTestSurface(t *testing.T, fragment string) *Surface {
	t.Helper()
	s, err := NewSurface(fragment)
	if err != nil {
		t.Fatalf("Failed to create surface: %v", err)
	}
	return s
}

func TestSurfaceParseAndRender(t *testing.T) {
	s := newTestSurface(t, sampleContent)

	t.Run("Finds images by stable id", func(t *testing.T) {
		img, ok := s.Image(7)
		if !ok {
			t.Fatal("Expected image 7 to resolve")
		}
		if img.Src() != "/a.png" {
			t.Errorf("Expected src /a.png, got %q", img.Src())
		}
		if img.Width() != model.Px(400) {
			t.Errorf("Expected width 400px, got %v", img.Width())
		}
	})

	t.Run("Unknown id does not resolve", func(t *testing.T) {
		if _, ok := s.Image(99); ok {
			t.Error("Expected image 99 to be missing")
		}
	})

	t.Run("Images in document order", func(t *testing.T) {
		images := s.Images()
		if len(images) != 2 {
			t.Fatalf("Expected 2 images, got %d", len(images))
		}
		if images[0].ID() != 7 || images[1].ID() != 8 {
			t.Errorf("Unexpected order: %d, %d", images[0].ID(), images[1].ID())
		}
	})

	t.Run("Round trip keeps ids", func(t *testing.T) {
		again := newTestSurface(t, s.HTML())
		if _, ok := again.Image(7); !ok {
			t.Error("Expected image 7 to survive serialization")
		}
		if _, ok := again.Image(8); !ok {
			t.Error("Expected image 8 to survive serialization")
		}
	})
}

func TestSurfaceRerender(t *testing.T) {
	s := newTestSurface(t, sampleContent)
	root := s.Root()

	old, _ := s.Image(7)
	if err := s.SetHTML(s.HTML()); err != nil {
		t.Fatalf("SetHTML failed: %v", err)
	}

	if s.Root() != root {
		t.Error("Expected the root to survive a re-render")
	}
	if s.Contains(old.Node()) {
		t.Error("Expected previous image node to be detached after re-render")
	}
	fresh, ok := s.Image(7)
	if !ok {
		t.Fatal("Expected image 7 after re-render")
	}
	if fresh.Node() == old.Node() {
		t.Error("Expected a new node for image 7 after re-render")
	}
}

func TestCaptureDropsSelectionMarks(t *testing.T) {
	s := newTestSurface(t, sampleContent)
	img, _ := s.Image(7)
	img.Mark()

	if !strings.Contains(s.HTML(), SelectedClass) {
		t.Fatal("Expected live HTML to carry the selection mark")
	}

	captured := s.Capture()
	if strings.Contains(captured, SelectedClass) || strings.Contains(captured, "box-shadow") {
		t.Errorf("Expected captured content without selection marks, got %s", captured)
	}
	if !img.Selected() {
		t.Error("Expected Capture to leave the live node selected")
	}
}

func TestInsertImage(t *testing.T) {
	s := newTestSurface(t, "<p>Hello</p>")

	img := s.InsertImage(ImageSpec{ID: 42, Src: "/c.png", Alt: "c", Position: model.PositionLeft, NaturalWidth: 800, NaturalHeight: 400})

	if img.ID() != 42 {
		t.Errorf("Expected id 42, got %d", img.ID())
	}
	if _, ok := s.Image(42); !ok {
		t.Fatal("Expected inserted image to be resolvable")
	}
	if img.Width() != model.Px(DefaultImageWidth) {
		t.Errorf("Expected default width, got %v", img.Width())
	}
	if img.SizeLabel() != "medium" {
		t.Errorf("Expected size label medium, got %q", img.SizeLabel())
	}
	if img.Position() != model.PositionLeft {
		t.Errorf("Expected left position, got %q", img.Position())
	}
	if w, h := img.NaturalSize(); w != 800 || h != 400 {
		t.Errorf("Expected natural size 800x400, got %vx%v", w, h)
	}
	if !strings.HasSuffix(s.HTML(), " ") {
		t.Error("Expected a separating space after the image")
	}
}

func TestApplyPosition(t *testing.T) {
	tests := []struct {
		position model.Position
		float    string
		clear    string
		display  string
		margin   string
	}{
		{model.PositionLeft, "left", "left", "inline-block", "0 15px 15px 0"},
		{model.PositionRight, "right", "right", "inline-block", "0 0 15px 15px"},
		{model.PositionCenter, "none", "both", "block", "15px auto"},
	}

	for _, tt := range tests {
		t.Run(string(tt.position), func(t *testing.T) {
			s := newTestSurface(t, sampleContent)
			img, _ := s.Image(7)

			img.ApplyPosition(tt.position)
			first := s.HTML()
			img.ApplyPosition(tt.position)

			if s.HTML() != first {
				t.Errorf("Expected applying %s twice to be idempotent", tt.position)
			}

			st := img.Style()
			if st.Get("float") != tt.float || st.Get("clear") != tt.clear || st.Get("display") != tt.display || st.Get("margin") != tt.margin {
				t.Errorf("Unexpected style for %s: %s", tt.position, st.String())
			}
			if img.Position() != tt.position {
				t.Errorf("Expected position %s, got %s", tt.position, img.Position())
			}
		})
	}
}

func TestImageFromNode(t *testing.T) {
	s := newTestSurface(t, `<img id="photo" src="/x.png"/><p id="p1">x</p><img id="img-3" src="/y.png"/>`)

	if n, ok := s.ElementByID("photo"); ok {
		if _, err := ImageFromNode(n); err == nil {
			t.Error("Expected error for unconventional id")
		}
	}
	if n, ok := s.ElementByID("p1"); ok {
		if _, err := ImageFromNode(n); err == nil {
			t.Error("Expected error for non-image element")
		}
	}
	if n, ok := s.ElementByID("img-3"); ok {
		img, err := ImageFromNode(n)
		if err != nil || img.ID() != 3 {
			t.Errorf("Expected image 3, got %v (%v)", img, err)
		}
	}
}

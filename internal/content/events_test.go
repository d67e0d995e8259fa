package content

import "testing"

func TestEventTarget(t *testing.T) {
	var target EventTarget
	calls := 0

	remove := target.AddEventListener(EventClick, func(e *Event) { calls++ })
	if target.ListenerCount(EventClick) != 1 {
		t.Fatalf("Expected 1 listener, got %d", target.ListenerCount(EventClick))
	}

	target.Dispatch(&Event{Type: EventClick})
	target.Dispatch(&Event{Type: EventPointerMove})
	if calls != 1 {
		t.Errorf("Expected 1 call, got %d", calls)
	}

	remove()
	remove()
	if target.ListenerCount() != 0 {
		t.Errorf("Expected no listeners after remove, got %d", target.ListenerCount())
	}

	target.Dispatch(&Event{Type: EventClick})
	if calls != 1 {
		t.Errorf("Expected removed listener not to fire, got %d calls", calls)
	}
}

func TestEventTargetSelfRemoval(t *testing.T) {
	var target EventTarget
	calls := 0

	var remove func()
	remove = target.AddEventListener(EventPointerUp, func(e *Event) {
		calls++
		remove()
	})
	target.AddEventListener(EventPointerUp, func(e *Event) { calls++ })

	target.Dispatch(&Event{Type: EventPointerUp})
	target.Dispatch(&Event{Type: EventPointerUp})

	if calls != 3 {
		t.Errorf("Expected 3 calls, got %d", calls)
	}
	if target.ListenerCount(EventPointerUp) != 1 {
		t.Errorf("Expected 1 remaining listener, got %d", target.ListenerCount(EventPointerUp))
	}
}

func TestSurfaceDispatch(t *testing.T) {
	s := newTestSurface(t, sampleContent)

	var targets []string
	s.AddEventListener(EventClick, func(e *Event) {
		targets = append(targets, attr(e.Target, "id"))
	})

	s.DispatchAt(EventClick, "img-7", 0, 0)

	img, _ := s.Image(8)
	stale := img.Node()
	if err := s.SetHTML(s.HTML()); err != nil {
		t.Fatalf("SetHTML failed: %v", err)
	}

	s.Dispatch(&Event{Type: EventClick, Target: stale})
	s.DispatchAt(EventClick, "img-8", 0, 0)
	s.DispatchAt(EventClick, "nowhere", 0, 0)

	want := []string{"img-7", "img-8", ""}
	if len(targets) != len(want) {
		t.Fatalf("Expected %v, got %v", want, targets)
	}
	for i := range want {
		if targets[i] != want[i] {
			t.Errorf("Event %d: expected target %q, got %q", i, want[i], targets[i])
		}
	}
}

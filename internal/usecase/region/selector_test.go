package region

import (
	"testing"

	"github.com/kailas-cloud/geolens/internal/domain/geo"
	"github.com/kailas-cloud/geolens/internal/domain/surface"
	"github.com/kailas-cloud/geolens/internal/mapsurface/memory"
)

type fakeSink struct {
	calls []geo.BoundingBox
}

func (f *fakeSink) SetBounds(b geo.BoundingBox) { f.calls = append(f.calls, b) }

func newSelector() (*Selector, *memory.Surface, *fakeSink) {
	s := memory.New(surface.View{})
	sink := &fakeSink{}
	sel := New(s, sink)
	sel.Attach()
	return sel, s, sink
}

func click(lat, lon float64, modified bool) surface.ClickEvent {
	return surface.ClickEvent{Pos: geo.Point{Lat: lat, Lon: lon}, Modified: modified}
}

func TestSelector_TwoClicks(t *testing.T) {
	sel, s, sink := newSelector()

	s.Click(click(10, 20, true))
	if !sel.Dragging() {
		t.Fatal("expected dragging after first click")
	}
	snap := s.Snapshot()
	if len(snap.Rectangles) != 1 || !snap.Tracking {
		t.Fatalf("rect=%d tracking=%v", len(snap.Rectangles), snap.Tracking)
	}
	if r := snap.Rectangles[0]; r.A != r.B {
		t.Errorf("first rectangle not degenerate: %+v", r)
	}

	s.PointerMove(geo.Point{Lat: 12, Lon: 25})
	if r := s.Snapshot().Rectangles[0]; r.B != (geo.Point{Lat: 12, Lon: 25}) || r.A != (geo.Point{Lat: 10, Lon: 20}) {
		t.Errorf("rectangle did not follow pointer: %+v", r)
	}

	s.Click(click(5, 30, true))
	if sel.Dragging() {
		t.Error("expected idle after second click")
	}
	snap = s.Snapshot()
	if len(snap.Rectangles) != 0 || snap.Tracking {
		t.Errorf("rect=%d tracking=%v", len(snap.Rectangles), snap.Tracking)
	}
	if len(sink.calls) != 1 {
		t.Fatalf("sink calls = %d", len(sink.calls))
	}
	b := sink.calls[0]
	if *b.LatMin != 5 || *b.LatMax != 10 || *b.LonMin != 20 || *b.LonMax != 30 {
		t.Errorf("bbox = %v %v %v %v", *b.LatMin, *b.LatMax, *b.LonMin, *b.LonMax)
	}
}

func TestSelector_IgnoresUnmodifiedClicks(t *testing.T) {
	sel, s, sink := newSelector()

	s.Click(click(1, 1, false))
	if sel.State() != Idle {
		t.Fatal("unmodified click started a drag")
	}

	s.Click(click(1, 1, true))
	s.Click(click(2, 2, false))
	if sel.State() != Dragging {
		t.Fatal("unmodified click ended a drag")
	}
	if len(sink.calls) != 0 {
		t.Error("sink called early")
	}
}

func TestSelector_SameCornerTwice(t *testing.T) {
	_, s, sink := newSelector()
	s.Click(click(3, 4, true))
	s.Click(click(3, 4, true))

	if len(sink.calls) != 1 {
		t.Fatalf("sink calls = %d", len(sink.calls))
	}
	b := sink.calls[0]
	if *b.LatMin != *b.LatMax || *b.LonMin != *b.LonMax {
		t.Errorf("expected zero-area box, got %+v", b)
	}
}

func TestSelector_Cancel(t *testing.T) {
	sel, s, sink := newSelector()

	sel.Cancel() // idle: no-op
	s.Click(click(1, 1, true))
	sel.Cancel()

	if sel.State() != Idle {
		t.Error("expected idle after cancel")
	}
	snap := s.Snapshot()
	if len(snap.Rectangles) != 0 || snap.Tracking {
		t.Error("overlay left behind")
	}
	if len(sink.calls) != 0 {
		t.Error("cancel must not publish bounds")
	}

	// A fresh gesture works after cancel.
	s.Click(click(1, 1, true))
	s.Click(click(2, 2, true))
	if len(sink.calls) != 1 {
		t.Errorf("sink calls = %d", len(sink.calls))
	}
}

func TestState_String(t *testing.T) {
	if Idle.String() != "idle" || Dragging.String() != "dragging" {
		t.Error("unexpected state names")
	}
}

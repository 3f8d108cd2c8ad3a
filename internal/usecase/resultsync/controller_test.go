package resultsync

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/kailas-cloud/geolens/internal/domain/geo"
	"github.com/kailas-cloud/geolens/internal/domain/image"
	"github.com/kailas-cloud/geolens/internal/domain/search/result"
	"github.com/kailas-cloud/geolens/internal/domain/surface"
	"github.com/kailas-cloud/geolens/internal/mapsurface/memory"
)

// --- Fakes ---

type fakeCards struct {
	cards  []Card
	clears int
}

func (f *fakeCards) ClearCards()       { f.cards = nil; f.clears++ }
func (f *fakeCards) RenderCard(c Card) { f.cards = append(f.cards, c) }

func ptr(v float64) *float64 { return &v }

func hit(lat, lon *float64, score float64, img string) result.Result {
	return result.New(lat, lon, score, img, "", nil, nil)
}

func newController(t *testing.T) (*Controller, *memory.Surface, *fakeCards) {
	t.Helper()
	s := memory.New(surface.View{Center: geo.Point{Lat: 55.75, Lon: 37.61}, Zoom: 10})
	cards := &fakeCards{}
	return New(s, image.NewResolver(image.Config{}), cards, 0, nil), s, cards
}

// --- Tests ---

func TestReplace_PlacesMarkersAndCards(t *testing.T) {
	c, s, cards := newController(t)

	n := c.Replace([]result.Result{
		result.New(ptr(55.1), ptr(37.2), 0.91, "app/datasets/a.jpg", "", []int{2024, 5, 1}, []int{12, 0, 5}),
		hit(ptr(56), ptr(38), 0.5, "app/datasets/b.jpg"),
	})
	if n != 2 {
		t.Fatalf("accepted = %d, want 2", n)
	}

	snap := s.Snapshot()
	if len(snap.Markers) != 2 || len(cards.cards) != 2 {
		t.Fatalf("markers=%d cards=%d", len(snap.Markers), len(cards.cards))
	}
	p := snap.Markers[0].Popup
	if p.ImageURL != "http://127.0.0.1:8333/local_image/a.jpg" {
		t.Errorf("image url = %q", p.ImageURL)
	}
	if p.Score != "0.91" || p.Date != "2024-5-1" || p.Time != "12:0:5" {
		t.Errorf("popup = %+v", p)
	}
	if p.Coords != "Lat: 55.100000 / Lng: 37.200000" {
		t.Errorf("coords = %q", p.Coords)
	}
	for i, card := range cards.cards {
		if card.Index != i {
			t.Errorf("card %d has index %d", i, card.Index)
		}
	}
}

func TestReplace_SkipsEntriesWithoutCoordinates(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	s := memory.New(surface.View{})
	cards := &fakeCards{}
	c := New(s, image.NewResolver(image.Config{}), cards, 0, zap.New(core))

	n := c.Replace([]result.Result{
		hit(ptr(1), ptr(1), 0.9, "a.jpg"),
		hit(nil, ptr(2), 0.8, "bad.jpg"),
		hit(ptr(3), ptr(3), 0.7, "c.jpg"),
	})
	if n != 2 {
		t.Fatalf("accepted = %d, want 2", n)
	}
	if got := len(s.Snapshot().Markers); got != 2 {
		t.Errorf("markers = %d, want 2", got)
	}
	if logs.Len() != 1 {
		t.Errorf("warn logs = %d, want 1", logs.Len())
	}

	// Card index 1 must address the third input, i.e. the second marker.
	if cards.cards[1].Lat != 3 {
		t.Errorf("card 1 lat = %v, want 3", cards.cards[1].Lat)
	}
	if !c.JumpToMarker(1) {
		t.Fatal("jump failed")
	}
	if v := s.Snapshot().View; v.Center != (geo.Point{Lat: 3, Lon: 3}) {
		t.Errorf("center = %+v", v.Center)
	}
}

func TestReplace_WarnsOnOutOfRangePosition(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	s := memory.New(surface.View{})
	c := New(s, image.NewResolver(image.Config{}), &fakeCards{}, 0, zap.New(core))

	n := c.Replace([]result.Result{
		hit(ptr(10), ptr(20), 0.9, "ok.jpg"),
		hit(ptr(95), ptr(20), 0.8, "north.jpg"),
		hit(ptr(10), ptr(-200), 0.7, "west.jpg"),
	})
	if n != 3 {
		t.Fatalf("accepted = %d, want 3", n)
	}

	warned := logs.FilterMessage("result position out of range").All()
	if len(warned) != 2 {
		t.Fatalf("warnings = %d, want 2", len(warned))
	}
	if img := warned[0].ContextMap()["image"]; img != "north.jpg" {
		t.Errorf("first warning image = %v", img)
	}
	if pos := warned[1].ContextMap()["position"]; pos != int64(2) {
		t.Errorf("second warning position = %v", pos)
	}
}

func TestReplace_ReplacesPreviousMarkers(t *testing.T) {
	c, s, cards := newController(t)

	c.Replace([]result.Result{hit(ptr(1), ptr(1), 1, "a"), hit(ptr(2), ptr(2), 1, "b")})
	c.Replace([]result.Result{hit(ptr(9), ptr(9), 1, "z")})

	snap := s.Snapshot()
	if len(snap.Markers) != 1 || snap.Markers[0].Pos.Lat != 9 {
		t.Fatalf("markers = %+v", snap.Markers)
	}
	if c.Len() != 1 || len(cards.cards) != 1 {
		t.Errorf("records=%d cards=%d", c.Len(), len(cards.cards))
	}
	if cards.clears != 2 {
		t.Errorf("card clears = %d, want 2", cards.clears)
	}
}

func TestReplace_EmptyClears(t *testing.T) {
	c, s, cards := newController(t)
	c.Replace([]result.Result{hit(ptr(1), ptr(1), 1, "a")})

	if n := c.Replace(nil); n != 0 {
		t.Fatalf("accepted = %d", n)
	}
	if len(s.Snapshot().Markers) != 0 || len(cards.cards) != 0 {
		t.Error("expected everything cleared")
	}
}

func TestJumpToMarker(t *testing.T) {
	c, s, _ := newController(t)
	c.Replace([]result.Result{hit(ptr(10), ptr(20), 1, "a"), hit(ptr(30), ptr(40), 1, "b")})

	if !c.JumpToMarker(1) {
		t.Fatal("expected jump")
	}
	snap := s.Snapshot()
	if snap.View.Center != (geo.Point{Lat: 30, Lon: 40}) || snap.View.Zoom != DefaultFocusZoom || !snap.Animated {
		t.Errorf("view = %+v animated=%v", snap.View, snap.Animated)
	}
	if snap.Markers[0].PopupOpen || !snap.Markers[1].PopupOpen {
		t.Error("wrong popup open")
	}
}

func TestJumpToMarker_OutOfRange(t *testing.T) {
	c, s, _ := newController(t)
	c.Replace([]result.Result{hit(ptr(10), ptr(20), 1, "a")})
	before := s.Snapshot().View

	for _, idx := range []int{-1, 1, 100} {
		if c.JumpToMarker(idx) {
			t.Errorf("JumpToMarker(%d) = true", idx)
		}
	}
	if s.Snapshot().View != before {
		t.Error("view changed on out-of-range jump")
	}
}

func TestPopupOpen_Recenters(t *testing.T) {
	s := memory.New(surface.View{Zoom: 3})
	c := New(s, image.NewResolver(image.Config{}), &fakeCards{}, 15, nil)
	c.Replace([]result.Result{hit(ptr(7), ptr(8), 1, "a")})

	s.OpenPopup(c.Records()[0].Marker)
	v := s.Snapshot().View
	if v.Center != (geo.Point{Lat: 7, Lon: 8}) || v.Zoom != 15 {
		t.Errorf("view = %+v", v)
	}
}

func TestClear(t *testing.T) {
	c, s, _ := newController(t)
	c.Replace([]result.Result{hit(ptr(1), ptr(1), 1, "a")})
	c.Clear()
	if c.Len() != 0 || len(c.Records()) != 0 || len(s.Snapshot().Markers) != 0 {
		t.Error("expected empty after Clear")
	}
}

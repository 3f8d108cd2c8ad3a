package layers

import (
	"errors"
	"testing"

	"github.com/kailas-cloud/geolens/internal/domain"
	"github.com/kailas-cloud/geolens/internal/domain/surface"
	"github.com/kailas-cloud/geolens/internal/mapsurface/memory"
)

func layerIDs(s *memory.Surface) []string {
	var ids []string
	for _, l := range s.Snapshot().Layers {
		ids = append(ids, l.ID)
	}
	return ids
}

func TestSwitcher(t *testing.T) {
	m := memory.New(surface.View{})
	sw := New(m, surface.Layer{}, surface.Layer{})
	sw.Init()

	if ids := layerIDs(m); len(ids) != 1 || ids[0] != DefaultMapLayer.ID {
		t.Fatalf("after init: %v", ids)
	}

	sw.SwitchToSatellite()
	sw.SwitchToSatellite()
	if ids := layerIDs(m); len(ids) != 1 || ids[0] != DefaultSatelliteLayer.ID {
		t.Fatalf("after satellite: %v", ids)
	}
	if sw.Active() != Satellite {
		t.Errorf("active = %q", sw.Active())
	}

	sw.SwitchToMap()
	if ids := layerIDs(m); len(ids) != 1 || ids[0] != DefaultMapLayer.ID {
		t.Fatalf("after map: %v", ids)
	}
	if sw.Active() != Map {
		t.Errorf("active = %q", sw.Active())
	}
}

func TestSwitch_Mode(t *testing.T) {
	m := memory.New(surface.View{})
	custom := surface.Layer{ID: "custom-sat", URLTemplate: "https://tiles.example.com/{z}/{x}/{y}"}
	sw := New(m, surface.Layer{}, custom)
	sw.Init()

	if err := sw.Switch(Satellite); err != nil {
		t.Fatal(err)
	}
	if !m.HasLayer(custom) || m.HasLayer(DefaultMapLayer) {
		t.Errorf("layers = %v", layerIDs(m))
	}
	if err := sw.Switch("terrain"); !errors.Is(err, domain.ErrUnknownLayer) {
		t.Errorf("expected ErrUnknownLayer, got %v", err)
	}
}

func TestParseMode(t *testing.T) {
	for _, s := range []string{"map", "satellite"} {
		if _, err := ParseMode(s); err != nil {
			t.Errorf("ParseMode(%q): %v", s, err)
		}
	}
	if _, err := ParseMode("hybrid"); !errors.Is(err, domain.ErrUnknownLayer) {
		t.Errorf("expected ErrUnknownLayer, got %v", err)
	}
}

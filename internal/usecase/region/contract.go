package region

import (
	"github.com/kailas-cloud/geolens/internal/domain/geo"
	"github.com/kailas-cloud/geolens/internal/domain/surface"
)

// Surface is the part of the map the gesture draws on and listens to.
type Surface interface {
	surface.RectangleDrawer
	surface.EventSource
}

// BoundsSink receives a completed selection, typically the search form.
type BoundsSink interface {
	SetBounds(bbox geo.BoundingBox)
}

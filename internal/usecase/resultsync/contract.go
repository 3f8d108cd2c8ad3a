package resultsync

import "github.com/kailas-cloud/geolens/internal/domain/surface"

// Surface is the part of the map the controller drives.
type Surface interface {
	surface.Viewport
	surface.MarkerManager
}

// ImageResolver maps a raw image reference to a displayable URL.
type ImageResolver interface {
	Resolve(ref string) string
}

// CardRenderer owns the result cards shown next to the map.
type CardRenderer interface {
	ClearCards()
	RenderCard(c Card)
}

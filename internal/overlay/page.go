package overlay

import (
	"regexp"
	"strconv"
)

// Page is the agent's view of the host edit screen. The host owns the
// document: routes change without notice, regions appear late and get
// replaced wholesale by the host's own re-rendering.
type Page interface {
	// Route returns the current route fragment.
	Route() string
	// Locale returns the locale of the edit session.
	Locale() string
	// Subscribe returns a channel signalled on navigation and render events.
	// The host may also change without an event firing; the agent's
	// heartbeat covers that gap.
	Subscribe() <-chan struct{}
	// PropertiesRegion returns the mount target for the card, or nil while
	// the host has not rendered it yet.
	PropertiesRegion() Region
}

// Region is a mount target inside the page.
type Region interface {
	// Connected reports whether the region is part of the document.
	Connected() bool
	// Ready reports whether the host finished rendering the region.
	Ready() bool
	// Contains reports whether the card is currently attached here.
	Contains(card *Card) bool
	// Attach mounts the card into the region.
	Attach(card *Card) error
}

var editRoutePattern = regexp.MustCompile(`#/enrich/product-category-tree/(\d+)/edit$`)

// CategoryFromRoute extracts the category id from a category edit route. It
// reports false for every other route.
func CategoryFromRoute(route string) (int64, bool) {
	match := editRoutePattern.FindStringSubmatch(route)
	if match == nil {
		return 0, false
	}
	id, err := strconv.ParseInt(match[1], 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

package sponsor

import (
	"sort"
	"strings"

	"github.com/problemdock/ProblemDock/app/models"
)

// Zone names a logical display region where sponsor content may appear.
type Zone string

const (
	ZoneRailLeft           Zone = "rail-left"
	ZoneRailRight          Zone = "rail-right"
	ZoneTopBar             Zone = "top-bar"
	ZoneBottomBar          Zone = "bottom-bar"
	ZoneMobileStack        Zone = "mobile-stack"
	ZoneMobileCarouselTop  Zone = "mobile-carousel-top"
	ZoneMobileCarouselBot  Zone = "mobile-carousel-bottom"
)

// DefaultZone is where slots with no recognizable placement end up, so
// every persisted slot always renders somewhere.
const DefaultZone = ZoneRailLeft

// AllZones lists every recognized zone in display order.
var AllZones = []Zone{
	ZoneRailLeft,
	ZoneRailRight,
	ZoneTopBar,
	ZoneBottomBar,
	ZoneMobileStack,
	ZoneMobileCarouselTop,
	ZoneMobileCarouselBot,
}

// placementSeparator is the storage delimiter of the placements column.
const placementSeparator = ","

var knownZones = func() map[Zone]struct{} {
	m := make(map[Zone]struct{}, len(AllZones))
	for _, z := range AllZones {
		m[z] = struct{}{}
	}
	return m
}()

// ParseZone returns the zone for a raw tag, or false when unrecognized.
func ParseZone(tag string) (Zone, bool) {
	z := Zone(strings.ToLower(strings.TrimSpace(tag)))
	_, ok := knownZones[z]
	return z, ok
}

// JoinPlacements serializes zone tags into the stored placements string.
func JoinPlacements(zones []Zone) string {
	tags := make([]string, 0, len(zones))
	for _, z := range zones {
		tags = append(tags, string(z))
	}
	return strings.Join(tags, placementSeparator)
}

// ResolvePlacements maps a slot's stored placement string to its zone set,
// preserving first-seen order and dropping duplicates. A slot with no
// recognizable tag falls back to the default zone.
func ResolvePlacements(slot models.SponsorSlot) []Zone {
	var zones []Zone
	seen := make(map[Zone]struct{})
	for _, tag := range strings.Split(slot.Placements, placementSeparator) {
		z, ok := ParseZone(tag)
		if !ok {
			continue
		}
		if _, dup := seen[z]; dup {
			continue
		}
		seen[z] = struct{}{}
		zones = append(zones, z)
	}
	if len(zones) == 0 {
		zones = append(zones, DefaultZone)
	}
	return zones
}

// ByZone filters to active slots whose zone set contains the requested
// zone, ordered ascending by priority. Equal priorities keep their
// original relative order.
func ByZone(slots []models.SponsorSlot, zone Zone) []models.SponsorSlot {
	var out []models.SponsorSlot
	for _, s := range slots {
		if !s.IsActive() {
			continue
		}
		for _, z := range ResolvePlacements(s) {
			if z == zone {
				out = append(out, s)
				break
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Priority < out[j].Priority
	})
	return out
}

// GroupByZone maps active slots to every zone they belong to. The top and
// bottom bar zones are omitted entirely when sponsor bars are disabled.
func GroupByZone(slots []models.SponsorSlot, cfg Config) map[Zone][]models.SponsorSlot {
	grouped := make(map[Zone][]models.SponsorSlot)
	for _, zone := range AllZones {
		if !cfg.EnableSponsorBars && (zone == ZoneTopBar || zone == ZoneBottomBar) {
			continue
		}
		if zoned := ByZone(slots, zone); len(zoned) > 0 {
			grouped[zone] = zoned
		}
	}
	return grouped
}

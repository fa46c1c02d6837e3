package sponsor

import (
	"testing"

	"github.com/problemdock/ProblemDock/app/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func slotWithPlacements(placements string) models.SponsorSlot {
	return models.SponsorSlot{Placements: placements, Status: models.SponsorStatusActive}
}

func TestResolvePlacements(t *testing.T) {
	tests := []struct {
		name       string
		placements string
		want       []Zone
	}{
		{name: "single", placements: "rail-left", want: []Zone{ZoneRailLeft}},
		{name: "multiple", placements: "rail-right,mobile-carousel-top", want: []Zone{ZoneRailRight, ZoneMobileCarouselTop}},
		{name: "whitespace and case", placements: " Top-Bar , rail-left", want: []Zone{ZoneTopBar, ZoneRailLeft}},
		{name: "duplicates collapse", placements: "rail-left,rail-left,bottom-bar", want: []Zone{ZoneRailLeft, ZoneBottomBar}},
		{name: "unrecognized falls back", placements: "sidebar-mega", want: []Zone{ZoneRailLeft}},
		{name: "empty falls back", placements: "", want: []Zone{ZoneRailLeft}},
		{name: "partially recognized keeps valid", placements: "bogus,rail-right", want: []Zone{ZoneRailRight}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolvePlacements(slotWithPlacements(tt.placements))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestByZoneFiltersAndOrders(t *testing.T) {
	slots := []models.SponsorSlot{
		{UUID: "c", Placements: "rail-left", Priority: 5, Status: models.SponsorStatusActive},
		{UUID: "pending", Placements: "rail-left", Priority: 0, Status: models.SponsorStatusPending},
		{UUID: "a", Placements: "rail-left,top-bar", Priority: 1, Status: models.SponsorStatusActive},
		{UUID: "expired", Placements: "rail-left", Priority: 0, Status: models.SponsorStatusExpired},
		{UUID: "other-zone", Placements: "rail-right", Priority: 0, Status: models.SponsorStatusActive},
		{UUID: "b1", Placements: "rail-left", Priority: 3, Status: models.SponsorStatusActive},
		{UUID: "b2", Placements: "rail-left", Priority: 3, Status: models.SponsorStatusActive},
	}

	got := ByZone(slots, ZoneRailLeft)
	require.Len(t, got, 4)

	// Ascending priority, equal priorities keep input order.
	assert.Equal(t, "a", got[0].UUID)
	assert.Equal(t, "b1", got[1].UUID)
	assert.Equal(t, "b2", got[2].UUID)
	assert.Equal(t, "c", got[3].UUID)

	for _, s := range got {
		assert.Equal(t, models.SponsorStatusActive, s.Status)
	}
}

func TestByZoneEmptyInput(t *testing.T) {
	assert.Empty(t, ByZone(nil, ZoneRailLeft))
}

func TestGroupByZoneRespectsBarFlag(t *testing.T) {
	slots := []models.SponsorSlot{
		{UUID: "bar", Placements: "top-bar,bottom-bar", Status: models.SponsorStatusActive},
		{UUID: "rail", Placements: "rail-left", Status: models.SponsorStatusActive},
	}

	withBars := GroupByZone(slots, Config{EnableSponsorBars: true})
	require.Contains(t, withBars, ZoneTopBar)
	require.Contains(t, withBars, ZoneBottomBar)
	require.Contains(t, withBars, ZoneRailLeft)

	withoutBars := GroupByZone(slots, Config{EnableSponsorBars: false})
	assert.NotContains(t, withoutBars, ZoneTopBar)
	assert.NotContains(t, withoutBars, ZoneBottomBar)
	assert.Contains(t, withoutBars, ZoneRailLeft)
}

func TestJoinPlacementsRoundTrip(t *testing.T) {
	zones := []Zone{ZoneRailRight, ZoneMobileStack}
	joined := JoinPlacements(zones)
	assert.Equal(t, "rail-right,mobile-stack", joined)
	assert.Equal(t, zones, ResolvePlacements(slotWithPlacements(joined)))
}

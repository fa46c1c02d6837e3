package controllers

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/problemdock/ProblemDock/app/models"
	"github.com/problemdock/ProblemDock/internal/pkg/sponsor"
)

func TestRecordZoneViews(t *testing.T) {
	zones := map[sponsor.Zone][]models.SponsorSlot{
		sponsor.ZoneRailLeft: {
			{ID: 1, UUID: "s1"},
			{ID: 2, UUID: "s2"},
		},
		sponsor.ZoneTopBar: {
			{ID: 2, UUID: "s2"},
			{ID: 3, UUID: "s3"},
		},
	}

	var counted []uint
	recordZoneViews(zones, func(id uint) error {
		counted = append(counted, id)
		return nil
	})

	// One view per distinct slot, regardless of how many zones it occupies.
	assert.ElementsMatch(t, []uint{1, 2, 3}, counted)
}

func TestRecordZoneViewsContinuesOnError(t *testing.T) {
	zones := map[sponsor.Zone][]models.SponsorSlot{
		sponsor.ZoneRailLeft: {
			{ID: 1, UUID: "s1"},
			{ID: 2, UUID: "s2"},
			{ID: 3, UUID: "s3"},
		},
	}

	var attempted []uint
	recordZoneViews(zones, func(id uint) error {
		attempted = append(attempted, id)
		if id == 2 {
			return errors.New("connection refused")
		}
		return nil
	})

	// A failed increment must not stop the remaining slots from counting.
	assert.ElementsMatch(t, []uint{1, 2, 3}, attempted)
}

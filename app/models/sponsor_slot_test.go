package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validSponsorSlot() *SponsorSlot {
	return &SponsorSlot{
		UUID:    "5b7c2b2e-0000-0000-0000-000000000000",
		OwnerID: 1,
		Month:   "2026-10",
		Title:   "Dock Tools Inc",
		CTAText: "Try it",
		CTAURL:  "https://example.com",
		Variant: SponsorVariantEmerald,
		Status:  SponsorStatusPending,
	}
}

func TestSponsorSlotValidate(t *testing.T) {
	require.NoError(t, validSponsorSlot().Validate())

	missingTitle := validSponsorSlot()
	missingTitle.Title = ""
	assert.Error(t, missingTitle.Validate())

	badURL := validSponsorSlot()
	badURL.CTAURL = "definitely not a url"
	assert.Error(t, badURL.Validate())

	badVariant := validSponsorSlot()
	badVariant.Variant = "chartreuse"
	assert.Error(t, badVariant.Validate())
}

func TestSponsorSlotIsActive(t *testing.T) {
	slot := validSponsorSlot()
	assert.False(t, slot.IsActive())

	slot.Status = SponsorStatusActive
	assert.True(t, slot.IsActive())

	slot.Status = SponsorStatusExpired
	assert.False(t, slot.IsActive())
}

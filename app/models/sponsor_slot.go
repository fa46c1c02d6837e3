package models

import (
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	SponsorStatusPending = "pending"
	SponsorStatusActive  = "active"
	SponsorStatusExpired = "expired"
)

// Palette variants only affect card styling, never behavior.
const (
	SponsorVariantIndigo  = "indigo"
	SponsorVariantEmerald = "emerald"
	SponsorVariantAmber   = "amber"
	SponsorVariantRose    = "rose"
)

// SponsorSlot is a purchased or seeded sponsor advertisement scoped to a
// single calendar month. Month and Placements are immutable after creation;
// only Status, PaymentRef and the view/click counters are mutated
// post-creation.
type SponsorSlot struct {
	ID            uint      `gorm:"primaryKey" json:"-"`
	UUID          string    `gorm:"uniqueIndex;type:varchar(36);not null" json:"id"`
	OwnerID       uint      `gorm:"not null;index" json:"owner_id"`
	Owner         User      `gorm:"foreignKey:OwnerID" json:"-"`
	Month         string    `gorm:"type:varchar(7);not null;index:idx_sponsor_slots_month_status,priority:1" json:"month"`
	Title         string    `gorm:"type:varchar(120);not null" json:"title" validate:"required,min=3,max=120"`
	Description   string    `gorm:"type:varchar(500)" json:"description" validate:"max=500"`
	CTAText       string    `gorm:"type:varchar(60)" json:"cta_text" validate:"max=60"`
	CTAURL        string    `gorm:"type:varchar(500)" json:"cta_url" validate:"omitempty,url,max=500"`
	ImageURL      string    `gorm:"type:varchar(500)" json:"image_url,omitempty" validate:"omitempty,url,max=500"`
	BackgroundURL string    `gorm:"type:varchar(500)" json:"background_url,omitempty" validate:"omitempty,url,max=500"`
	LogoGlyph     string    `gorm:"type:varchar(8)" json:"logo_glyph,omitempty" validate:"max=8"`
	Variant       string    `gorm:"type:varchar(20);default:'indigo'" json:"variant" validate:"omitempty,oneof=indigo emerald amber rose"`
	Placements    string    `gorm:"type:varchar(255)" json:"placements"`
	Priority      int       `gorm:"default:0" json:"priority"`
	Status        string    `gorm:"type:varchar(20);not null;default:'pending';index:idx_sponsor_slots_month_status,priority:2" json:"status"`
	PaymentRef    string    `gorm:"type:varchar(191);default:''" json:"-"`
	AmountCents   int64     `gorm:"not null;default:0" json:"amount_cents"`
	ViewCount     uint64    `gorm:"not null;default:0" json:"-"`
	ClickCount    uint64    `gorm:"not null;default:0" json:"-"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name for the SponsorSlot model
func (SponsorSlot) TableName() string {
	return "sponsor_slots"
}

func (s *SponsorSlot) Validate() error {
	v := validator.New()

	return v.Struct(s)
}

// IsActive reports whether the slot is eligible for display computation.
func (s *SponsorSlot) IsActive() bool {
	return s.Status == SponsorStatusActive
}

package sponsor

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/problemdock/ProblemDock/app/models"
	"github.com/problemdock/ProblemDock/internal/pkg/mail"
	"gorm.io/gorm"
)

// Service orchestrates the sponsor slot lifecycle: purchase, activation
// on payment confirmation, and monthly expiry.
type Service struct {
	repo     Repository
	cfg      Config
	checkout *CheckoutClient
	cacheTTL time.Duration
	sendMail func(to, subject, body string) error
}

// NewService creates a sponsor service from an injected repository. No
// availability caching and no email side effects are wired; use
// NewServiceFromDB for the fully configured production service.
func NewService(repo Repository, cfg Config) *Service {
	return &Service{repo: repo, cfg: cfg}
}

// NewServiceFromDB creates the production sponsor service from a GORM handle.
func NewServiceFromDB(db *gorm.DB) *Service {
	return &Service{
		repo:     NewRepository(db),
		cfg:      LoadConfig(),
		checkout: NewCheckoutClientFromEnv(),
		cacheTTL: time.Minute,
		sendMail: mail.SendMail,
	}
}

// Config exposes the resolved sponsor settings.
func (s *Service) Config() Config {
	return s.cfg
}

// PurchaseInput is the caller-supplied shape of a purchase initiation.
type PurchaseInput struct {
	OwnerID       uint     `json:"owner_id"`
	Month         string   `json:"month"`
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	CTAText       string   `json:"cta_text"`
	CTAURL        string   `json:"cta_url"`
	ImageURL      string   `json:"image_url"`
	BackgroundURL string   `json:"background_url"`
	LogoGlyph     string   `json:"logo_glyph"`
	Variant       string   `json:"variant"`
	Placements    []string `json:"placements"`
	Priority      int      `json:"priority"`
}

// PendingSlot is returned from purchase initiation: the created slot id
// plus the checkout reference the buyer completes payment against.
type PendingSlot struct {
	SlotID      string `json:"slot_id"`
	Month       string `json:"month"`
	AmountCents int64  `json:"amount_cents"`
	CheckoutRef string `json:"checkout_ref"`
	CheckoutURL string `json:"checkout_url,omitempty"`
}

// SweepResult summarizes one expiry sweep run.
type SweepResult struct {
	Expired int64    `json:"expired"`
	Months  []string `json:"months"`
}

// CreatePendingSlot validates the purchase input, gates it against the
// month's capacity and inserts a pending slot row. The capacity check and
// the insert run under a row lock in the repository, so the ceiling holds
// under concurrent purchases.
func (s *Service) CreatePendingSlot(ctx context.Context, in PurchaseInput) (*PendingSlot, error) {
	month := strings.TrimSpace(in.Month)
	if !ValidMonthKey(month) {
		return nil, fmt.Errorf("%w: month %q is not a valid YYYY-MM key", ErrInvalidInput, in.Month)
	}
	if month < CurrentMonth() {
		return nil, fmt.Errorf("%w: month %s is already over", ErrInvalidInput, month)
	}
	if in.OwnerID == 0 {
		return nil, fmt.Errorf("%w: owner_id is required", ErrInvalidInput)
	}

	zones := make([]Zone, 0, len(in.Placements))
	for _, tag := range in.Placements {
		z, ok := ParseZone(tag)
		if !ok {
			return nil, fmt.Errorf("%w: unknown placement %q", ErrInvalidInput, tag)
		}
		zones = append(zones, z)
	}

	slot := &models.SponsorSlot{
		UUID:          uuid.NewString(),
		OwnerID:       in.OwnerID,
		Month:         month,
		Title:         strings.TrimSpace(in.Title),
		Description:   strings.TrimSpace(in.Description),
		CTAText:       strings.TrimSpace(in.CTAText),
		CTAURL:        strings.TrimSpace(in.CTAURL),
		ImageURL:      strings.TrimSpace(in.ImageURL),
		BackgroundURL: strings.TrimSpace(in.BackgroundURL),
		LogoGlyph:     strings.TrimSpace(in.LogoGlyph),
		Variant:       strings.TrimSpace(in.Variant),
		Placements:    JoinPlacements(zones),
		Priority:      in.Priority,
		Status:        models.SponsorStatusPending,
		AmountCents:   s.cfg.SlotPriceCents,
	}
	if slot.Variant == "" {
		slot.Variant = models.SponsorVariantIndigo
	}
	if err := slot.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if err := s.repo.CreatePendingSlotGated(slot, s.cfg.MaxPerMonth); err != nil {
		return nil, err
	}

	pending := &PendingSlot{
		SlotID:      slot.UUID,
		Month:       slot.Month,
		AmountCents: slot.AmountCents,
	}
	session, err := s.checkoutSession(ctx, slot)
	if err != nil {
		// The slot stays pending; activation can still arrive through the
		// direct activation endpoint.
		log.Printf("sponsor checkout session for slot %s failed: %v", slot.UUID, err)
		pending.CheckoutRef = "local:" + slot.UUID
	} else {
		pending.CheckoutRef = session.Reference
		pending.CheckoutURL = session.URL
	}
	return pending, nil
}

func (s *Service) checkoutSession(ctx context.Context, slot *models.SponsorSlot) (*CheckoutSession, error) {
	if s.checkout == nil {
		return nil, fmt.Errorf("checkout client is not configured")
	}
	return s.checkout.CreateSession(ctx, slot.UUID, slot.AmountCents, slot.Month)
}

// ActivateSlot transitions the slot to active and records the payment
// reference. Calling it again with the same arguments leaves the slot
// active with the same reference, which makes duplicate payment
// confirmations safe.
func (s *Service) ActivateSlot(ctx context.Context, slotID, paymentRef string) (*models.SponsorSlot, error) {
	_ = ctx
	id := strings.TrimSpace(slotID)
	if id == "" {
		return nil, ErrSlotNotFound
	}

	slot, err := s.repo.ActivateSlot(id, strings.TrimSpace(paymentRef))
	if err != nil {
		return nil, err
	}
	s.invalidateAvailability(slot.Month)
	s.notifyActivation(slot)
	return slot, nil
}

// notifyActivation emails the slot owner. Fire-and-forget: failures are
// logged, never retried or surfaced.
func (s *Service) notifyActivation(slot *models.SponsorSlot) {
	if s.sendMail == nil {
		return
	}
	owner, err := s.repo.GetOwner(slot.OwnerID)
	if err != nil {
		log.Printf("sponsor activation mail: owner %d lookup failed: %v", slot.OwnerID, err)
		return
	}
	go func(to, month, title string) {
		subject := fmt.Sprintf("Your sponsor slot for %s is live", month)
		body := fmt.Sprintf("<p>Hi,</p><p>your sponsor slot <strong>%s</strong> is now active for %s.</p>", title, month)
		if err := s.sendMail(to, subject, body); err != nil {
			log.Printf("sponsor activation mail to %s failed: %v", to, err)
		}
	}(owner.Email, slot.Month, slot.Title)
}

// ExpireStaleSlots retires every active slot whose month lies before
// currentMonth. Re-running after all stale rows are expired finds zero
// rows and returns an empty month list.
func (s *Service) ExpireStaleSlots(ctx context.Context, currentMonth string) (*SweepResult, error) {
	_ = ctx
	if !ValidMonthKey(currentMonth) {
		return nil, fmt.Errorf("%w: month %q is not a valid YYYY-MM key", ErrInvalidInput, currentMonth)
	}

	expired, months, err := s.repo.ExpireStale(currentMonth)
	if err != nil {
		return nil, err
	}
	for _, month := range months {
		s.invalidateAvailability(month)
	}
	if expired > 0 {
		log.Printf("sponsor sweep expired %d slot(s) across months %v", expired, months)
	}
	return &SweepResult{Expired: expired, Months: months}, nil
}

// ActiveSlotsForMonth lists the display-eligible slots of one month,
// priority-ordered.
func (s *Service) ActiveSlotsForMonth(month string) ([]models.SponsorSlot, error) {
	if !ValidMonthKey(month) {
		return nil, fmt.Errorf("%w: month %q is not a valid YYYY-MM key", ErrInvalidInput, month)
	}
	return s.repo.ListActiveByMonth(month)
}

// SlotByUUID fetches a single slot by its public identifier.
func (s *Service) SlotByUUID(slotID string) (*models.SponsorSlot, error) {
	id := strings.TrimSpace(slotID)
	if id == "" {
		return nil, ErrSlotNotFound
	}
	return s.repo.GetSlotByUUID(id)
}

// ZonesSnapshot maps every active slot to its display zones for the UI
// layer. Bar zones are omitted when sponsor bars are disabled.
func (s *Service) ZonesSnapshot() (map[Zone][]models.SponsorSlot, error) {
	slots, err := s.repo.ListActive()
	if err != nil {
		return nil, err
	}
	return GroupByZone(slots, s.cfg), nil
}

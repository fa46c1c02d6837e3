package controllers

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/problemdock/ProblemDock/app/models"
	"github.com/problemdock/ProblemDock/internal/pkg/database"
	"github.com/problemdock/ProblemDock/internal/pkg/env"
	"github.com/problemdock/ProblemDock/internal/pkg/metrics/counter"
	"github.com/problemdock/ProblemDock/internal/pkg/sponsor"
)

// HandleSponsorAvailability reports slot counts for the current month and
// the next one, which is the only month open for purchase. Public, safe
// to poll.
func HandleSponsorAvailability(c *fiber.Ctx) error {
	svc := sponsor.NewServiceFromDB(database.GetDB())

	current, next, err := svc.CurrentAndNextAvailability()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "availability_failed"})
	}
	return c.JSON(fiber.Map{"current": current, "next": next})
}

// HandleSponsorMonthSlots lists the active slots of one month.
func HandleSponsorMonthSlots(c *fiber.Ctx) error {
	svc := sponsor.NewServiceFromDB(database.GetDB())

	slots, err := svc.ActiveSlotsForMonth(c.Params("month"))
	if err != nil {
		if errors.Is(err, sponsor.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "month must be a YYYY-MM key"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "slots_failed"})
	}
	return c.JSON(fiber.Map{"month": c.Params("month"), "slots": slots})
}

// HandleSponsorZones returns every active slot grouped into its display
// zones, priority-ordered per zone. The rotation on the client works off
// this single read.
func HandleSponsorZones(c *fiber.Ctx) error {
	svc := sponsor.NewServiceFromDB(database.GetDB())

	zones, err := svc.ZonesSnapshot()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "zones_failed"})
	}
	// Count one view per slot served; counters are flushed in batches.
	recordZoneViews(zones, counter.AddSponsorView)

	cfg := svc.Config()
	return c.JSON(fiber.Map{
		"zones": zones,
		"rotation": fiber.Map{
			"cards":            cfg.RailCards,
			"tick_ms":          cfg.TickEvery.Milliseconds(),
			"flip_duration_ms": cfg.FlipDuration.Milliseconds(),
		},
	})
}

// recordZoneViews counts one view per distinct slot in the snapshot.
// Failed increments are logged and do not stop the remaining slots from
// being counted.
func recordZoneViews(zones map[sponsor.Zone][]models.SponsorSlot, addView func(uint) error) {
	seen := make(map[uint]struct{})
	for _, slots := range zones {
		for _, slot := range slots {
			if _, ok := seen[slot.ID]; ok {
				continue
			}
			seen[slot.ID] = struct{}{}
			if err := addView(slot.ID); err != nil {
				log.Printf("sponsor view counter for slot %s failed: %v", slot.UUID, err)
			}
		}
	}
}

// HandleSponsorClick counts a click on a sponsor card and forwards the
// visitor to the sponsor's target URL. Only active slots redirect.
func HandleSponsorClick(c *fiber.Ctx) error {
	svc := sponsor.NewServiceFromDB(database.GetDB())

	slot, err := svc.SlotByUUID(c.Params("uuid"))
	if err != nil {
		if errors.Is(err, sponsor.ErrSlotNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "click_failed"})
	}
	if !slot.IsActive() || slot.CTAURL == "" {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found"})
	}

	if err := counter.AddSponsorClick(slot.ID); err != nil {
		log.Printf("sponsor click counter for slot %s failed: %v", slot.UUID, err)
	}
	return c.Redirect(slot.CTAURL, fiber.StatusFound)
}

// HandleSponsorPurchase initiates a slot purchase: validates the input,
// gates against the month capacity and returns the checkout reference for
// the created pending slot.
func HandleSponsorPurchase(c *fiber.Ctx) error {
	var input sponsor.PurchaseInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Invalid JSON body"})
	}

	svc := sponsor.NewServiceFromDB(database.GetDB())
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	pending, err := svc.CreatePendingSlot(ctx, input)
	if err != nil {
		switch {
		case errors.Is(err, sponsor.ErrCapacityExceeded):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "month_full", "message": "This month is fully booked, please pick another one"})
		case errors.Is(err, sponsor.ErrInvalidInput):
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "validation_failed", "message": err.Error()})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "purchase_failed"})
		}
	}
	return c.Status(fiber.StatusCreated).JSON(pending)
}

// HandleSponsorActivate directly activates a slot. Operational backstop
// for lost webhooks; guarded by the sweep API key in the router.
func HandleSponsorActivate(c *fiber.Ctx) error {
	var body struct {
		PaymentRef string `json:"payment_ref"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Invalid JSON body"})
	}

	svc := sponsor.NewServiceFromDB(database.GetDB())
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	slot, err := svc.ActivateSlot(ctx, c.Params("uuid"), body.PaymentRef)
	if err != nil {
		if errors.Is(err, sponsor.ErrSlotNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "activation_failed"})
	}
	return c.JSON(fiber.Map{"ok": true, "slot": slot})
}

// HandleSponsorPaymentWebhook consumes signed payment confirmations.
// Deliveries are persisted idempotently before processing, so provider
// retries never activate twice.
func HandleSponsorPaymentWebhook(c *fiber.Ctx) error {
	rawBody := append([]byte(nil), c.BodyRaw()...)
	eventID := strings.TrimSpace(c.Get("X-Sponsor-Event-ID"))
	eventType := strings.TrimSpace(c.Get("X-Sponsor-Event"))
	signature := strings.TrimSpace(c.Get("X-Sponsor-Signature"))
	secret := env.GetEnv("SPONSOR_WEBHOOK_SECRET", "")

	svc := sponsor.NewServiceFromDB(database.GetDB())
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	signatureValid := sponsor.VerifyWebhookSignature(rawBody, signature, secret)
	created, stored, err := svc.RecordWebhookEvent(ctx, sponsor.WebhookEventInput{
		ProviderEventID: eventID,
		EventType:       eventType,
		PayloadJSON:     string(rawBody),
		SignatureValid:  signatureValid,
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "webhook_persist_failed"})
	}
	if !created {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true, "duplicate": true})
	}
	if !signatureValid {
		_ = svc.MarkWebhookProcessed(ctx, stored.ID, errors.New("invalid webhook signature"))
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid_signature"})
	}

	event, err := sponsor.ParseWebhookEvent(rawBody)
	if err != nil {
		_ = svc.MarkWebhookProcessed(ctx, stored.ID, err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_payload"})
	}

	_, activateErr := svc.ActivateSlot(ctx, event.SlotID, event.PaymentRef)
	_ = svc.MarkWebhookProcessed(ctx, stored.ID, activateErr)
	if activateErr != nil {
		if errors.Is(activateErr, sponsor.ErrSlotNotFound) {
			// Acknowledge so the provider stops retrying an unknown slot.
			return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true, "ignored": true})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "activation_failed"})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true})
}

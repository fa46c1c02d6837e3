package controllers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/problemdock/ProblemDock/internal/pkg/database"
	"github.com/problemdock/ProblemDock/internal/pkg/metrics/counter"
	"github.com/problemdock/ProblemDock/internal/pkg/sponsor"
)

// HandleSponsorExpire runs the expiry sweep: every active slot whose
// month has passed is retired. Invoked by an external scheduler through
// the sweep API key; re-running is harmless.
func HandleSponsorExpire(c *fiber.Ctx) error {
	svc := sponsor.NewServiceFromDB(database.GetDB())
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	result, err := svc.ExpireStaleSlots(ctx, sponsor.CurrentMonth())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "sweep_failed"})
	}
	return c.JSON(result)
}

// HandleSponsorFlushCounters drains the pending view/click counters from
// Redis into the database. Invoked by the same external scheduler as the
// expiry sweep.
func HandleSponsorFlushCounters(c *fiber.Ctx) error {
	if err := counter.FlushAll(); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "flush_failed"})
	}
	return c.JSON(fiber.Map{"ok": true})
}

package apiv1

import (
	"github.com/gofiber/fiber/v2"

	// Delegate to existing controllers to keep behavior consistent
	"github.com/problemdock/ProblemDock/app/controllers"
	"github.com/problemdock/ProblemDock/internal/pkg/middleware"
)

// APIServer implements the public v1 API surface
type APIServer struct{}

// NewAPIServer creates a new API server instance
func NewAPIServer() *APIServer {
	return &APIServer{}
}

// RegisterHandlers attaches the v1 routes to the given router group.
func RegisterHandlers(router fiber.Router, s *APIServer) {
	router.Get("/ping", s.GetPing)

	// Public sponsor reads, no auth, safe to poll
	router.Get("/sponsors/availability", s.GetSponsorAvailability)
	router.Get("/sponsors/months/:month/slots", s.GetSponsorMonthSlots)
	router.Get("/sponsors/zones", s.GetSponsorZones)

	// Purchase initiation
	router.Post("/sponsors/purchase", s.PostSponsorPurchase)

	// Operational endpoints behind the sweep API key
	router.Post("/sponsors/:uuid/activate", middleware.SweepKeyAuth(), s.PostSponsorActivate)
	router.Post("/internal/sponsors/expire", middleware.SweepKeyAuth(), s.PostSponsorExpire)
	router.Post("/internal/sponsors/flush-counters", middleware.SweepKeyAuth(), s.PostSponsorFlushCounters)
}

// GetPing handles the ping endpoint
func (s *APIServer) GetPing(c *fiber.Ctx) error {
	response := Pong{
		Ping: "pong",
	}

	return c.Status(fiber.StatusOK).JSON(response)
}

// GetSponsorAvailability returns current+next month slot availability.
func (s *APIServer) GetSponsorAvailability(c *fiber.Ctx) error {
	return controllers.HandleSponsorAvailability(c)
}

// GetSponsorMonthSlots returns the active slots of a month.
func (s *APIServer) GetSponsorMonthSlots(c *fiber.Ctx) error {
	return controllers.HandleSponsorMonthSlots(c)
}

// GetSponsorZones returns active slots grouped by display zone.
func (s *APIServer) GetSponsorZones(c *fiber.Ctx) error {
	return controllers.HandleSponsorZones(c)
}

// PostSponsorPurchase initiates a slot purchase.
func (s *APIServer) PostSponsorPurchase(c *fiber.Ctx) error {
	return controllers.HandleSponsorPurchase(c)
}

// PostSponsorActivate directly activates a slot (webhook backstop).
// Security is enforced via the sweep key middleware attached in RegisterHandlers.
func (s *APIServer) PostSponsorActivate(c *fiber.Ctx) error {
	return controllers.HandleSponsorActivate(c)
}

// PostSponsorExpire triggers the expiry sweep.
// Security is enforced via the sweep key middleware attached in RegisterHandlers.
func (s *APIServer) PostSponsorExpire(c *fiber.Ctx) error {
	return controllers.HandleSponsorExpire(c)
}

// PostSponsorFlushCounters drains pending view/click counters to the database.
// Security is enforced via the sweep key middleware attached in RegisterHandlers.
func (s *APIServer) PostSponsorFlushCounters(c *fiber.Ctx) error {
	return controllers.HandleSponsorFlushCounters(c)
}

// Pong is the ping response body.
type Pong struct {
	Ping string `json:"ping"`
}

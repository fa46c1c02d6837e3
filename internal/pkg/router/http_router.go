package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/problemdock/ProblemDock/app/controllers"
	"github.com/problemdock/ProblemDock/internal/pkg/constants"
)

type HttpRouter struct {
}

func (h HttpRouter) InstallRouter(app *fiber.App) {
	// Payment provider webhooks (no CSRF, signature-verified in controller)
	app.Post(constants.SponsorWebhookRoute, controllers.HandleSponsorPaymentWebhook)

	// Sponsor card click-through redirect
	app.Get(constants.SponsorClickRoute, controllers.HandleSponsorClick)
}

func NewHttpRouter() *HttpRouter {
	return &HttpRouter{}
}

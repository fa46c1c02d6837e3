package constants

// Static route constants
const (
	SponsorClickRoute   = "/s/:uuid"
	SponsorWebhookRoute = "/webhooks/sponsor-payments"
)

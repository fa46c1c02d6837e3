package sponsor

import (
	"strconv"
	"time"

	"github.com/problemdock/ProblemDock/internal/pkg/env"
)

// Defaults for the product constants. All of them can be overridden via
// environment so deployments can tune capacity and rotation pacing.
const (
	DefaultMaxPerMonth    = 12
	DefaultRailCards      = 6
	DefaultTickEvery      = 8 * time.Second
	DefaultFlipDuration   = 700 * time.Millisecond
	DefaultSlotPriceCents = 4900
)

// Config carries the sponsor subsystem settings resolved at startup.
type Config struct {
	MaxPerMonth       int
	RailCards         int
	TickEvery         time.Duration
	FlipDuration      time.Duration
	EnableSponsorBars bool
	SlotPriceCents    int64
}

// LoadConfig reads the sponsor configuration from the environment.
func LoadConfig() Config {
	return Config{
		MaxPerMonth:       getEnvInt("MAX_SPONSORS_PER_MONTH", DefaultMaxPerMonth),
		RailCards:         getEnvInt("SPONSOR_RAIL_CARDS", DefaultRailCards),
		TickEvery:         getEnvDuration("SPONSOR_ROTATION_TICK", DefaultTickEvery),
		FlipDuration:      getEnvDuration("SPONSOR_FLIP_DURATION", DefaultFlipDuration),
		EnableSponsorBars: getEnvBool("ENABLE_SPONSOR_BARS", true),
		SlotPriceCents:    int64(getEnvInt("SPONSOR_SLOT_PRICE_CENTS", DefaultSlotPriceCents)),
	}
}

func getEnvInt(key string, def int) int {
	val := env.GetEnv(key, "")
	if val == "" {
		return def
	}
	n, err := strconv.Atoi(val)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func getEnvBool(key string, def bool) bool {
	val := env.GetEnv(key, "")
	if val == "" {
		return def
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return def
	}
	return b
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	val := env.GetEnv(key, "")
	if val == "" {
		return def
	}
	d, err := time.ParseDuration(val)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

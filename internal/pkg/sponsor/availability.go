package sponsor

import (
	"fmt"
	"log"
	"strconv"

	"github.com/problemdock/ProblemDock/internal/pkg/cache"
)

const availabilityCacheKey = "sponsor:availability:%s" // Format with month key

// Availability reports how booked a calendar month is against the
// capacity ceiling.
type Availability struct {
	Month     string `json:"month"`
	Count     int    `json:"count"`
	Capacity  int    `json:"capacity"`
	Available bool   `json:"available"`
}

// Availability returns the active-slot count for the month and whether
// capacity remains. A month with no active slots reports count 0 and
// available true. Pure read, no side effects beyond cache refresh.
func (s *Service) Availability(month string) (Availability, error) {
	count, err := s.activeCount(month)
	if err != nil {
		return Availability{}, err
	}
	return Availability{
		Month:     month,
		Count:     count,
		Capacity:  s.cfg.MaxPerMonth,
		Available: count < s.cfg.MaxPerMonth,
	}, nil
}

// CurrentAndNextAvailability returns availability for the running month
// and the next one, the only month open for new purchases.
func (s *Service) CurrentAndNextAvailability() (Availability, Availability, error) {
	current, err := s.Availability(CurrentMonth())
	if err != nil {
		return Availability{}, Availability{}, err
	}
	next, err := s.Availability(NextMonth())
	if err != nil {
		return Availability{}, Availability{}, err
	}
	return current, next, nil
}

func (s *Service) activeCount(month string) (int, error) {
	if s.cacheTTL > 0 {
		if cached, err := cache.GetInt(fmt.Sprintf(availabilityCacheKey, month)); err == nil {
			return cached, nil
		}
	}

	count, err := s.repo.CountActiveInMonth(month)
	if err != nil {
		return 0, err
	}

	if s.cacheTTL > 0 {
		key := fmt.Sprintf(availabilityCacheKey, month)
		if err := cache.Set(key, strconv.FormatInt(count, 10), s.cacheTTL); err != nil {
			log.Printf("Error caching sponsor availability for %s: %v", month, err)
		}
	}
	return int(count), nil
}

// invalidateAvailability drops the cached count after a slot changes
// status so the next read hits the database.
func (s *Service) invalidateAvailability(month string) {
	if s.cacheTTL <= 0 {
		return
	}
	if err := cache.Delete(fmt.Sprintf(availabilityCacheKey, month)); err != nil {
		log.Printf("Error invalidating sponsor availability cache for %s: %v", month, err)
	}
}

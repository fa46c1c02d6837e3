package sponsor

import (
	"errors"
	"time"

	"github.com/problemdock/ProblemDock/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository provides DB operations used by the sponsor service.
type Repository interface {
	CountActiveInMonth(month string) (int64, error)
	CreatePendingSlotGated(slot *models.SponsorSlot, capacity int) error
	GetSlotByUUID(uuid string) (*models.SponsorSlot, error)
	ActivateSlot(uuid, paymentRef string) (*models.SponsorSlot, error)
	ExpireStale(currentMonth string) (int64, []string, error)
	ListActiveByMonth(month string) ([]models.SponsorSlot, error)
	ListActive() ([]models.SponsorSlot, error)
	GetOwner(userID uint) (*models.User, error)
	CreateWebhookEventIfNotExists(event *models.SponsorWebhookEvent) (bool, *models.SponsorWebhookEvent, error)
	MarkWebhookProcessed(id uint, processingError string) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a sponsor repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) CountActiveInMonth(month string) (int64, error) {
	var count int64
	err := r.db.Model(&models.SponsorSlot{}).
		Where("month = ? AND status = ?", month, models.SponsorStatusActive).
		Count(&count).Error
	return count, err
}

// CreatePendingSlotGated runs the capacity check and the insert in one
// transaction holding a row lock over the month's slots, so concurrent
// purchasers cannot both pass the check against a near-full month.
func (r *gormRepository) CreatePendingSlotGated(slot *models.SponsorSlot, capacity int) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.SponsorSlot{}).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("month = ? AND status = ?", slot.Month, models.SponsorStatusActive).
			Count(&count).Error; err != nil {
			return err
		}
		if count >= int64(capacity) {
			return ErrCapacityExceeded
		}
		return tx.Create(slot).Error
	})
}

func (r *gormRepository) GetSlotByUUID(uuid string) (*models.SponsorSlot, error) {
	var slot models.SponsorSlot
	err := r.db.Where("uuid = ?", uuid).First(&slot).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSlotNotFound
		}
		return nil, err
	}
	return &slot, nil
}

// ActivateSlot unconditionally marks the slot active and records the
// payment reference. Repeating the call with the same arguments is a
// no-op, which keeps duplicate webhook deliveries harmless.
func (r *gormRepository) ActivateSlot(uuid, paymentRef string) (*models.SponsorSlot, error) {
	res := r.db.Model(&models.SponsorSlot{}).
		Where("uuid = ?", uuid).
		Updates(map[string]interface{}{
			"status":      models.SponsorStatusActive,
			"payment_ref": paymentRef,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	// RowsAffected is 0 both for unknown ids and for repeated activations,
	// so resolve the slot explicitly to tell the two apart.
	return r.GetSlotByUUID(uuid)
}

func (r *gormRepository) ExpireStale(currentMonth string) (int64, []string, error) {
	var months []string
	if err := r.db.Model(&models.SponsorSlot{}).
		Distinct("month").
		Where("status = ? AND month < ?", models.SponsorStatusActive, currentMonth).
		Order("month").
		Pluck("month", &months).Error; err != nil {
		return 0, nil, err
	}
	if len(months) == 0 {
		return 0, []string{}, nil
	}

	res := r.db.Model(&models.SponsorSlot{}).
		Where("status = ? AND month < ?", models.SponsorStatusActive, currentMonth).
		Updates(map[string]interface{}{
			"status":     models.SponsorStatusExpired,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return 0, nil, res.Error
	}
	return res.RowsAffected, months, nil
}

func (r *gormRepository) ListActiveByMonth(month string) ([]models.SponsorSlot, error) {
	var slots []models.SponsorSlot
	err := r.db.Where("month = ? AND status = ?", month, models.SponsorStatusActive).
		Order("priority ASC, id ASC").
		Find(&slots).Error
	return slots, err
}

func (r *gormRepository) ListActive() ([]models.SponsorSlot, error) {
	var slots []models.SponsorSlot
	err := r.db.Where("status = ?", models.SponsorStatusActive).
		Order("priority ASC, id ASC").
		Find(&slots).Error
	return slots, err
}

func (r *gormRepository) GetOwner(userID uint) (*models.User, error) {
	var user models.User
	err := r.db.First(&user, userID).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *gormRepository) CreateWebhookEventIfNotExists(event *models.SponsorWebhookEvent) (bool, *models.SponsorWebhookEvent, error) {
	tx := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "provider"},
			{Name: "provider_event_id"},
		},
		DoNothing: true,
	}).Create(event)
	if tx.Error != nil {
		return false, nil, tx.Error
	}

	created := tx.RowsAffected > 0
	var stored models.SponsorWebhookEvent
	if err := r.db.Where("provider = ? AND provider_event_id = ?", event.Provider, event.ProviderEventID).
		First(&stored).Error; err != nil {
		return false, nil, err
	}
	return created, &stored, nil
}

func (r *gormRepository) MarkWebhookProcessed(id uint, processingError string) error {
	now := time.Now()
	updates := map[string]interface{}{
		"processed_at":     &now,
		"processing_error": processingError,
	}
	return r.db.Model(&models.SponsorWebhookEvent{}).Where("id = ?", id).Updates(updates).Error
}

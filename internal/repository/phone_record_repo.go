package repository

import (
	"context"
	"errors"
	"time"

	"github.com/flightme/flightme/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PhoneRecordRepository is typed access to the phone subscription store.
// Replace and Delete are conditional on the version the caller read:
// a concurrent writer surfaces as domain.ErrConflict, a vanished record as
// domain.ErrNotFound.
type PhoneRecordRepository interface {
	Create(ctx context.Context, record *domain.PhoneSubscriptionRecord) error
	GetByPhoneNumber(ctx context.Context, phoneNumber string) (*domain.PhoneSubscriptionRecord, error)
	GetAll(ctx context.Context) ([]domain.PhoneSubscriptionRecord, error)
	Replace(ctx context.Context, record *domain.PhoneSubscriptionRecord) error
	Delete(ctx context.Context, record *domain.PhoneSubscriptionRecord) error
}

type GormPhoneRecordRepo struct {
	db *gorm.DB
}

func NewGormPhoneRecordRepo(db *gorm.DB) *GormPhoneRecordRepo {
	return &GormPhoneRecordRepo{db: db}
}

// Create upserts by phone number, so a first-time subscribe that races an
// identical one does not fail on the unique index.
func (r *GormPhoneRecordRepo) Create(ctx context.Context, record *domain.PhoneSubscriptionRecord) error {
	model, err := phoneRecordModelFromDomain(record)
	if err != nil {
		return err
	}

	err = r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "phone_number"}},
			DoUpdates: clause.Assignments(map[string]any{
				"subscriptions":        model.Subscriptions,
				"next_subscription_id": model.NextSubscriptionID,
				"version":              gorm.Expr("phone_subscriptions.version + 1"),
				"updated_at":           time.Now().UTC(),
			}),
		}).
		Create(model).Error
	if err != nil {
		return err
	}

	updated, err := phoneRecordModelToDomain(model)
	if err != nil {
		return err
	}
	if record != nil && updated != nil {
		*record = *updated
	}
	return nil
}

func (r *GormPhoneRecordRepo) GetByPhoneNumber(ctx context.Context, phoneNumber string) (*domain.PhoneSubscriptionRecord, error) {
	var model PhoneSubscriptionModel
	err := r.db.WithContext(ctx).First(&model, "phone_number = ?", phoneNumber).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return phoneRecordModelToDomain(&model)
}

func (r *GormPhoneRecordRepo) GetAll(ctx context.Context) ([]domain.PhoneSubscriptionRecord, error) {
	var models []PhoneSubscriptionModel
	err := r.db.WithContext(ctx).
		Order("created_at ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	records := make([]domain.PhoneSubscriptionRecord, 0, len(models))
	for i := range models {
		record, err := phoneRecordModelToDomain(&models[i])
		if err != nil {
			return nil, err
		}
		records = append(records, *record)
	}

	return records, nil
}

func (r *GormPhoneRecordRepo) Replace(ctx context.Context, record *domain.PhoneSubscriptionRecord) error {
	model, err := phoneRecordModelFromDomain(record)
	if err != nil {
		return err
	}

	result := r.db.WithContext(ctx).
		Model(&PhoneSubscriptionModel{}).
		Where("id = ? AND phone_number = ? AND version = ?", record.ID, record.PhoneNumber, record.Version).
		Updates(map[string]any{
			"subscriptions":        model.Subscriptions,
			"next_subscription_id": model.NextSubscriptionID,
			"version":              record.Version + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return r.classifyMissedWrite(ctx, record.ID)
	}

	record.Version++
	return nil
}

func (r *GormPhoneRecordRepo) Delete(ctx context.Context, record *domain.PhoneSubscriptionRecord) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND phone_number = ? AND version = ?", record.ID, record.PhoneNumber, record.Version).
		Delete(&PhoneSubscriptionModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return r.classifyMissedWrite(ctx, record.ID)
	}
	return nil
}

// classifyMissedWrite distinguishes a version mismatch from a vanished row.
func (r *GormPhoneRecordRepo) classifyMissedWrite(ctx context.Context, id string) error {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&PhoneSubscriptionModel{}).
		Where("id = ?", id).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count == 0 {
		return domain.ErrNotFound
	}
	return domain.ErrConflict
}

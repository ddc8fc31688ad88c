package repository

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/flightme/flightme/internal/domain"
	"gorm.io/datatypes"
)

// PhoneSubscriptionModel is the persistence model for phone_subscriptions.
// The subscription list is embedded as a JSONB document, one row per phone
// number, so every mutation is a whole-record read-modify-write.
type PhoneSubscriptionModel struct {
	ID                 string         `gorm:"type:uuid;primaryKey"`
	PhoneNumber        string         `gorm:"type:varchar(32);not null;uniqueIndex:idx_phone_subscriptions_phone"`
	Subscriptions      datatypes.JSON `gorm:"type:jsonb;not null"`
	NextSubscriptionID int            `gorm:"not null;default:0"`
	Version            int64          `gorm:"not null;default:0"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func (PhoneSubscriptionModel) TableName() string {
	return "phone_subscriptions"
}

func phoneRecordModelFromDomain(r *domain.PhoneSubscriptionRecord) (*PhoneSubscriptionModel, error) {
	if r == nil {
		return nil, nil
	}

	subscriptions := r.Subscriptions
	if subscriptions == nil {
		subscriptions = []domain.Subscription{}
	}
	payload, err := json.Marshal(subscriptions)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal subscriptions: %w", err)
	}

	return &PhoneSubscriptionModel{
		ID:                 r.ID,
		PhoneNumber:        r.PhoneNumber,
		Subscriptions:      datatypes.JSON(payload),
		NextSubscriptionID: r.NextSubscriptionID,
		Version:            r.Version,
		CreatedAt:          r.CreatedAt,
		UpdatedAt:          r.UpdatedAt,
	}, nil
}

func phoneRecordModelToDomain(m *PhoneSubscriptionModel) (*domain.PhoneSubscriptionRecord, error) {
	if m == nil {
		return nil, nil
	}

	var subscriptions []domain.Subscription
	if len(m.Subscriptions) > 0 {
		if err := json.Unmarshal(m.Subscriptions, &subscriptions); err != nil {
			return nil, fmt.Errorf("failed to unmarshal subscriptions for %s: %w", m.PhoneNumber, err)
		}
	}

	return &domain.PhoneSubscriptionRecord{
		ID:                 m.ID,
		PhoneNumber:        m.PhoneNumber,
		Subscriptions:      subscriptions,
		NextSubscriptionID: m.NextSubscriptionID,
		Version:            m.Version,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}, nil
}

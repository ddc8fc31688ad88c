package migrations

import (
	"github.com/flightme/flightme/internal/repository"
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
)

func createPhoneSubscriptionsTable() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "000001_create_phone_subscriptions",
		Migrate: func(tx *gorm.DB) error {
			return tx.AutoMigrate(&repository.PhoneSubscriptionModel{})
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Migrator().DropTable(&repository.PhoneSubscriptionModel{})
		},
	}
}

package database

import (
	"log"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/alvine998/marketplace-backend/config"
	"github.com/alvine998/marketplace-backend/models"
)

var DB *gorm.DB

// Connect opens the Postgres connection and stores the handle in DB.
func Connect(cfg *config.Config) error {
	var err error
	DB, err = gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{})
	if err != nil {
		log.Println("❌ Failed to connect to database:", err)
		return err
	}

	log.Println("✅ Connected to PostgreSQL successfully!")
	return nil
}

// Migrate runs the schema migrations for every model.
func Migrate() error {
	return DB.AutoMigrate(
		&models.User{},
		&models.Product{},
		&models.CartItem{},
		&models.Voucher{},
		&models.Order{},
		&models.OrderItem{},
		&models.PaymentNotification{},
	)
}

// Package testutil provides an in-memory database and fixtures for tests.
package testutil

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/pzepeda90/proyecto-final-cafeteria-sub000/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// OpenTestDB returns a migrated in-memory SQLite database unique to the test.
func OpenTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap test db: %v", err)
	}
	// A single connection keeps the shared in-memory database alive for the
	// whole test.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := db.AutoMigrate(
		&models.User{},
		&models.Address{},
		&models.Product{},
		&models.PaymentMethod{},
		&models.Cart{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.OrderStatusHistory{},
	); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

// SeedUser inserts a user with the given role and returns it.
func SeedUser(t *testing.T, db *gorm.DB, role models.Role) models.User {
	t.Helper()

	user := models.User{
		ID:    uuid.NewString(),
		Email: uuid.NewString() + "@example.com",
		Name:  "Test User",
		Role:  role,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

// SeedAddress inserts an address for a user.
func SeedAddress(t *testing.T, db *gorm.DB, userID string, principal bool) models.Address {
	t.Helper()

	address := models.Address{
		UserID:      userID,
		Street:      "Calle Falsa 123",
		City:        "Santiago",
		IsPrincipal: principal,
	}
	if err := db.Create(&address).Error; err != nil {
		t.Fatalf("seed address: %v", err)
	}
	return address
}

// SeedProduct inserts an available product with the given price and stock.
func SeedProduct(t *testing.T, db *gorm.DB, name string, price float64, stock int) models.Product {
	t.Helper()

	product := models.Product{
		Name:      name,
		Price:     price,
		Stock:     stock,
		Available: true,
	}
	if err := db.Create(&product).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return product
}

// SeedPaymentMethod inserts an active payment method.
func SeedPaymentMethod(t *testing.T, db *gorm.DB) models.PaymentMethod {
	t.Helper()

	method := models.PaymentMethod{Name: uuid.NewString(), Active: true}
	if err := db.Create(&method).Error; err != nil {
		t.Fatalf("seed payment method: %v", err)
	}
	return method
}

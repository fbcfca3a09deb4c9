// Package dbtest opens throwaway SQLite databases with the storefront schema
// and seeds the rows most service tests need.
package dbtest

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/google/uuid"
)

// New opens an in-memory database private to t and migrates every model.
func New(t testing.TB) *db.Client {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	cfg := config.DBConfig{
		SQLitePath:   fmt.Sprintf("file:%s?mode=memory&cache=shared", name),
		MaxOpenConns: 1,
	}
	client, err := db.New(context.Background(), cfg, db.Options{UseSQLite: true}, nil)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := client.DB().AutoMigrate(models.All()...); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client
}

// Seller inserts a seller.
func Seller(t testing.TB, client *db.Client, name string) models.Seller {
	t.Helper()
	row := models.Seller{OwnerUserID: uuid.New(), Name: name}
	if err := client.DB().Create(&row).Error; err != nil {
		t.Fatalf("seed seller: %v", err)
	}
	return row
}

// Product inserts a product owned by seller.
func Product(t testing.TB, client *db.Client, seller models.Seller, name string, price int64, stock int) models.Product {
	t.Helper()
	row := models.Product{SellerID: seller.ID, Name: name, Price: price, Stock: stock, Images: []string{}}
	if err := client.DB().Create(&row).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	row.Seller = &seller
	return row
}

// CartItem puts quantity of product into the buyer's cart.
func CartItem(t testing.TB, client *db.Client, buyerID uuid.UUID, product models.Product, quantity int) models.CartItem {
	t.Helper()
	row := models.CartItem{BuyerID: buyerID, ProductID: product.ID, Quantity: quantity}
	if err := client.DB().Create(&row).Error; err != nil {
		t.Fatalf("seed cart item: %v", err)
	}
	return row
}

// Address saves a shipping address for the buyer.
func Address(t testing.TB, client *db.Client, buyerID uuid.UUID) models.Address {
	t.Helper()
	row := models.Address{
		UserID:    buyerID,
		Recipient: "Nguyen Van A",
		Phone:     "0901234567",
		Line1:     "12 Le Loi",
		Ward:      "Ben Nghe",
		District:  "District 1",
		City:      "Ho Chi Minh City",
		Country:   "VN",
		IsDefault: true,
	}
	if err := client.DB().Create(&row).Error; err != nil {
		t.Fatalf("seed address: %v", err)
	}
	return row
}

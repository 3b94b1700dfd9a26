package db

import (
	"fmt"
	"log"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SeedDemoData resets the database and populates it with a small demo
// catalog, users and sidebar ads.
//
// Behavior:
//  1. Clears existing rows in every table.
//  2. Creates 5 categories and ~20 products spread across the tiered price
//     bands, with a handful flagged featured.
//  3. Creates 3 users with bcrypt-hashed passwords; one carries the
//     favorites smartphones+laptops used by the sidebar cross-sell.
//  4. Creates sidebar advertisements pointing at discounted products.
//
// Compatible with both Postgres and SQLite.
func SeedDemoData(gdb *gorm.DB) error {
	tables := []string{
		"order_items", "orders", "cart_items", "wishlist_items",
		"temporary_discounts", "advertisements", "products", "categories", "users",
	}
	for _, table := range tables {
		if err := gdb.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	log.Println("Cleared existing data")

	// --- Categories ---
	categories := []Category{
		{Slug: "smartphones", Name: "Smartphones"},
		{Slug: "laptops", Name: "Laptops"},
		{Slug: "audio", Name: "Audio"},
		{Slug: "wearables", Name: "Wearables"},
		{Slug: "gaming", Name: "Gaming"},
	}
	if err := gdb.Create(&categories).Error; err != nil {
		return fmt.Errorf("failed to seed categories: %w", err)
	}
	catBySlug := make(map[string]uint64, len(categories))
	for _, c := range categories {
		catBySlug[c.Slug] = c.ID
	}

	// --- Products (each category gets entries across the price bands) ---
	products := []Product{
		{Slug: "nimbus-a1", Name: "Nimbus A1", Price: 199.99, Stock: 40, Featured: true, CategoryID: catBySlug["smartphones"]},
		{Slug: "nimbus-x5", Name: "Nimbus X5", Price: 499.00, Stock: 25, CategoryID: catBySlug["smartphones"]},
		{Slug: "nimbus-pro-max", Name: "Nimbus Pro Max", Price: 1199.00, Stock: 12, Featured: true, CategoryID: catBySlug["smartphones"]},
		{Slug: "nimbus-fold", Name: "Nimbus Fold", Price: 1799.00, Stock: 5, CategoryID: catBySlug["smartphones"]},

		{Slug: "stratus-air", Name: "Stratus Air", Price: 299.99, Stock: 30, CategoryID: catBySlug["laptops"]},
		{Slug: "stratus-14", Name: "Stratus 14", Price: 549.99, Stock: 22, Featured: true, CategoryID: catBySlug["laptops"]},
		{Slug: "stratus-creator", Name: "Stratus Creator", Price: 1299.99, Stock: 9, CategoryID: catBySlug["laptops"]},
		{Slug: "stratus-workstation", Name: "Stratus Workstation", Price: 2399.00, Stock: 4, CategoryID: catBySlug["laptops"]},

		{Slug: "echo-buds", Name: "Echo Buds", Price: 79.99, Stock: 80, Featured: true, CategoryID: catBySlug["audio"]},
		{Slug: "echo-over-ear", Name: "Echo Over-Ear", Price: 249.00, Stock: 35, CategoryID: catBySlug["audio"]},
		{Slug: "echo-studio-monitor", Name: "Echo Studio Monitor", Price: 599.00, Stock: 14, CategoryID: catBySlug["audio"]},
		{Slug: "echo-reference", Name: "Echo Reference", Price: 899.00, Stock: 6, CategoryID: catBySlug["audio"]},

		{Slug: "pulse-band", Name: "Pulse Band", Price: 59.99, Stock: 100, CategoryID: catBySlug["wearables"]},
		{Slug: "pulse-watch", Name: "Pulse Watch", Price: 329.00, Stock: 40, Featured: true, CategoryID: catBySlug["wearables"]},
		{Slug: "pulse-watch-titanium", Name: "Pulse Watch Titanium", Price: 749.00, Stock: 10, CategoryID: catBySlug["wearables"]},

		{Slug: "vortex-pad", Name: "Vortex Pad", Price: 69.99, Stock: 60, CategoryID: catBySlug["gaming"]},
		{Slug: "vortex-console", Name: "Vortex Console", Price: 479.00, Stock: 18, Featured: true, CategoryID: catBySlug["gaming"]},
		{Slug: "vortex-rig", Name: "Vortex Rig", Price: 1899.00, Stock: 3, CategoryID: catBySlug["gaming"]},
	}
	if err := gdb.Create(&products).Error; err != nil {
		return fmt.Errorf("failed to seed products: %w", err)
	}
	log.Printf("Seeded %d products in %d categories.", len(products), len(categories))

	// --- Users ---
	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	users := []User{
		{
			Username:     "alice",
			Email:        "alice@example.com",
			PasswordHash: string(hash),
			Active:       true,
			Preferences: datatypes.NewJSONType(UserPreferences{
				FavoriteCategories: []string{"smartphones", "laptops"},
				ViewedCategories:   []string{"audio", "smartphones"},
			}),
		},
		{
			Username:     "bob",
			Email:        "bob@example.com",
			PasswordHash: string(hash),
			Active:       true,
			Preferences: datatypes.NewJSONType(UserPreferences{
				FavoriteCategories: []string{"gaming"},
				AdPreferences:      []string{"deals", "new-arrivals"},
			}),
		},
		{
			Username:     "carol",
			Email:        "carol@example.com",
			PasswordHash: string(hash),
			Active:       true,
		},
	}
	if err := gdb.Create(&users).Error; err != nil {
		return fmt.Errorf("failed to seed users: %w", err)
	}
	log.Printf("Seeded %d users.", len(users))

	// --- Sidebar advertisements ---
	smartphoneID := catBySlug["smartphones"]
	laptopID := catBySlug["laptops"]
	ads := []Advertisement{
		{Title: "Flash deal: Nimbus phones", Placement: "sidebar", CategoryID: &smartphoneID, Active: true},
		{Title: "Upgrade your Stratus", Placement: "sidebar", CategoryID: &laptopID, Active: true},
		{Title: "Weekend audio sale", Placement: "banner", Active: true},
	}
	if err := gdb.Create(&ads).Error; err != nil {
		return fmt.Errorf("failed to seed advertisements: %w", err)
	}
	log.Printf("Seeded %d advertisements.", len(ads))

	return nil
}

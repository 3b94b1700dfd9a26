package db

import (
	"time"

	"gorm.io/datatypes"
)

// UserPreferences is the JSON blob stored on the user row.
//
// ViewedCategories is append-on-view and capped at the last 10 entries;
// duplicates are preserved and the newest slug sits at the tail.
// FavoriteCategories is set-like (no duplicates, order irrelevant for matching).
// AdPreferences holds free-form targeting tags.
type UserPreferences struct {
	ViewedCategories   []string `json:"viewedCategories"`
	FavoriteCategories []string `json:"favoriteCategories"`
	AdPreferences      []string `json:"adPreferences"`
}

// ViewedCategoriesCap bounds the sliding window of viewed category slugs.
const ViewedCategoriesCap = 10

// AppendViewedCategory records a category view, trimming the window to the cap.
func (p *UserPreferences) AppendViewedCategory(slug string) {
	p.ViewedCategories = append(p.ViewedCategories, slug)
	if len(p.ViewedCategories) > ViewedCategoriesCap {
		p.ViewedCategories = p.ViewedCategories[len(p.ViewedCategories)-ViewedCategoriesCap:]
	}
}

// RecentCategories returns up to n viewed slugs, newest first.
func (p *UserPreferences) RecentCategories(n int) []string {
	out := make([]string, 0, n)
	for i := len(p.ViewedCategories) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, p.ViewedCategories[i])
	}
	return out
}

// HasFavorite reports whether slug is in the favorite set.
func (p *UserPreferences) HasFavorite(slug string) bool {
	for _, s := range p.FavoriteCategories {
		if s == slug {
			return true
		}
	}
	return false
}

// ToggleFavorite adds slug to the favorite set, or removes it if present.
// Returns true if the slug is a favorite after the call.
func (p *UserPreferences) ToggleFavorite(slug string) bool {
	for i, s := range p.FavoriteCategories {
		if s == slug {
			p.FavoriteCategories = append(p.FavoriteCategories[:i], p.FavoriteCategories[i+1:]...)
			return false
		}
	}
	p.FavoriteCategories = append(p.FavoriteCategories, slug)
	return true
}

// User table
type User struct {
	ID           uint64                              `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string                              `gorm:"uniqueIndex;size:64;not null" json:"username"`
	Email        string                              `gorm:"uniqueIndex;size:128;not null" json:"email"`
	PasswordHash string                              `gorm:"size:255;not null" json:"-"`
	Active       bool                                `gorm:"default:true" json:"active"`
	Preferences  datatypes.JSONType[UserPreferences] `json:"preferences"`
	LastLoginAt  time.Time                           `json:"lastLoginAt"`
	CreatedAt    time.Time                           `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time                           `gorm:"autoUpdateTime" json:"updatedAt"`
}

// Category table. Slug is the external identifier used by preferences,
// ads, and the tiered-discount endpoints.
type Category struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	Slug      string    `gorm:"uniqueIndex;size:64;not null" json:"slug"`
	Name      string    `gorm:"size:128;not null" json:"name"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// Product table. Every product belongs to exactly one category.
type Product struct {
	ID          uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	Slug        string    `gorm:"uniqueIndex;size:128;not null" json:"slug"`
	Name        string    `gorm:"size:128;not null" json:"name"`
	Description string    `gorm:"size:1024" json:"description"`
	Price       float64   `gorm:"not null;index" json:"price"`
	Stock       int       `gorm:"not null;default:0" json:"stock"`
	Featured    bool      `gorm:"not null;default:false;index" json:"featured"`
	ImageURL    string    `gorm:"size:512" json:"imageUrl"`
	CategoryID  uint64    `gorm:"not null;index" json:"categoryId"`
	Category    Category  `json:"category"`
	CreatedAt   time.Time `gorm:"autoCreateTime;index" json:"createdAt"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// CartItem represents one distinct product in a user's cart.
//
// Composite PK: (UserID, ProductID)
//   - At most one row per pair; repeated adds increment Quantity.
//   - A row is deleted rather than kept at quantity <= 0.
type CartItem struct {
	UserID    uint64    `gorm:"primaryKey" json:"userId"`
	ProductID uint64    `gorm:"primaryKey" json:"productId"`
	Quantity  int       `gorm:"not null;default:1" json:"quantity"`
	Product   Product   `json:"product"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// WishlistItem marks a product a user saved for later.
//
// Composite PK: (UserID, ProductID) — a product can be wished at most once.
type WishlistItem struct {
	UserID    uint64    `gorm:"primaryKey" json:"userId"`
	ProductID uint64    `gorm:"primaryKey" json:"productId"`
	Product   Product   `json:"product"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

// TemporaryDiscount is a time-boxed per-user-per-product price override
// created by clicking a promotional offer.
//
// Composite PK: (UserID, ProductID)
//   - At most one live discount per pair; refreshes upsert onto the same row.
//
// Invariant: DiscountPrice == round2(OriginalPrice * (1 - DiscountPercent/100)).
// An expired row (ExpiresAt <= now) is treated as absent by readers and is
// removed by the cleanup sweep; rows flagged AddedToCart survive expiry until
// they are older than 24h.
type TemporaryDiscount struct {
	UserID          uint64    `gorm:"primaryKey" json:"userId"`
	ProductID       uint64    `gorm:"primaryKey" json:"productId"`
	OriginalPrice   float64   `gorm:"not null" json:"originalPrice"`
	DiscountPrice   float64   `gorm:"not null" json:"discountPrice"`
	DiscountPercent float64   `gorm:"not null" json:"discountPercent"`
	Source          string    `gorm:"size:64" json:"source"`
	AddedToCart     bool      `gorm:"not null;default:false" json:"addedToCart"`
	ExpiresAt       time.Time `gorm:"not null;index" json:"expiresAt"`
	CreatedAt       time.Time `gorm:"autoCreateTime;index" json:"createdAt"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// Expired reports whether the discount is past its window at the given instant.
func (d *TemporaryDiscount) Expired(now time.Time) bool {
	return !d.ExpiresAt.After(now)
}

// Order header. Totals are snapshots taken at checkout time.
type Order struct {
	ID             uint64      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID         uint64      `gorm:"not null;index" json:"userId"`
	Status         string      `gorm:"size:32;not null;default:'pending'" json:"status"`
	Subtotal       float64     `gorm:"not null" json:"subtotal"`
	VolumeDiscount float64     `gorm:"not null;default:0" json:"volumeDiscount"`
	Total          float64     `gorm:"not null" json:"total"`
	Items          []OrderItem `json:"items"`
	CreatedAt      time.Time   `gorm:"autoCreateTime;index" json:"createdAt"`
	UpdatedAt      time.Time   `gorm:"autoUpdateTime" json:"updatedAt"`
}

// OrderItem line. UnitPrice is the post-discount price paid per unit.
type OrderItem struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID   uint64    `gorm:"not null;index" json:"orderId"`
	ProductID uint64    `gorm:"not null" json:"productId"`
	Quantity  int       `gorm:"not null" json:"quantity"`
	UnitPrice float64   `gorm:"not null" json:"unitPrice"`
	Product   Product   `json:"product"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

// Advertisement table. Placement selects where the ad renders ("sidebar",
// "banner"); an ad may point at a product, a category, or both.
type Advertisement struct {
	ID         uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	Title      string    `gorm:"size:128;not null" json:"title"`
	Placement  string    `gorm:"size:32;not null;index" json:"placement"`
	ProductID  *uint64   `gorm:"index" json:"productId,omitempty"`
	CategoryID *uint64   `gorm:"index" json:"categoryId,omitempty"`
	Active     bool      `gorm:"not null;default:true;index" json:"active"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

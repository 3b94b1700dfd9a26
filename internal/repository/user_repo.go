package repository

import (
	"context"

	"github.com/oggyb/storefront/internal/db"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// UserRepository provides data access for users and their preference blob.
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new repository bound to the given DB connection.
func NewUserRepository(database *gorm.DB) *UserRepository {
	return &UserRepository{db: database}
}

// Create inserts a new user row.
func (r *UserRepository) Create(ctx context.Context, user *db.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// GetByID returns a user by primary key.
func (r *UserRepository) GetByID(ctx context.Context, id uint64) (*db.User, error) {
	var u db.User
	if err := r.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByEmail returns a user by unique email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*db.User, error) {
	var u db.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// ExistsByEmailOrUsername reports whether either unique field is taken.
func (r *UserRepository) ExistsByEmailOrUsername(ctx context.Context, email, username string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.User{}).
		Where("email = ? OR username = ?", email, username).
		Count(&count).Error
	return count > 0, err
}

// GetPreferences loads a user's preference blob.
func (r *UserRepository) GetPreferences(ctx context.Context, userID uint64) (*db.UserPreferences, error) {
	user, err := r.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	prefs := user.Preferences.Data()
	return &prefs, nil
}

// UpdatePreferences performs a read-merge-write on the preference blob:
// the current value is loaded, mutate is applied, and the result is written
// back through the user's own update path (last write wins).
//
// Example:
//
//	repo.UpdatePreferences(ctx, 42, func(p *db.UserPreferences) {
//	    p.AppendViewedCategory("laptops")
//	})
func (r *UserRepository) UpdatePreferences(
	ctx context.Context,
	userID uint64,
	mutate func(p *db.UserPreferences),
) (*db.UserPreferences, error) {
	user, err := r.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	prefs := user.Preferences.Data()
	mutate(&prefs)

	err = r.db.WithContext(ctx).
		Model(&db.User{}).
		Where("id = ?", userID).
		Update("preferences", datatypes.NewJSONType(prefs)).Error
	if err != nil {
		return nil, err
	}
	return &prefs, nil
}

// TouchLastLogin stamps the login time; failures are not fatal to login.
func (r *UserRepository) TouchLastLogin(ctx context.Context, userID uint64) error {
	return r.db.WithContext(ctx).
		Model(&db.User{}).
		Where("id = ?", userID).
		Update("last_login_at", gorm.Expr("CURRENT_TIMESTAMP")).Error
}

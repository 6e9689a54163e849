package repository

import (
	"context"
	"errors"
	"time"

	"agora/internal/models"

	"gorm.io/gorm"
)

// ProfileUpdate carries the optional profile fields a user may edit.
type ProfileUpdate struct {
	Bio            *string
	ProfilePicture *string
}

// UserSearch is a username substring query.
type UserSearch struct {
	Term  string
	Sort  string
	Order SortOrder
}

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByResetTokenHash(ctx context.Context, tokenHash string, now time.Time) (*models.User, error)
	Exists(ctx context.Context, id uint) (bool, error)
	Create(ctx context.Context, user *models.User) error
	UpdateProfile(ctx context.Context, id uint, update ProfileUpdate) error
	UpdatePassword(ctx context.Context, id uint, passwordHash string) error
	SetResetToken(ctx context.Context, id uint, tokenHash string, expiresAt time.Time) error
	ClearResetToken(ctx context.Context, id uint) error
	ConsumeResetToken(ctx context.Context, id uint, tokenHash, passwordHash string) (bool, error)
	Search(ctx context.Context, q UserSearch, page models.PageRequest) ([]models.User, error)
	CountSearch(ctx context.Context, q UserSearch) (int64, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, notFoundOr(err, "User", id)
	}
	return &user, nil
}

// GetByEmail returns (nil, nil) when no user has the address.
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, "email = ?", email)
}

// GetByUsername returns (nil, nil) when the name is free.
func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.findOne(ctx, "username = ?", username)
}

// GetByResetTokenHash finds the user holding an unexpired reset token.
func (r *userRepository) GetByResetTokenHash(ctx context.Context, tokenHash string, now time.Time) (*models.User, error) {
	return r.findOne(ctx, "reset_token_hash = ? AND reset_token_expires_at > ?", tokenHash, now)
}

func (r *userRepository) findOne(ctx context.Context, query string, args ...interface{}) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where(query, args...).Take(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

// Create inserts user. A unique violation becomes a ConflictError naming the
// offending field.
func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if field, ok := uniqueViolationField(err); ok {
			return conflictFor(field)
		}
		return models.NewInternalError(err)
	}
	return nil
}

func conflictFor(field string) *models.AppError {
	switch field {
	case "email":
		return models.NewConflictError("email", "Email already in use")
	case "username":
		return models.NewConflictError("username", "Username already taken")
	default:
		return models.NewConflictError("", "User already exists")
	}
}

func (r *userRepository) UpdateProfile(ctx context.Context, id uint, update ProfileUpdate) error {
	fields := map[string]interface{}{}
	if update.Bio != nil {
		fields["bio"] = *update.Bio
	}
	if update.ProfilePicture != nil {
		fields["profile_picture"] = *update.ProfilePicture
	}
	if len(fields) == 0 {
		return nil
	}
	return r.updates(ctx, id, fields)
}

func (r *userRepository) UpdatePassword(ctx context.Context, id uint, passwordHash string) error {
	return r.updates(ctx, id, map[string]interface{}{"password": passwordHash})
}

func (r *userRepository) SetResetToken(ctx context.Context, id uint, tokenHash string, expiresAt time.Time) error {
	return r.updates(ctx, id, map[string]interface{}{
		"reset_token_hash":       tokenHash,
		"reset_token_expires_at": expiresAt.UTC(),
	})
}

func (r *userRepository) ClearResetToken(ctx context.Context, id uint) error {
	return r.updates(ctx, id, map[string]interface{}{
		"reset_token_hash":       nil,
		"reset_token_expires_at": nil,
	})
}

// ConsumeResetToken swaps in the new password only while the row still holds
// tokenHash, so a token can be redeemed once. It reports whether it won.
func (r *userRepository) ConsumeResetToken(ctx context.Context, id uint, tokenHash, passwordHash string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ? AND reset_token_hash = ?", id, tokenHash).
		Updates(map[string]interface{}{
			"password":               passwordHash,
			"reset_token_hash":       nil,
			"reset_token_expires_at": nil,
		})
	if res.Error != nil {
		return false, models.NewInternalError(res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *userRepository) updates(ctx context.Context, id uint, fields map[string]interface{}) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("User", id)
	}
	return nil
}

func (q UserSearch) scope(db *gorm.DB) *gorm.DB {
	return db.Where(`LOWER(users.username) LIKE ? ESCAPE '\'`, containsPattern(q.Term))
}

func (q UserSearch) orderBy() string {
	col := "users.username"
	if q.Sort == "created_at" || q.Sort == "createdAt" {
		col = "users.created_at"
	}
	dir := q.Order.sql()
	return col + " " + dir + ", users.id " + dir
}

func (r *userRepository) Search(ctx context.Context, q UserSearch, page models.PageRequest) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Scopes(q.scope).
		Order(q.orderBy()).
		Limit(page.Limit).
		Offset(page.Offset()).
		Find(&users).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

func (r *userRepository) CountSearch(ctx context.Context, q UserSearch) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).Scopes(q.scope).Count(&total).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return total, nil
}

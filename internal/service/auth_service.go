package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log/slog"
	"strings"
	"time"

	"agora/internal/cache"
	"agora/internal/middleware"
	"agora/internal/models"
	"agora/internal/notifications"
	"agora/internal/observability"
	"agora/internal/repository"
	"agora/internal/security"
	"agora/internal/validation"
)

const resetTokenBytes = 20

var errInvalidResetToken = models.NewFieldValidationError("token", "Invalid or expired reset token")

// AuthResult is returned by every operation that starts a session.
type AuthResult struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
}

type UpdateProfileInput struct {
	Bio            *string
	ProfilePicture *string
}

// AuthConfig holds the password reset settings.
type AuthConfig struct {
	ResetTokenTTL time.Duration
	ResetURLBase  string
}

// AuthService manages accounts, sessions and password resets.
type AuthService struct {
	users   repository.UserRepository
	follows repository.FollowRepository
	hasher  security.PasswordHasher
	tokens  *security.TokenManager
	mailer  notifications.PasswordResetMailer
	cache   *cache.Store
	cfg     AuthConfig
	now     func() time.Time

	// dummyHash is compared against when the email is unknown.
	dummyHash string
}

func NewAuthService(
	users repository.UserRepository,
	follows repository.FollowRepository,
	hasher security.PasswordHasher,
	tokens *security.TokenManager,
	mailer notifications.PasswordResetMailer,
	store *cache.Store,
	cfg AuthConfig,
) *AuthService {
	if cfg.ResetTokenTTL <= 0 {
		cfg.ResetTokenTTL = 30 * time.Minute
	}
	s := &AuthService{
		users:   users,
		follows: follows,
		hasher:  hasher,
		tokens:  tokens,
		mailer:  mailer,
		cache:   store,
		cfg:     cfg,
		now:     time.Now,
	}
	if h, err := hasher.Hash(context.Background(), "agora-dummy-password"); err == nil {
		s.dummyHash = h
	} else {
		middleware.Logger.Error("failed to prepare dummy password hash", slog.String("error", err.Error()))
	}
	return s
}

// Register creates an account and signs the new user in. Email conflicts
// are reported before username conflicts.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (result *AuthResult, err error) {
	defer func() { observability.RecordAuthEvent("register", err) }()

	username := strings.TrimSpace(in.Username)
	email := validation.NormalizeEmail(in.Email)
	if err := fieldError("username", validation.ValidateUsername(username)); err != nil {
		return nil, err
	}
	if err := fieldError("email", validation.ValidateEmail(email)); err != nil {
		return nil, err
	}
	if err := fieldError("password", validation.ValidatePassword(in.Password)); err != nil {
		return nil, err
	}

	if existing, err := s.users.GetByEmail(ctx, email); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, models.NewConflictError("email", "Email already in use")
	}
	if existing, err := s.users.GetByUsername(ctx, username); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, models.NewConflictError("username", "Username already taken")
	}

	hash, err := s.hasher.Hash(ctx, in.Password)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{Username: username, Email: email, Password: hash}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return s.session(user)
}

// Login fails identically for an unknown email and a wrong password.
func (s *AuthService) Login(ctx context.Context, email, password string) (result *AuthResult, err error) {
	defer func() { observability.RecordAuthEvent("login", err) }()

	email = validation.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, models.NewValidationError("Please provide an email and password")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		// Burn the same bcrypt time as a real check.
		_ = s.hasher.Compare(ctx, s.dummyHash, password)
		return nil, models.NewUnauthorizedError("Invalid credentials")
	}

	if err := s.hasher.Compare(ctx, user.Password, password); err != nil {
		if errors.Is(err, security.ErrMismatch) {
			return nil, models.NewUnauthorizedError("Invalid credentials")
		}
		return nil, models.NewInternalError(err)
	}
	return s.session(user)
}

func (s *AuthService) session(user *models.User) (*AuthResult, error) {
	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &AuthResult{User: user, Token: token}, nil
}

// Authenticate resolves a bearer token to a user ID. The user must still
// exist; lookups are cached briefly.
func (s *AuthService) Authenticate(ctx context.Context, token string) (uint, error) {
	userID, err := s.tokens.Parse(token)
	if err != nil {
		return 0, models.NewUnauthorizedError("Not authorized, token failed")
	}

	var principal models.UserSummary
	err = s.cache.Aside(ctx, cache.UserKey(userID), &principal, cache.UserTTL, func() error {
		user, err := s.users.GetByID(ctx, userID)
		if err != nil {
			return err
		}
		principal = user.Summary()
		return nil
	})
	if err != nil {
		if models.IsCode(err, models.CodeNotFound) {
			return 0, models.NewUnauthorizedError("Not authorized, user not found")
		}
		return 0, err
	}
	return principal.ID, nil
}

// GetCurrentUser returns the caller with live follower counts.
func (s *AuthService) GetCurrentUser(ctx context.Context, userID uint) (*models.UserProfile, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	followers, err := s.follows.CountFollowers(ctx, userID)
	if err != nil {
		return nil, err
	}
	following, err := s.follows.CountFollowing(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &models.UserProfile{User: *user, FollowersCount: followers, FollowingCount: following}, nil
}

// RequestPasswordReset always succeeds for a well-formed address so callers
// cannot probe which emails are registered. Only delivery failures surface.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) (err error) {
	defer func() { observability.RecordAuthEvent("password_reset_request", err) }()

	email = validation.NormalizeEmail(email)
	if err := fieldError("email", validation.ValidateEmail(email)); err != nil {
		return err
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user == nil {
		middleware.Logger.InfoContext(ctx, "password reset requested for unknown email")
		return nil
	}

	token, err := newResetToken()
	if err != nil {
		return models.NewInternalError(err)
	}
	expiresAt := s.now().UTC().Add(s.cfg.ResetTokenTTL)
	if err := s.users.SetResetToken(ctx, user.ID, hashResetToken(token), expiresAt); err != nil {
		return err
	}

	msg := notifications.PasswordResetMessage{
		To:        user.Email,
		Username:  user.Username,
		ResetURL:  strings.TrimRight(s.cfg.ResetURLBase, "/") + "/" + token,
		ExpiresAt: expiresAt,
	}
	if err := s.mailer.SendPasswordReset(ctx, msg); err != nil {
		middleware.Logger.ErrorContext(ctx, "password reset email could not be queued",
			slog.Uint64("user_id", uint64(user.ID)),
			slog.String("error", err.Error()),
		)
		if clearErr := s.users.ClearResetToken(ctx, user.ID); clearErr != nil {
			middleware.Logger.ErrorContext(ctx, "failed to clear reset token", slog.String("error", clearErr.Error()))
		}
		return models.NewInternalError(err)
	}
	return nil
}

// ResetPassword redeems a reset token once and signs the user in.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) (result *AuthResult, err error) {
	defer func() { observability.RecordAuthEvent("password_reset", err) }()

	if err := fieldError("password", validation.ValidatePassword(newPassword)); err != nil {
		return nil, err
	}
	if token == "" {
		return nil, errInvalidResetToken
	}

	tokenHash := hashResetToken(token)
	user, err := s.users.GetByResetTokenHash(ctx, tokenHash, s.now().UTC())
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errInvalidResetToken
	}

	hash, err := s.hasher.Hash(ctx, newPassword)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	consumed, err := s.users.ConsumeResetToken(ctx, user.ID, tokenHash, hash)
	if err != nil {
		return nil, err
	}
	if !consumed {
		return nil, errInvalidResetToken
	}

	s.cache.InvalidateUser(ctx, user.ID)
	user.Password = hash
	user.ResetTokenHash = nil
	user.ResetTokenExpiresAt = nil
	return s.session(user)
}

// ChangePassword requires the current password before storing a new one.
func (s *AuthService) ChangePassword(ctx context.Context, userID uint, currentPassword, newPassword string) (err error) {
	defer func() { observability.RecordAuthEvent("password_change", err) }()

	if currentPassword == "" {
		return models.NewFieldValidationError("currentPassword", "Current password is required")
	}
	if err := fieldError("newPassword", validation.ValidatePassword(newPassword)); err != nil {
		return err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.hasher.Compare(ctx, user.Password, currentPassword); err != nil {
		if errors.Is(err, security.ErrMismatch) {
			return models.NewUnauthorizedError("Current password is incorrect")
		}
		return models.NewInternalError(err)
	}

	hash, err := s.hasher.Hash(ctx, newPassword)
	if err != nil {
		return models.NewInternalError(err)
	}
	if err := s.users.UpdatePassword(ctx, userID, hash); err != nil {
		return err
	}
	s.cache.InvalidateUser(ctx, userID)
	return nil
}

// UpdateProfile edits the caller's bio and avatar.
func (s *AuthService) UpdateProfile(ctx context.Context, userID uint, in UpdateProfileInput) (*models.UserProfile, error) {
	if in.Bio != nil {
		if err := fieldError("bio", validation.ValidateLength("Bio", *in.Bio, validation.MaxBioLength)); err != nil {
			return nil, err
		}
	}
	if in.ProfilePicture != nil && *in.ProfilePicture != "" {
		if err := fieldError("profilePicture", validation.ValidateURL(*in.ProfilePicture)); err != nil {
			return nil, err
		}
	}

	update := repository.ProfileUpdate{Bio: in.Bio, ProfilePicture: in.ProfilePicture}
	if err := s.users.UpdateProfile(ctx, userID, update); err != nil {
		return nil, err
	}
	s.cache.InvalidateUser(ctx, userID)
	return s.GetCurrentUser(ctx, userID)
}

func newResetToken() (string, error) {
	buf := make([]byte, resetTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func hashResetToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

package services

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/shashiranjanraj/atelier/app/models"
	"github.com/shashiranjanraj/atelier/pkg/auth"
	"github.com/shashiranjanraj/atelier/pkg/logger"
	"github.com/shashiranjanraj/atelier/pkg/storage"
	"github.com/shashiranjanraj/atelier/pkg/validate"
)

// ErrInvalidCredentials is returned on a failed login. The same error covers
// unknown email and wrong password so the response leaks nothing.
var ErrInvalidCredentials = errors.New("invalid email or password")

// AccountStore is the account persistence surface.
type AccountStore interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	UpdateProfile(ctx context.Context, user *models.User) error
	All(ctx context.Context, page, limit int) ([]models.User, error)
}

// ImageHost stores uploaded images and serves them by URL.
type ImageHost interface {
	Upload(data []byte, folder string, width int) (*storage.StoredImage, error)
	Delete(id string) error
}

// AuthService handles registration, login, and profile updates.
type AuthService struct {
	users  AccountStore
	images ImageHost
}

func NewAuthService(users AccountStore, images ImageHost) *AuthService {
	return &AuthService{users: users, images: images}
}

// RegisterInput is the signup request.
type RegisterInput struct {
	Name     string `json:"name" validate:"required,min=2"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// AuthResult bundles the authenticated user with its token pair.
type AuthResult struct {
	User         *models.User `json:"user"`
	Token        string       `json:"token"`
	RefreshToken string       `json:"refreshToken"`
}

// Register creates a new user account and logs it in.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	if errs := validate.Struct(in); validate.HasErrors(errs) {
		return nil, ValidationErrors(errs)
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, ValidationErrors{"email": "email is already registered"}
	} else if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Name:     strings.TrimSpace(in.Name),
		Email:    email,
		Password: hash,
		Role:     models.RoleUser,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	logger.Info("user registered", "user", user.ID.Hex())
	return s.issueTokens(user)
}

// Login authenticates by email and password.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !auth.CheckPassword(user.Password, password) {
		return nil, ErrInvalidCredentials
	}
	return s.issueTokens(user)
}

// Me loads the calling user's profile.
func (s *AuthService) Me(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, wrapNotFound(err)
	}
	return user, nil
}

// UpdateProfile changes the display name and, when avatar bytes are given,
// replaces the avatar through the image host. An image-host failure here
// propagates: the avatar path is the one gateway call that is not
// fire-and-forget.
func (s *AuthService) UpdateProfile(ctx context.Context, userID, name string, avatar []byte) (*models.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, wrapNotFound(err)
	}
	if name != "" {
		user.Name = strings.TrimSpace(name)
	}
	if len(avatar) > 0 {
		img, err := s.images.Upload(avatar, "avatars", 200)
		if err != nil {
			return nil, &GatewayError{Op: "avatar upload", Err: err}
		}
		if user.Avatar != nil {
			if err := s.images.Delete(user.Avatar.ID); err != nil {
				logger.Warn("old avatar not deleted", "user", userID, "error", err)
			}
		}
		user.Avatar = &models.Image{ID: img.ID, URL: img.URL}
	}
	if err := s.users.UpdateProfile(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Users lists accounts (admin).
func (s *AuthService) Users(ctx context.Context, page, limit int) ([]models.User, error) {
	return s.users.All(ctx, page, limit)
}

func (s *AuthService) issueTokens(user *models.User) (*AuthResult, error) {
	token, err := auth.GenerateToken(user.ID.Hex(), user.Role)
	if err != nil {
		return nil, err
	}
	refresh, err := auth.GenerateRefreshToken(user.ID.Hex(), user.Role)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user, Token: token, RefreshToken: refresh}, nil
}

package service

import (
	"context"
	"errors"
	"time"

	"github.com/caio/vmfleet/internal/config"
	"github.com/caio/vmfleet/internal/discord"
	"github.com/caio/vmfleet/internal/domain"
	"github.com/caio/vmfleet/internal/repository"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCode = errors.New("invalid authorization code")

// IdentityProvider yields an authenticated Discord identity from an
// OAuth2 authorization code. *discord.Client is the real one; tests
// substitute a fake.
type IdentityProvider interface {
	AuthorizeURL(state string) string
	ExchangeCode(ctx context.Context, code string) (string, error)
	FetchUser(ctx context.Context, accessToken string) (*discord.Identity, error)
}

type AuthService struct {
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
	provider    IdentityProvider
	clock       Clock
	cfg         *config.Config
}

func NewAuthService(userRepo repository.UserRepository, sessionRepo repository.SessionRepository, provider IdentityProvider, clock Clock, cfg *config.Config) *AuthService {
	return &AuthService{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		provider:    provider,
		clock:       clock,
		cfg:         cfg,
	}
}

type AuthResult struct {
	User         *domain.User
	AccessToken  string
	RefreshToken string
}

// LoginURL returns the Discord authorize URL with a fresh state nonce.
func (s *AuthService) LoginURL() (url, state string) {
	state = uuid.New().String()
	return s.provider.AuthorizeURL(state), state
}

// LoginWithCode completes the OAuth2 flow: exchanges the code, fetches
// the Discord identity and upserts the user. First logins create the
// account with role client; the configured founder id gets founder.
func (s *AuthService) LoginWithCode(ctx context.Context, code string) (*AuthResult, error) {
	accessToken, err := s.provider.ExchangeCode(ctx, code)
	if err != nil {
		return nil, ErrInvalidCode
	}

	identity, err := s.provider.FetchUser(ctx, accessToken)
	if err != nil {
		return nil, ErrInvalidCode
	}

	user, err := s.upsertUser(ctx, identity)
	if err != nil {
		return nil, err
	}

	return s.generateTokens(ctx, user)
}

func (s *AuthService) upsertUser(ctx context.Context, identity *discord.Identity) (*domain.User, error) {
	now := s.clock.Now()

	user, err := s.userRepo.GetByID(ctx, identity.ID)
	if err == nil {
		// Refresh the profile fields Discord owns; role and grants
		// stay untouched.
		user.Username = identity.Username
		user.Email = identity.Email
		user.AvatarURL = identity.AvatarURL
		user.UpdatedAt = now
		if err := s.userRepo.Update(ctx, user); err != nil {
			return nil, err
		}
		return user, nil
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	role := domain.RoleClient
	if identity.ID == s.cfg.FounderDiscordID {
		role = domain.RoleFounder
	}
	user = &domain.User{
		ID:        identity.ID,
		Username:  identity.Username,
		Email:     identity.Email,
		AvatarURL: identity.AvatarURL,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *AuthService) generateTokens(ctx context.Context, user *domain.User) (*AuthResult, error) {
	accessToken, err := s.generateAccessToken(user)
	if err != nil {
		return nil, err
	}

	refreshToken := uuid.New().String()
	hashedRefresh, err := bcrypt.GenerateFromPassword([]byte(refreshToken), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	// One session per user; a new login replaces the old one.
	_ = s.sessionRepo.DeleteByUserID(ctx, user.ID)

	session := &domain.UserSession{
		ID:               uuid.New().String(),
		UserID:           user.ID,
		RefreshTokenHash: string(hashedRefresh),
		ExpiresAt:        s.clock.Now().Add(7 * 24 * time.Hour),
		CreatedAt:        s.clock.Now(),
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, err
	}

	return &AuthResult{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

func (s *AuthService) generateAccessToken(user *domain.User) (string, error) {
	now := s.clock.Now()
	claims := jwt.MapClaims{
		"sub":  user.ID,
		"name": user.Username,
		"role": user.Role.String(),
		"exp":  now.Add(time.Duration(s.cfg.JWTExpirationHours) * time.Hour).Unix(),
		"iat":  now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

func (s *AuthService) ValidateToken(tokenString string) (*jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(s.cfg.JWTSecret), nil
	}, jwt.WithTimeFunc(s.clock.Now))

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return &claims, nil
	}

	return nil, errors.New("invalid token")
}

func (s *AuthService) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

func (s *AuthService) Logout(ctx context.Context, userID string) error {
	return s.sessionRepo.DeleteByUserID(ctx, userID)
}

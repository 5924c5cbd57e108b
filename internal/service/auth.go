package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"bora-alugar-backend/internal/cache"
	"bora-alugar-backend/internal/domain"
	"bora-alugar-backend/internal/logger"
	"bora-alugar-backend/internal/repository"
	"bora-alugar-backend/internal/security"
	"bora-alugar-backend/internal/utils"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type authService struct {
	userRepo repository.UserRepository
	tokens   security.TokenManager
	denylist cache.TokenDenylist
}

func NewAuthService(userRepo repository.UserRepository, tokens security.TokenManager, denylist cache.TokenDenylist) AuthService {
	return &authService{
		userRepo: userRepo,
		tokens:   tokens,
		denylist: denylist,
	}
}

func (s *authService) Signup(ctx context.Context, in SignupInput) (*domain.User, *Tokens, error) {
	logger.EnterMethod("authService.Signup", "email", in.Email)

	in.Email = strings.TrimSpace(strings.ToLower(in.Email))
	in.Name = strings.TrimSpace(in.Name)

	v := validation{}
	v.check(validate.Var(in.Email, "required,email") == nil, "email", "must be a valid email address")
	v.check(utils.StrongPassword(in.Password), "password", "must have at least 8 characters with a letter and a digit")
	v.check(in.Name != "", "name", "is required")
	v.check(in.TaxID == "" || utils.ValidCPF(in.TaxID), "taxId", "must be a valid CPF")
	if err := v.err(); err != nil {
		logger.ExitMethodWithError("authService.Signup", err)
		return nil, nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &domain.User{
		Email:        in.Email,
		PasswordHash: string(hash),
		Name:         in.Name,
		Phone:        in.Phone,
		TaxID:        utils.NormalizeTaxID(in.TaxID),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			err = ErrEmailTaken
		}
		logger.ExitMethodWithError("authService.Signup", err)
		return nil, nil, err
	}

	tokens, err := s.issue(user)
	if err != nil {
		return nil, nil, err
	}
	logger.ExitMethod("authService.Signup", "userID", user.ID)
	return user, tokens, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (*domain.User, *Tokens, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		logger.Info("Login failed", "userID", user.ID)
		return nil, nil, ErrInvalidCredentials
	}

	tokens, err := s.issue(user)
	if err != nil {
		return nil, nil, err
	}
	return user, tokens, nil
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*Tokens, error) {
	claims, err := s.parse(ctx, refreshToken, security.TokenTypeRefresh)
	if err != nil {
		return nil, err
	}

	// Role and email may have changed since the token was issued
	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}

	if err := s.revoke(ctx, claims); err != nil {
		return nil, err
	}
	return s.issue(user)
}

// Logout revokes the access token of the session and, when given, its refresh token
func (s *authService) Logout(ctx context.Context, access *security.UserClaims, refreshToken string) error {
	if access != nil {
		if err := s.revoke(ctx, access); err != nil {
			return err
		}
	}
	if refreshToken == "" {
		return nil
	}
	claims, err := s.parse(ctx, refreshToken, security.TokenTypeRefresh)
	if err != nil {
		if errors.Is(err, ErrInvalidToken) {
			// Already unusable
			return nil
		}
		return err
	}
	if access != nil && claims.UserID != access.UserID {
		return ErrForbidden
	}
	return s.revoke(ctx, claims)
}

func (s *authService) parse(ctx context.Context, token string, typ security.TokenType) (*security.UserClaims, error) {
	claims, err := s.tokens.ValidateToken(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Type != typ {
		return nil, ErrInvalidToken
	}
	revoked, err := s.denylist.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check token revocation: %w", err)
	}
	if revoked {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (s *authService) revoke(ctx context.Context, claims *security.UserClaims) error {
	until := time.Now().Add(time.Hour)
	if claims.ExpiresAt != nil {
		until = claims.ExpiresAt.Time
	}
	if err := s.denylist.Revoke(ctx, claims.ID, until); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

func (s *authService) issue(user *domain.User) (*Tokens, error) {
	access, err := s.tokens.GenerateAccessToken(user.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}
	refresh, err := s.tokens.GenerateRefreshToken(user.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}
	return &Tokens{AccessToken: access, RefreshToken: refresh}, nil
}

// internal/services/auth_service.go
package services

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/ipforge/registry/internal/config"
	"github.com/ipforge/registry/internal/models"
	"github.com/ipforge/registry/internal/utils"
)

type AuthService struct {
	db  *gorm.DB
	cfg *config.Config
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type AuthResponse struct {
	Account      *models.Account `json:"account"`
	AccessToken  string          `json:"access_token"`
	RefreshToken string          `json:"refresh_token"`
	TokenType    string          `json:"token_type"`
	ExpiresIn    int             `json:"expires_in"` // in seconds
}

func NewAuthService(db *gorm.DB, cfg *config.Config) *AuthService {
	return &AuthService{
		db:  db,
		cfg: cfg,
	}
}

func (s *AuthService) Register(req *RegisterRequest) (*AuthResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, models.Wrap(models.KindInvalidInput, "validation failed", err)
	}

	var existing models.Account
	if err := s.db.Where("email = ? OR username = ?", req.Email, req.Username).First(&existing).Error; err == nil {
		if existing.Email == req.Email {
			return nil, models.E(models.KindInvalidInput, "account with this email already exists")
		}
		return nil, models.E(models.KindInvalidInput, "username already taken")
	}

	account := &models.Account{
		Username: req.Username,
		Email:    req.Email,
		Role:     models.RoleNone,
		Status:   models.AccountStatusActive,
	}

	if err := account.SetPassword(req.Password); err != nil {
		return nil, models.Wrap(models.KindInternal, "password hash failed", err)
	}

	if err := s.db.Create(account).Error; err != nil {
		return nil, models.Wrap(models.KindInternal, "account create failed", err)
	}

	return s.issueTokens(account)
}

func (s *AuthService) Login(req *LoginRequest) (*AuthResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, models.Wrap(models.KindInvalidInput, "validation failed", err)
	}

	var account models.Account
	if err := s.db.Where("email = ?", req.Email).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.E(models.KindUnauthorized, "invalid email or password")
		}
		return nil, models.Wrap(models.KindInternal, "account lookup failed", err)
	}

	if account.Status == models.AccountStatusSuspended {
		return nil, models.E(models.KindUnauthorized, "account is suspended")
	}

	if err := account.CheckPassword(req.Password); err != nil {
		return nil, models.E(models.KindUnauthorized, "invalid email or password")
	}

	now := time.Now()
	account.LastLoginAt = &now
	if err := s.db.Save(&account).Error; err != nil {
		logrus.WithError(err).Warn("Failed to record last login time")
	}

	return s.issueTokens(&account)
}

func (s *AuthService) RefreshToken(refreshToken string) (*AuthResponse, error) {
	accountIDStr, err := utils.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, models.Wrap(models.KindUnauthorized, "invalid refresh token", err)
	}

	accountID, err := uuid.Parse(accountIDStr)
	if err != nil {
		return nil, models.E(models.KindUnauthorized, "invalid account ID in token")
	}

	var account models.Account
	if err := s.db.First(&account, "id = ?", accountID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.E(models.KindUnauthorized, "account not found")
		}
		return nil, models.Wrap(models.KindInternal, "account lookup failed", err)
	}

	if account.Status != models.AccountStatusActive {
		return nil, models.E(models.KindUnauthorized, "account is not active")
	}

	return s.issueTokens(&account)
}

func (s *AuthService) GetAccountByID(accountID uuid.UUID) (*models.Account, error) {
	var account models.Account
	if err := s.db.First(&account, "id = ?", accountID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.E(models.KindNotFound, "account not found")
		}
		return nil, models.Wrap(models.KindInternal, "account lookup failed", err)
	}
	return &account, nil
}

func (s *AuthService) issueTokens(account *models.Account) (*AuthResponse, error) {
	accessToken, err := utils.GenerateJWT(
		account.ID,
		account.Username,
		string(account.Role),
		s.cfg.JWT.AccessTokenTTL,
	)
	if err != nil {
		return nil, models.Wrap(models.KindInternal, "access token generation failed", err)
	}

	refreshToken, err := utils.GenerateRefreshToken(account.ID, s.cfg.JWT.RefreshTokenTTL)
	if err != nil {
		return nil, models.Wrap(models.KindInternal, "refresh token generation failed", err)
	}

	return &AuthResponse{
		Account:      account,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    s.cfg.JWT.AccessTokenTTL * 3600,
	}, nil
}

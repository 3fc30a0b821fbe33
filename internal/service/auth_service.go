package service

import (
	"errors"

	"kosku/config"
	"kosku/internal/auth"
	"kosku/internal/domain"
	"kosku/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrEmailExists  = errors.New("email already registered")
	ErrInvalidCreds = errors.New("invalid email or password")
)

type AuthService struct {
	cfg   *config.Config
	users UserStore
}

func NewAuthService(cfg *config.Config, users UserStore) *AuthService {
	return &AuthService{cfg: cfg, users: users}
}

// Register creates a user and returns access+refresh tokens. Public signup
// always lands on CUSTOMER; staff accounts are created by admins through
// RegisterStaff.
func (s *AuthService) Register(name, email, phone, password string) (*models.User, string, string, error) {
	if _, err := s.users.GetByEmail(email); err == nil {
		return nil, "", "", ErrEmailExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", "", err
	}
	u := &models.User{
		Name:         name,
		Email:        email,
		Phone:        phone,
		PasswordHash: string(hash),
		Role:         domain.RoleCustomer,
	}
	if err := s.users.Create(u); err != nil {
		return nil, "", "", err
	}
	return s.withTokens(u)
}

// RegisterStaff creates an ADMINKOS or RECEPTIONIST account. Receptionists
// are scoped to one property.
func (s *AuthService) RegisterStaff(name, email, password, role string, propertyID *uint) (*models.User, error) {
	if role != domain.RoleAdminKos && role != domain.RoleReceptionist {
		return nil, domain.ErrValidation
	}
	if role == domain.RoleReceptionist && propertyID == nil {
		return nil, domain.ErrValidation
	}
	if _, err := s.users.GetByEmail(email); err == nil {
		return nil, ErrEmailExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	u := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		PropertyID:   propertyID,
	}
	if err := s.users.Create(u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *AuthService) Login(email, password string) (*models.User, string, string, error) {
	u, err := s.users.GetByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", "", ErrInvalidCreds
		}
		return nil, "", "", err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, "", "", ErrInvalidCreds
	}
	return s.withTokens(u)
}

func (s *AuthService) Refresh(refreshToken string) (string, error) {
	userID, err := auth.ParseRefreshToken(&s.cfg.JWT, refreshToken)
	if err != nil {
		return "", auth.ErrInvalidToken
	}
	u, err := s.users.GetByID(userID)
	if err != nil {
		return "", auth.ErrInvalidToken
	}
	return auth.GenerateAccessToken(&s.cfg.JWT, u.ID, u.Email, u.Role)
}

// LoginWithGoogle finds or creates the CUSTOMER account linked to a verified
// Google identity. Existing email signups get their Google id linked.
func (s *AuthService) LoginWithGoogle(googleID, email, name string) (*models.User, string, string, error) {
	u, err := s.users.GetByGoogleID(googleID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", "", err
	}
	if u == nil || errors.Is(err, gorm.ErrRecordNotFound) {
		u, err = s.users.GetByEmail(email)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", "", err
		}
		if u == nil || errors.Is(err, gorm.ErrRecordNotFound) {
			u = &models.User{
				Name:     name,
				Email:    email,
				Role:     domain.RoleCustomer,
				GoogleID: &googleID,
			}
			if err := s.users.Create(u); err != nil {
				return nil, "", "", err
			}
		} else {
			u.GoogleID = &googleID
			if err := s.users.Update(u); err != nil {
				return nil, "", "", err
			}
		}
	}
	return s.withTokens(u)
}

func (s *AuthService) withTokens(u *models.User) (*models.User, string, string, error) {
	access, err := auth.GenerateAccessToken(&s.cfg.JWT, u.ID, u.Email, u.Role)
	if err != nil {
		return u, "", "", err
	}
	refresh, err := auth.GenerateRefreshToken(&s.cfg.JWT, u.ID)
	if err != nil {
		return u, access, "", err
	}
	return u, access, refresh, nil
}

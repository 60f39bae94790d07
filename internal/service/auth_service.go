package service

import (
	"context"
	"errors"
	"strings"

	"okurmen-backend/internal/model"
	"okurmen-backend/internal/repository"
	"okurmen-backend/utilities"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// RegisterInput is the registration form of a test taker.
type RegisterInput struct {
	FullName    string
	PhoneNumber string
	Age         int
	AgeSet      bool
}

// AuthService interface
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*model.User, string, error)
	Login(ctx context.Context, phoneNumber string) (*model.User, string, error)
	AdminLogin(ctx context.Context, email, password string) (*model.Admin, string, error)
	CurrentIdentity(ctx context.Context, p model.Principal) (model.Identity, error)
	CreateAdmin(ctx context.Context, email, password string) (*model.Admin, error)
}

type authService struct {
	userRepo  repository.UserRepository
	adminRepo repository.AdminRepository
	tokens    *utilities.TokenService
	bus       *utilities.EventBus
}

// NewAuthService initializes authentication service
func NewAuthService(
	userRepo repository.UserRepository,
	adminRepo repository.AdminRepository,
	tokens *utilities.TokenService,
	bus *utilities.EventBus,
) AuthService {
	return &authService{userRepo: userRepo, adminRepo: adminRepo, tokens: tokens, bus: bus}
}

func (s *authService) Register(ctx context.Context, in RegisterInput) (*model.User, string, error) {
	fullName := strings.TrimSpace(in.FullName)
	phone := strings.TrimSpace(in.PhoneNumber)
	switch {
	case fullName == "":
		return nil, "", Validation("Full name is required")
	case phone == "":
		return nil, "", Validation("Phone number is required")
	case !in.AgeSet:
		return nil, "", Validation("Age is required")
	case in.Age < 1 || in.Age > 150:
		return nil, "", Validation("Age must be a valid number between 1 and 150")
	}

	existing, err := s.userRepo.GetUserByPhone(ctx, phone)
	switch {
	case err == nil:
		utilities.Warn("registration rejected: phone %s already belongs to user %s", maskPhone(phone), existing.ID)
		return nil, "", ErrUserExists
	case !errors.Is(err, repository.ErrNotFound):
		return nil, "", storeError("lookup user", "User", err)
	}

	user := &model.User{FullName: fullName, PhoneNumber: phone, Age: in.Age}
	if err := s.userRepo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, "", ErrUserExists
		}
		return nil, "", storeError("create user", "User", err)
	}

	token, err := s.tokens.Issue(user.ID, model.RoleUser)
	if err != nil {
		return nil, "", &AppError{Kind: KindInternal, Message: "Server error during registration", Err: err}
	}
	utilities.Info("user created: %s", user.ID)
	if s.bus != nil {
		s.bus.Publish(utilities.EventUserCreated, *user)
	}
	return user, token, nil
}

// Login authenticates a test taker by phone number alone.
func (s *authService) Login(ctx context.Context, phoneNumber string) (*model.User, string, error) {
	phone := strings.TrimSpace(phoneNumber)
	if phone == "" {
		return nil, "", Validation("Phone number is required")
	}

	user, err := s.userRepo.GetUserByPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", storeError("lookup user", "User", err)
	}

	token, err := s.tokens.Issue(user.ID, model.RoleUser)
	if err != nil {
		return nil, "", &AppError{Kind: KindInternal, Message: "Server error during login", Err: err}
	}
	return user, token, nil
}

// AdminLogin answers an unknown email and a wrong password identically.
func (s *authService) AdminLogin(ctx context.Context, email, password string) (*model.Admin, string, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, "", ErrInvalidCredentials
	}

	admin, err := s.adminRepo.GetAdminByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", storeError("lookup admin", "Admin", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(admin.ID, model.RoleAdmin)
	if err != nil {
		return nil, "", &AppError{Kind: KindInternal, Message: "Server error", Err: err}
	}
	return admin, token, nil
}

// CurrentIdentity loads the record behind a verified principal.
func (s *authService) CurrentIdentity(ctx context.Context, p model.Principal) (model.Identity, error) {
	switch p.Role {
	case model.RoleAdmin:
		admin, err := s.adminRepo.GetAdminByID(ctx, p.SubjectID)
		if err != nil {
			return nil, storeError("lookup admin", "Admin", err)
		}
		return admin, nil
	case model.RoleUser:
		user, err := s.userRepo.GetUserByID(ctx, p.SubjectID)
		if err != nil {
			return nil, storeError("lookup user", "User", err)
		}
		return user, nil
	}
	return nil, ErrInvalidToken
}

// CreateAdmin stores a new admin with a bcrypt hash of password.
func (s *authService) CreateAdmin(ctx context.Context, email, password string) (*model.Admin, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, Validation("Email is required")
	}
	if len(password) < 6 {
		return nil, Validation("Password must be at least 6 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, &AppError{Kind: KindInternal, Message: "Server error", Err: err}
	}

	admin := &model.Admin{ID: uuid.New(), Email: email, PasswordHash: string(hash)}
	if err := s.adminRepo.CreateAdmin(ctx, admin); err != nil {
		return nil, storeError("create admin", "Admin", err)
	}
	return admin, nil
}

// maskPhone keeps only the last three digits of a phone number for logs.
func maskPhone(phone string) string {
	r := []rune(phone)
	if len(r) <= 3 {
		return strings.Repeat("*", len(r))
	}
	return strings.Repeat("*", len(r)-3) + string(r[len(r)-3:])
}

package service

import (
	"context"
	"time"

	"okurmen-backend/internal/model"
	"okurmen-backend/internal/repository"

	"github.com/google/uuid"
)

// UserListing is a registered user as the admin user list shows it. Email
// repeats the phone number for older admin clients.
type UserListing struct {
	ID          uuid.UUID  `json:"id"`
	FullName    string     `json:"full_name"`
	PhoneNumber string     `json:"phone_number"`
	Email       string     `json:"email"`
	Age         int        `json:"age"`
	Role        model.Role `json:"role"`
	CreatedAt   time.Time  `json:"created_at"`
}

type UserService interface {
	GetAllUsers(ctx context.Context) ([]UserListing, error)
}

type userService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

func (s *userService) GetAllUsers(ctx context.Context) ([]UserListing, error) {
	users, err := s.userRepo.ListUsers(ctx)
	if err != nil {
		return nil, storeError("list users", "Users", err)
	}
	out := make([]UserListing, 0, len(users))
	for _, u := range users {
		out = append(out, UserListing{
			ID:          u.ID,
			FullName:    u.FullName,
			PhoneNumber: u.PhoneNumber,
			Email:       u.PhoneNumber,
			Age:         u.Age,
			Role:        u.Role(),
			CreatedAt:   u.CreatedAt,
		})
	}
	return out, nil
}

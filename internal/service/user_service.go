package service

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"gymrace/internal/cache"
	"gymrace/internal/models"
	"gymrace/internal/repository"

	"github.com/redis/go-redis/v9"
)

// ProfileInput mirrors the registration form; body measurements arrive as
// text and must parse as positive numbers.
type ProfileInput struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	IsPrivate bool   `json:"is_private"`
	Age       string `json:"age"`
	Height    string `json:"height"`
	Weight    string `json:"weight"`
}

// UserService manages profiles.
type UserService struct {
	users repository.UserRepository
	rdb   *redis.Client
}

// NewUserService returns a new UserService. rdb may be nil.
func NewUserService(users repository.UserRepository, rdb *redis.Client) *UserService {
	return &UserService{users: users, rdb: rdb}
}

// Upper bounds for the body measurements.
const (
	maxAge      = 150
	maxHeightCm = 300
	maxWeightKg = 700
)

// positiveNumber parses raw and rounds it to a whole number in [1, limit].
func positiveNumber(field, raw string, limit int) (int, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, models.NewValidationError(field + " must be a number")
	}
	v = math.Round(v)
	if v < 1 {
		return 0, models.NewValidationError(field + " must be positive")
	}
	if v > float64(limit) {
		return 0, models.NewValidationError(fmt.Sprintf("%s must be at most %d", field, limit))
	}
	return int(v), nil
}

// ValidateProfile checks in and returns the profile it describes for userID.
func ValidateProfile(userID string, in ProfileInput) (*models.User, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" {
		return nil, models.NewValidationError("Username is required")
	}
	age, err := positiveNumber("Age", in.Age, maxAge)
	if err != nil {
		return nil, err
	}
	height, err := positiveNumber("Height", in.Height, maxHeightCm)
	if err != nil {
		return nil, err
	}
	weight, err := positiveNumber("Weight", in.Weight, maxWeightKg)
	if err != nil {
		return nil, err
	}
	return &models.User{
		ID:        userID,
		Username:  username,
		Email:     strings.TrimSpace(in.Email),
		IsPrivate: in.IsPrivate,
		Age:       age,
		HeightCm:  height,
		WeightKg:  weight,
	}, nil
}

// GetProfile reads a profile through the cache.
func (s *UserService) GetProfile(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	err := cache.CacheAside(ctx, s.rdb, cache.UserKey(userID), &user, cache.UserTTL, func() error {
		u, err := s.users.GetByID(ctx, userID)
		if err != nil {
			return err
		}
		user = *u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateProfile registers or updates the caller's profile.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, in ProfileInput) (*models.User, error) {
	user, err := ValidateProfile(userID, in)
	if err != nil {
		return nil, err
	}
	if err := s.users.Upsert(ctx, user); err != nil {
		return nil, err
	}
	cache.Invalidate(ctx, s.rdb, cache.UserKey(userID))
	return s.users.GetByID(ctx, userID)
}

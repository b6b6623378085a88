package repositories

import (
	"OcuCare/cache"
	"OcuCare/database"
	"OcuCare/models"
	"OcuCare/services"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	UserCacheExpiry = 7 * 24 * time.Hour
)

var _ services.UserDirectory = (*UserRepository)(nil)

type UserRepository struct {
	cache *cache.Cache
}

func NewUserRepository(cache *cache.Cache) *UserRepository {
	return &UserRepository{cache: cache}
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.UserProfile, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cacheKey := r.getUserCacheKey(id)
	cachedUser, err := r.cache.Get(ctx, cacheKey)
	if err == nil && cachedUser != "" {
		var user models.UserProfile
		if err := json.Unmarshal([]byte(cachedUser), &user); err == nil {
			return &user, nil
		}
	} else if err != nil && err != redis.Nil {
		log.Printf("Failed to get user from cache: %v", err)
	}

	var user models.UserProfile
	err = database.DB.First(&user, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	userJSON, err := json.Marshal(user)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal user: %w", err)
	}
	if err := r.cache.Set(ctx, cacheKey, userJSON, UserCacheExpiry); err != nil {
		log.Printf("Failed to set user in cache: %v", err)
	}

	return &user, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.UserProfile, error) {
	var user models.UserProfile
	err := database.DB.First(&user, "email = ?", email).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return &user, nil
}

func (r *UserRepository) Create(ctx context.Context, profile *models.UserProfile) error {
	lockKey := fmt.Sprintf("user_lock:%s", profile.ID)
	lockValue := uuid.New().String()
	locked, err := database.NewLock(ctx, lockKey, lockValue, 10*time.Second)
	if err != nil {
		return fmt.Errorf("failed to acquire lock: %w", err)
	}
	if !locked {
		return errors.New("failed to acquire lock")
	}
	defer func() {
		if err := database.ReleaseLock(ctx, lockKey, lockValue); err != nil {
			log.Printf("Failed to release lock: %v", err)
		}
	}()

	if err := database.DB.Create(profile).Error; err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return r.cache.Delete(ctx, r.getUserCacheKey(profile.ID))
}

func (r *UserRepository) Update(ctx context.Context, profile *models.UserProfile) error {
	if err := database.DB.Save(profile).Error; err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return r.cache.Delete(ctx, r.getUserCacheKey(profile.ID))
}

// FindDoctor returns the admin-role profile with the earliest creation time,
// so doctor resolution stays deterministic even if several admin accounts
// exist. Returns nil when no doctor account is present.
func (r *UserRepository) FindDoctor(ctx context.Context) (*models.UserProfile, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var doctor models.UserProfile
	err := database.DB.Where("role = ?", models.RoleDoctor).
		Order("created_at ASC").
		First(&doctor).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find doctor: %w", err)
	}
	return &doctor, nil
}

func (r *UserRepository) getUserCacheKey(id string) string {
	return fmt.Sprintf("user_cache:%s", id)
}

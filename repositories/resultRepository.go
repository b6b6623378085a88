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
	ResultCacheExpiry = 24 * time.Hour
)

var _ services.ResultStore = (*ResultRepository)(nil)

type ResultRepository struct {
	cache *cache.Cache
}

func NewResultRepository(cache *cache.Cache) *ResultRepository {
	return &ResultRepository{cache: cache}
}

func (r *ResultRepository) Create(ctx context.Context, result *models.PatientResult) error {
	lockKey := fmt.Sprintf("result_lock:%s", result.ID)
	lockValue := uuid.New().String()
	// Retry logic for acquiring lock
	maxRetries := 3
	retryDelay := 2 * time.Second
	var locked bool
	var err error
	for i := 0; i < maxRetries; i++ {
		locked, err = database.NewLock(ctx, lockKey, lockValue, 10*time.Second)
		if err == nil && locked {
			break
		}
		if i < maxRetries-1 {
			time.Sleep(retryDelay)
		}
	}
	if !locked {
		return fmt.Errorf("failed to acquire lock after retries: %w", err)
	}
	defer func() {
		if err := database.ReleaseLock(ctx, lockKey, lockValue); err != nil {
			log.Printf("Failed to release lock: %v", err)
		}
	}()

	if err := database.DB.Create(result).Error; err != nil {
		return fmt.Errorf("failed to create result: %w", err)
	}
	return r.cache.DeleteAll(ctx, r.getUserResultsCacheKey(result.UserID))
}

func (r *ResultRepository) GetByID(ctx context.Context, id string) (*models.PatientResult, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var result models.PatientResult
	err := database.DB.First(&result, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get result: %w", err)
	}
	return &result, nil
}

// ListByUser returns all of a user's results ordered newest first. The
// per-patient volume stays small, so no pagination.
func (r *ResultRepository) ListByUser(ctx context.Context, userID string) ([]models.PatientResult, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cacheKey := r.getUserResultsCacheKey(userID)
	cachedResults, err := r.cache.Get(ctx, cacheKey)
	if err == nil && cachedResults != "" {
		var results []models.PatientResult
		if err := json.Unmarshal([]byte(cachedResults), &results); err == nil {
			return results, nil
		}
	} else if err != nil && err != redis.Nil {
		log.Printf("Failed to get results from cache: %v", err)
	}

	var results []models.PatientResult
	err = database.DB.Where("user_id = ?", userID).
		Order("timestamp DESC").
		Find(&results).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list results: %w", err)
	}

	resultsJSON, err := json.Marshal(results)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal results: %w", err)
	}
	if err := r.cache.Set(ctx, cacheKey, resultsJSON, ResultCacheExpiry); err != nil {
		log.Printf("Failed to set results in cache: %v", err)
	}

	return results, nil
}

func (r *ResultRepository) Delete(ctx context.Context, id string) error {
	result, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if result == nil {
		return fmt.Errorf("%w: result %s", services.ErrNotFound, id)
	}

	if err := database.DB.Delete(&models.PatientResult{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("failed to delete result: %w", err)
	}
	return r.cache.DeleteAll(ctx, r.getUserResultsCacheKey(result.UserID))
}

// MarkConsulted sets the consult flag and conversation linkage. The write is
// idempotent: repeating it with the same arguments leaves the row unchanged.
func (r *ResultRepository) MarkConsulted(ctx context.Context, resultID, conversationID string) error {
	tx := database.DB.Model(&models.PatientResult{}).
		Where("id = ?", resultID).
		Updates(map[string]interface{}{
			"consult":         true,
			"conversation_id": conversationID,
		})
	if tx.Error != nil {
		return fmt.Errorf("failed to mark result consulted: %w", tx.Error)
	}
	if tx.RowsAffected == 0 {
		return fmt.Errorf("%w: result %s", services.ErrNotFound, resultID)
	}

	result, err := r.GetByID(ctx, resultID)
	if err == nil && result != nil {
		if err := r.cache.DeleteAll(ctx, r.getUserResultsCacheKey(result.UserID)); err != nil {
			log.Printf("Failed to invalidate results cache: %v", err)
		}
	}
	return nil
}

func (r *ResultRepository) getUserResultsCacheKey(userID string) string {
	return fmt.Sprintf("results_cache:%s", userID)
}

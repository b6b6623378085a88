package repositories

import (
	"OcuCare/cache"
	"OcuCare/database"
	"OcuCare/models"
	"OcuCare/services"
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var _ services.ConversationStore = (*ConversationRepository)(nil)

type ConversationRepository struct {
	cache *cache.Cache
}

func NewConversationRepository(cache *cache.Cache) *ConversationRepository {
	return &ConversationRepository{cache: cache}
}

func (r *ConversationRepository) GetByPatientID(ctx context.Context, patientID string) (*models.Conversation, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var conversation models.Conversation
	err := database.DB.First(&conversation, "patient_id = ?", patientID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get conversation: %w", err)
	}
	return &conversation, nil
}

// CreateIfAbsent inserts the keyed conversation row. Concurrent attempts for
// the same patient converge: the conflict clause turns the losing insert into
// a no-op instead of an error or a duplicate, so no application lock is
// needed around the check-then-create.
func (r *ConversationRepository) CreateIfAbsent(ctx context.Context, conversation *models.Conversation) error {
	err := database.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "patient_id"}},
		DoNothing: true,
	}).Create(conversation).Error
	if err != nil {
		return fmt.Errorf("failed to create conversation: %w", err)
	}
	return r.cache.DeleteAll(ctx, "conversations_cache")
}

// AppendMessage inserts the message and syncs the conversation summary to it
// inside one transaction, so a summary can never point at a message that was
// not durably appended.
func (r *ConversationRepository) AppendMessage(ctx context.Context, message *models.Message, senderName string) error {
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(message).Error; err != nil {
			return fmt.Errorf("failed to insert message: %w", err)
		}
		update := tx.Model(&models.Conversation{}).
			Where("patient_id = ?", message.ConversationID).
			Updates(map[string]interface{}{
				"last_sender_name":       senderName,
				"last_message_timestamp": message.Timestamp,
				"last_message_text":      message.Text,
			})
		if update.Error != nil {
			return fmt.Errorf("failed to update conversation summary: %w", update.Error)
		}
		if update.RowsAffected == 0 {
			return fmt.Errorf("%w: conversation %s", services.ErrNotFound, message.ConversationID)
		}
		return nil
	})
	if err != nil {
		return err
	}
	if err := r.cache.DeleteAll(ctx, "conversations_cache"); err != nil {
		log.Printf("Failed to invalidate conversations cache: %v", err)
	}
	return nil
}

// ListMessages returns the append-only log in chronological order. Ordering
// is by the timestamp assigned at append time; ties fall back to durable
// insertion order via the id.
func (r *ConversationRepository) ListMessages(ctx context.Context, conversationID string) ([]models.Message, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var messages []models.Message
	err := database.DB.Where("conversation_id = ?", conversationID).
		Order("timestamp ASC, id ASC").
		Find(&messages).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	return messages, nil
}

func (r *ConversationRepository) ListAll(ctx context.Context) ([]models.Conversation, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var conversations []models.Conversation
	err := database.DB.Order("last_message_timestamp DESC").
		Find(&conversations).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	return conversations, nil
}

// MarkMessageRead flips the read flag, the only permitted post-insert change.
func (r *ConversationRepository) MarkMessageRead(ctx context.Context, conversationID, messageID string) error {
	tx := database.DB.Model(&models.Message{}).
		Where("id = ? AND conversation_id = ?", messageID, conversationID).
		Update("read", true)
	if tx.Error != nil {
		return fmt.Errorf("failed to mark message read: %w", tx.Error)
	}
	if tx.RowsAffected == 0 {
		return fmt.Errorf("%w: message %s", services.ErrNotFound, messageID)
	}
	return nil
}

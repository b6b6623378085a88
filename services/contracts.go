package services

import (
	"OcuCare/models"
	"context"
	"io"
)

// UserDirectory is the persistence contract for user profiles. Lookups return
// (nil, nil) when the profile is absent.
type UserDirectory interface {
	GetByID(ctx context.Context, id string) (*models.UserProfile, error)
	GetByEmail(ctx context.Context, email string) (*models.UserProfile, error)
	Create(ctx context.Context, profile *models.UserProfile) error
	Update(ctx context.Context, profile *models.UserProfile) error
	// FindDoctor returns the admin-role profile with the earliest creation
	// time, or (nil, nil) when none exists.
	FindDoctor(ctx context.Context) (*models.UserProfile, error)
}

// ResultStore is the persistence contract for classification results.
type ResultStore interface {
	Create(ctx context.Context, result *models.PatientResult) error
	GetByID(ctx context.Context, id string) (*models.PatientResult, error)
	// ListByUser returns the user's results ordered by timestamp descending.
	ListByUser(ctx context.Context, userID string) ([]models.PatientResult, error)
	Delete(ctx context.Context, id string) error
	// MarkConsulted sets consult=true and the conversation id. Idempotent:
	// repeating the call with the same arguments changes nothing.
	MarkConsulted(ctx context.Context, resultID, conversationID string) error
}

// ConversationStore is the persistence contract for conversations and their
// append-only message logs.
type ConversationStore interface {
	GetByPatientID(ctx context.Context, patientID string) (*models.Conversation, error)
	// CreateIfAbsent performs a keyed insert: concurrent calls for the same
	// patient converge on a single conversation row.
	CreateIfAbsent(ctx context.Context, conversation *models.Conversation) error
	// AppendMessage inserts the message and updates the conversation summary
	// fields in a single transaction.
	AppendMessage(ctx context.Context, message *models.Message, senderName string) error
	// ListMessages returns a conversation's messages ordered by timestamp ascending.
	ListMessages(ctx context.Context, conversationID string) ([]models.Message, error)
	// ListAll returns every conversation, most recent activity first.
	ListAll(ctx context.Context) ([]models.Conversation, error)
	MarkMessageRead(ctx context.Context, conversationID, messageID string) error
}

// CallStore is the persistence contract for call signaling records.
type CallStore interface {
	Get(ctx context.Context, patientID string) (*models.CallNotification, error)
	// Save upserts the keyed record; a second create for the same patient
	// replaces rather than duplicates.
	Save(ctx context.Context, notification *models.CallNotification) error
	UpdateStatus(ctx context.Context, patientID, status string) error
	// Delete removes the record unconditionally; deleting a missing record
	// is not an error.
	Delete(ctx context.Context, patientID string) error
}

// BlobStorage is the contract for the image object store.
type BlobStorage interface {
	UploadFromReader(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) (string, error)
	DeleteFile(ctx context.Context, objectName string) error
	GetPresignedURL(ctx context.Context, objectName string) (string, error)
}

// Publisher pushes real-time frames to subscribed observers.
type Publisher interface {
	PublishMessage(ctx context.Context, conversationID string, message models.Message) error
	PublishCallStatus(ctx context.Context, patientID string, notification *models.CallNotification) error
}

// Notifier delivers out-of-band notifications. Implementations are best
// effort; callers log and continue on failure.
type Notifier interface {
	ConsultationRequested(email, patientName, resultLabel string) error
}

package services

import (
	"OcuCare/models"
	"OcuCare/utils"
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// ConsultationService binds a classification result to the patient's
// conversation with the doctor and carries all subsequent message traffic.
type ConsultationService interface {
	InitiateConsultation(ctx context.Context, patientID, initialMessageText, resultID string) (string, error)
	UpdateConsultStatus(ctx context.Context, resultID, conversationID string) error
	SendMessage(ctx context.Context, conversationID, senderID, text string, resultID *string) (*models.Message, error)
	GetConversation(ctx context.Context, patientID string) (*models.Conversation, error)
	ListMessages(ctx context.Context, conversationID string) ([]models.Message, error)
	ListConversations(ctx context.Context) ([]models.Conversation, error)
	MarkMessageRead(ctx context.Context, conversationID, messageID string) error
}

type consultationService struct {
	conversations ConversationStore
	results       ResultStore
	users         UserDirectory
	publisher     Publisher
	notifier      Notifier
}

func NewConsultationService(conversations ConversationStore, results ResultStore, users UserDirectory, publisher Publisher, notifier Notifier) ConsultationService {
	return &consultationService{
		conversations: conversations,
		results:       results,
		users:         users,
		publisher:     publisher,
		notifier:      notifier,
	}
}

// InitiateConsultation resolves the doctor, upserts the patient's keyed
// conversation and appends the initial message referencing the result. The
// doctor lookup happens before any write, so a NoDoctorAvailable failure
// leaves no partial state. The caller remains responsible for the follow-up
// UpdateConsultStatus on the result.
func (s *consultationService) InitiateConsultation(ctx context.Context, patientID, initialMessageText, resultID string) (string, error) {
	if patientID == "" {
		return "", ErrNotAuthenticated
	}
	if err := utils.ValidateMessageText(initialMessageText); err != nil {
		return "", err
	}

	doctor, err := s.users.FindDoctor(ctx)
	if err != nil {
		return "", errors.Wrap(err, "doctor lookup failed")
	}
	if doctor == nil {
		return "", ErrNoDoctorAvailable
	}

	patient, err := s.users.GetByID(ctx, patientID)
	if err != nil {
		return "", errors.Wrap(err, "patient lookup failed")
	}
	if patient == nil {
		return "", errors.Wrapf(ErrNotFound, "patient %s", patientID)
	}

	conversation, err := s.conversations.GetByPatientID(ctx, patientID)
	if err != nil {
		return "", errors.Wrap(err, "conversation lookup failed")
	}
	if conversation == nil {
		// Keyed insert: two concurrent initiations for the same patient
		// converge on one row instead of diverging.
		conversation = &models.Conversation{
			PatientID:            patientID,
			DoctorID:             doctor.ID,
			PatientName:          patient.Name,
			DoctorName:           doctor.Name,
			LastMessageTimestamp: time.Now(),
			LastMessageText:      models.NoMessagesPlaceholder,
			InitiatedResultID:    &resultID,
		}
		if err := s.conversations.CreateIfAbsent(ctx, conversation); err != nil {
			return "", errors.Wrap(err, "conversation creation failed")
		}
	}

	message := &models.Message{
		ID:             uuid.New().String(),
		ConversationID: patientID,
		SenderID:       patientID,
		Text:           initialMessageText,
		Timestamp:      time.Now(),
		ResultID:       &resultID,
	}
	if err := s.conversations.AppendMessage(ctx, message, patient.Name); err != nil {
		return "", errors.Wrap(err, "initial message append failed")
	}

	s.publish(ctx, patientID, *message)

	if s.notifier != nil {
		label := models.LabelUnclassified
		if result, err := s.results.GetByID(ctx, resultID); err == nil && result != nil {
			label = result.Result
		}
		if err := s.notifier.ConsultationRequested(doctor.Email, patient.Name, label); err != nil {
			log.Printf("Failed to notify doctor of consultation for patient %s: %v", patientID, err)
		}
	}

	return patientID, nil
}

// UpdateConsultStatus marks the result as consulted. Safe to call twice with
// the same arguments. If this fails after a successful initiation, a
// conversation with messages exists while the result still shows
// consult=false; the consult flow tolerates a retry in that state.
func (s *consultationService) UpdateConsultStatus(ctx context.Context, resultID, conversationID string) error {
	if err := s.results.MarkConsulted(ctx, resultID, conversationID); err != nil {
		return errors.Wrap(err, "consult status update failed")
	}
	return nil
}

// SendMessage appends a message and updates the conversation summary, for
// every turn after the initiating one.
func (s *consultationService) SendMessage(ctx context.Context, conversationID, senderID, text string, resultID *string) (*models.Message, error) {
	if senderID == "" {
		return nil, ErrNotAuthenticated
	}
	if err := utils.ValidateMessageText(text); err != nil {
		return nil, err
	}

	conversation, err := s.conversations.GetByPatientID(ctx, conversationID)
	if err != nil {
		return nil, errors.Wrap(err, "conversation lookup failed")
	}
	if conversation == nil {
		return nil, errors.Wrapf(ErrNotFound, "conversation %s", conversationID)
	}

	sender, err := s.users.GetByID(ctx, senderID)
	if err != nil {
		return nil, errors.Wrap(err, "sender lookup failed")
	}
	if sender == nil {
		return nil, errors.Wrapf(ErrNotFound, "sender %s", senderID)
	}

	message := &models.Message{
		ID:             uuid.New().String(),
		ConversationID: conversationID,
		SenderID:       senderID,
		Text:           text,
		Timestamp:      time.Now(),
		ResultID:       resultID,
	}
	if err := s.conversations.AppendMessage(ctx, message, sender.Name); err != nil {
		return nil, errors.Wrap(err, "message append failed")
	}

	s.publish(ctx, conversationID, *message)
	return message, nil
}

func (s *consultationService) GetConversation(ctx context.Context, patientID string) (*models.Conversation, error) {
	conversation, err := s.conversations.GetByPatientID(ctx, patientID)
	if err != nil {
		return nil, errors.Wrap(err, "conversation lookup failed")
	}
	if conversation == nil {
		return nil, errors.Wrapf(ErrNotFound, "conversation %s", patientID)
	}
	return conversation, nil
}

func (s *consultationService) ListMessages(ctx context.Context, conversationID string) ([]models.Message, error) {
	return s.conversations.ListMessages(ctx, conversationID)
}

func (s *consultationService) ListConversations(ctx context.Context) ([]models.Conversation, error) {
	return s.conversations.ListAll(ctx)
}

// MarkMessageRead flips the read flag, the only post-insert mutation a
// message permits.
func (s *consultationService) MarkMessageRead(ctx context.Context, conversationID, messageID string) error {
	return s.conversations.MarkMessageRead(ctx, conversationID, messageID)
}

func (s *consultationService) publish(ctx context.Context, conversationID string, message models.Message) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishMessage(ctx, conversationID, message); err != nil {
		log.Printf("Failed to publish message %s to subscribers: %v", message.ID, err)
	}
}

package models

import (
	"time"
)

// NoMessagesPlaceholder fills the summary fields between conversation
// creation and the first appended message.
const NoMessagesPlaceholder = "No messages yet"

// Conversation is the single chat thread between a patient and the doctor.
// The patient id doubles as the primary key, so at most one conversation can
// exist per patient. PatientID and DoctorID never change after creation; the
// LastMessage* fields mirror only the most recently appended message.
type Conversation struct {
	PatientID            string    `gorm:"primaryKey;column:patient_id" json:"patient_id"`
	DoctorID             string    `gorm:"column:doctor_id;not null" json:"doctor_id"`
	PatientName          string    `gorm:"size:100;column:patient_name" json:"patient_name"`
	DoctorName           string    `gorm:"size:100;column:doctor_name" json:"doctor_name"`
	LastSenderName       string    `gorm:"size:100;column:last_sender_name" json:"last_sender_name"`
	LastMessageTimestamp time.Time `gorm:"column:last_message_timestamp;index" json:"last_message_timestamp"`
	LastMessageText      string    `gorm:"type:text;column:last_message_text" json:"last_message_text"`
	InitiatedResultID    *string   `gorm:"column:initiated_result_id" json:"initiated_result_id,omitempty"`
	CreatedAt            time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	Messages             []Message `gorm:"foreignKey:ConversationID;references:PatientID" json:"-"`
}

func (Conversation) TableName() string {
	return "conversations"
}

// Message is one entry in a conversation's append-only log, ordered by
// Timestamp ascending. Nothing is mutated after insert except the read flag.
// ResultID is set only on the message that originated a consultation.
type Message struct {
	ID             string    `gorm:"primaryKey;column:id" json:"id"`
	ConversationID string    `gorm:"column:conversation_id;not null;index" json:"conversation_id"`
	SenderID       string    `gorm:"column:sender_id;not null" json:"sender_id"`
	Text           string    `gorm:"type:text;not null;column:text" json:"text"`
	Timestamp      time.Time `gorm:"column:timestamp;not null;index" json:"timestamp"`
	Read           bool      `gorm:"column:read;not null;default:false" json:"read"`
	ResultID       *string   `gorm:"column:result_id" json:"result_id,omitempty"`
}

func (Message) TableName() string {
	return "messages"
}

package models

import (
	"time"
)

// Call statuses. Deletion, not a status, is the terminal event: readers must
// treat a missing record and an "ended" record the same way.
const (
	CallStatusCalling  = "calling"
	CallStatusAccepted = "accepted"
	CallStatusEnded    = "ended"
)

// CallNotification is the ephemeral signaling record announcing a video call
// between the doctor and a patient. At most one exists per patient.
type CallNotification struct {
	PatientID   string    `gorm:"primaryKey;column:patient_id" json:"patient_id"`
	DoctorID    string    `gorm:"column:doctor_id;not null" json:"doctor_id"`
	ChannelName string    `gorm:"size:100;not null;column:channel_name" json:"channel_name"`
	RTCToken    string    `gorm:"type:text;not null;column:rtc_token" json:"rtc_token"`
	Timestamp   time.Time `gorm:"column:timestamp;not null" json:"timestamp"`
	Status      string    `gorm:"size:20;not null;check:status IN ('calling', 'accepted', 'ended');column:status" json:"status"`
}

func (CallNotification) TableName() string {
	return "call_notifications"
}

// Active reports whether the notification still denotes a live call.
func (n *CallNotification) Active() bool {
	return n != nil && n.Status != CallStatusEnded
}

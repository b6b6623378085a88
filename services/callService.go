package services

import (
	"OcuCare/models"
	"OcuCare/utils"
	"context"
	"log"
	"time"

	"github.com/pkg/errors"
)

// CallService manages the ephemeral call-signaling record per patient.
// Deletion is the terminal event of a call; a missing record and an "ended"
// record both read as "no active call".
type CallService interface {
	StartCall(ctx context.Context, patientID, doctorID string) (*models.CallNotification, error)
	AcceptCall(ctx context.Context, patientID string) error
	EndCall(ctx context.Context, patientID string) error
	ActiveCall(ctx context.Context, patientID string) (*models.CallNotification, error)
}

type callService struct {
	calls     CallStore
	publisher Publisher
}

func NewCallService(calls CallStore, publisher Publisher) CallService {
	return &callService{calls: calls, publisher: publisher}
}

// StartCall mints a channel name and RTC token and upserts the patient's
// signaling record with status "calling". Re-announcing replaces a stale
// record rather than duplicating it.
func (s *callService) StartCall(ctx context.Context, patientID, doctorID string) (*models.CallNotification, error) {
	if patientID == "" || doctorID == "" {
		return nil, ErrNotAuthenticated
	}

	token, err := utils.GenerateRTCToken()
	if err != nil {
		return nil, errors.Wrap(err, "RTC token generation failed")
	}

	notification := &models.CallNotification{
		PatientID:   patientID,
		DoctorID:    doctorID,
		ChannelName: utils.GenerateChannelName(patientID),
		RTCToken:    token,
		Timestamp:   time.Now(),
		Status:      models.CallStatusCalling,
	}
	if err := s.calls.Save(ctx, notification); err != nil {
		return nil, errors.Wrap(err, "call notification write failed")
	}

	s.publishStatus(ctx, patientID, notification)
	return notification, nil
}

// AcceptCall transitions an announced call to "accepted".
func (s *callService) AcceptCall(ctx context.Context, patientID string) error {
	notification, err := s.calls.Get(ctx, patientID)
	if err != nil {
		return errors.Wrap(err, "call notification lookup failed")
	}
	if !notification.Active() {
		return errors.Wrapf(ErrNotFound, "no active call for patient %s", patientID)
	}
	if err := s.calls.UpdateStatus(ctx, patientID, models.CallStatusAccepted); err != nil {
		return errors.Wrap(err, "call status update failed")
	}

	notification.Status = models.CallStatusAccepted
	s.publishStatus(ctx, patientID, notification)
	return nil
}

// EndCall announces the end of the session and deletes the record
// unconditionally, whether or not the call ever connected. Ending a call
// that no longer exists is not an error.
func (s *callService) EndCall(ctx context.Context, patientID string) error {
	notification, err := s.calls.Get(ctx, patientID)
	if err != nil {
		return errors.Wrap(err, "call notification lookup failed")
	}
	if notification != nil {
		notification.Status = models.CallStatusEnded
		s.publishStatus(ctx, patientID, notification)
	}
	if err := s.calls.Delete(ctx, patientID); err != nil {
		return errors.Wrap(err, "call notification deletion failed")
	}
	return nil
}

// ActiveCall returns the live notification for a patient, or nil when the
// record is missing or already marked ended.
func (s *callService) ActiveCall(ctx context.Context, patientID string) (*models.CallNotification, error) {
	notification, err := s.calls.Get(ctx, patientID)
	if err != nil {
		return nil, errors.Wrap(err, "call notification lookup failed")
	}
	if !notification.Active() {
		return nil, nil
	}
	return notification, nil
}

func (s *callService) publishStatus(ctx context.Context, patientID string, notification *models.CallNotification) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishCallStatus(ctx, patientID, notification); err != nil {
		log.Printf("Failed to publish call status for patient %s: %v", patientID, err)
	}
}

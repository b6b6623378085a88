package utils

import (
	"OcuCare/models"
	"errors"
	"log"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// Validation errors
var (
	ErrPasswordTooShort = errors.New("password must be at least 8 characters long")
	ErrUnknownLabel     = errors.New("result label is not part of the classification vocabulary")
)

// ValidateUserData validates a profile before it is provisioned.
func ValidateUserData(user models.UserProfile) error {
	err := validation.ValidateStruct(&user,
		validation.Field(&user.ID, validation.Required, validation.Length(1, 128)),
		validation.Field(&user.Email, validation.Required, is.Email),
		validation.Field(&user.Password, validation.Required.Error("password cannot be blank"), validation.By(validatePassword)),
		validation.Field(&user.Role, validation.In(models.RolePatient, models.RoleDoctor)),
	)
	if err != nil {
		log.Printf("Validation error: %v\n", err)
	}
	return err
}

// ValidateResultData validates a classification result payload before it is
// persisted: a closed label vocabulary and a confidence in [0,1].
func ValidateResultData(label string, confidence float64) error {
	err := validation.Errors{
		"result":     validation.Validate(label, validation.Required, validation.By(validateLabel)),
		"confidence": validation.Validate(confidence, validation.Min(0.0), validation.Max(1.0)),
	}.Filter()
	if err != nil {
		log.Printf("Validation error: %v\n", err)
	}
	return err
}

// ValidateMessageText validates the body of a chat message.
func ValidateMessageText(text string) error {
	err := validation.Validate(text, validation.Required.Error("message text cannot be blank"), validation.Length(1, 4000))
	if err != nil {
		log.Printf("Validation error: %v\n", err)
	}
	return err
}

func validateLabel(value interface{}) error {
	label, _ := value.(string)
	for _, known := range models.ClassificationLabels {
		if label == known {
			return nil
		}
	}
	return ErrUnknownLabel
}

// validatePassword checks the password for minimum length.
func validatePassword(value interface{}) error {
	password, _ := value.(string)
	if len(password) < 8 {
		return ErrPasswordTooShort
	}
	return nil
}

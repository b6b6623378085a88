package services

import (
	"OcuCare/utils"
)

// EmailNotifier delivers consultation notifications over SMTP.
type EmailNotifier struct{}

func NewEmailNotifier() *EmailNotifier {
	return &EmailNotifier{}
}

func (n *EmailNotifier) ConsultationRequested(email, patientName, resultLabel string) error {
	return utils.SendConsultationEmail(email, patientName, resultLabel)
}

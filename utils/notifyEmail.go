package utils

import (
	"log"
	"os"
	"strconv"

	"gopkg.in/gomail.v2"
)

// SendConsultationEmail notifies the doctor that a patient has requested a
// consultation on a classification result. Delivery is best effort; callers
// log and continue on failure.
func SendConsultationEmail(email, patientName, resultLabel string) error {
	fromEmail := os.Getenv("SMTP_USER")

	m := gomail.NewMessage()
	m.SetHeader("From", fromEmail)
	m.SetHeader("To", email)
	m.SetHeader("Subject", "New consultation request")

	m.SetBody("text/plain",
		"Patient "+patientName+" has requested a consultation on a \""+resultLabel+"\" screening result. Open the app to reply.")

	htmlBody := `
	<!DOCTYPE html>
	<html>
	<head>
		<title>New consultation request</title>
		<style>
			body {
				font-family: Arial, sans-serif;
				background-color: #f4f4f4;
				margin: 0;
				padding: 0;
			}
			.container {
				background-color: #ffffff;
				margin: 20px auto;
				padding: 20px;
				border-radius: 8px;
				box-shadow: 0 2px 4px rgba(0, 0, 0, 0.1);
				max-width: 600px;
			}
			h1 {
				color: #333333;
			}
			p {
				color: #666666;
			}
			.label {
				font-weight: bold;
				color: #007bff;
			}
		</style>
	</head>
	<body>
		<div class="container">
			<h1>New consultation request</h1>
			<p>Patient <b>` + patientName + `</b> has requested a consultation on a screening result:</p>
			<p class="label">` + resultLabel + `</p>
			<p>Open the app to reply.</p>
		</div>
	</body>
	</html>`
	m.AddAlternative("text/html", htmlBody)

	port, err := strconv.Atoi(os.Getenv("SMTP_PORT"))
	if err != nil {
		log.Printf("Invalid SMTP_PORT, defaulting to 587: %v", err)
		port = 587
	}

	d := gomail.NewDialer(os.Getenv("SMTP_HOST"), port, fromEmail, os.Getenv("SMTP_PASSWORD"))
	if err := d.DialAndSend(m); err != nil {
		log.Printf("Failed to send consultation email: %v", err)
		return err
	}
	return nil
}

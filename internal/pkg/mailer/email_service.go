package mailer

import (
	"fmt"
	"html"
	"time"

	"gopkg.in/gomail.v2"
)

type EmergencyAlert struct {
	UserId         string
	ConversationId string
	Query          string
	Assessment     string
	DetectedAt     time.Time
}

type IEmailService interface {
	SendEmergencyAlert(toEmail string, alert EmergencyAlert) error
}

type emailService struct {
	dialer      *gomail.Dialer
	senderEmail string
	senderName  string
}

func NewEmailService(host string, port int, username, password, senderEmail, senderName string) IEmailService {
	d := gomail.NewDialer(host, port, username, password)

	return &emailService{
		dialer:      d,
		senderEmail: senderEmail,
		senderName:  senderName,
	}
}

func (s *emailService) SendEmergencyAlert(toEmail string, alert EmergencyAlert) error {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.senderEmail, s.senderName)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", "[Dr.Heal] Potential medical emergency reported")
	m.SetBody("text/html", RenderEmergencyAlert(alert))

	if err := s.dialer.DialAndSend(m); err != nil {
		fmt.Printf("[MAILER ERROR] Failed to send emergency alert to %s: %v\n", toEmail, err)
		return err
	}

	fmt.Printf("[MAILER] Emergency alert sent to %s\n", toEmail)
	return nil
}

// RenderEmergencyAlert builds the HTML body. User text is escaped.
func RenderEmergencyAlert(alert EmergencyAlert) string {
	return fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2 style="color: #C62828;">Potential emergency detected</h2>
			<p><strong>Detected at:</strong> %s</p>
			<p><strong>User:</strong> %s</p>
			<p><strong>Conversation:</strong> %s</p>
			<p><strong>Reported symptoms:</strong></p>
			<blockquote>%s</blockquote>
			<p><strong>Triage assessment:</strong></p>
			<blockquote>%s</blockquote>
		</div>
	`,
		alert.DetectedAt.UTC().Format(time.RFC3339),
		html.EscapeString(alert.UserId),
		html.EscapeString(alert.ConversationId),
		html.EscapeString(alert.Query),
		html.EscapeString(alert.Assessment),
	)
}

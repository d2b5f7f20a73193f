// FILE: internal/pkg/mailer/email_service.go
package mailer

import (
	"fmt"
	"os"

	"gopkg.in/gomail.v2"
)

type IEmailService interface {
	SendInvitation(toEmail, householdName, token string) error
	SendChatDigest(toEmail, senderName, roomName, preview string) error
}

type emailService struct {
	dialer      *gomail.Dialer
	senderEmail string
	frontendURL string
}

func NewEmailService(host string, port int, username, password, senderEmail string) IEmailService {
	d := gomail.NewDialer(host, port, username, password)

	frontendURL := os.Getenv("FRONTEND_URL")

	return &emailService{
		dialer:      d,
		senderEmail: senderEmail,
		frontendURL: frontendURL,
	}
}

func (s *emailService) SendInvitation(toEmail, householdName, token string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.senderEmail)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", fmt.Sprintf("You've been invited to %s", householdName))

	link := fmt.Sprintf("%s/invitations/accept?token=%s", s.frontendURL, token)
	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Household Invitation</h2>
			<p>You've been invited to join <strong>%s</strong>.</p>
			<p><a href="%s" style="color: #4CAF50;">Accept the invitation</a></p>
			<p>This invitation expires in 7 days.</p>
			<p>If you didn't expect this, please ignore this email.</p>
		</div>
	`, householdName, link)

	m.SetBody("text/html", body)
	return s.dialer.DialAndSend(m)
}

// SendChatDigest notifies a household member who was offline when a chat
// message arrived. Best-effort: callers log failures and move on.
func (s *emailService) SendChatDigest(toEmail, senderName, roomName, preview string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.senderEmail)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", fmt.Sprintf("New message from %s", senderName))

	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<p><strong>%s</strong> wrote in <strong>%s</strong>:</p>
			<blockquote style="border-left: 3px solid #4CAF50; padding-left: 10px;">%s</blockquote>
			<p><a href="%s" style="color: #4CAF50;">Open the conversation</a></p>
		</div>
	`, senderName, roomName, preview, s.frontendURL)

	m.SetBody("text/html", body)
	return s.dialer.DialAndSend(m)
}

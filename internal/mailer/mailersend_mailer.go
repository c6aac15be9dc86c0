package mailer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mailersend/mailersend-go"
)

type MailerSendClient struct {
	client  *mailersend.Mailersend
	from    mailersend.From
	enabled bool
}

func NewMailerSend(apiKey, fromName, fromEmail string) *MailerSendClient {
	m := &MailerSendClient{
		enabled: apiKey != "" && fromEmail != "",
		from: mailersend.From{
			Name:  fromName,
			Email: fromEmail,
		},
	}

	if m.enabled {
		m.client = mailersend.NewMailersend(apiKey)
	}

	return m
}

func (m *MailerSendClient) SendAppointmentConfirmed(toEmail, toName, hospitalName, date, timeOfDay string) error {
	if !m.enabled {
		return fmt.Errorf("MailerSend not configured")
	}

	subject := fmt.Sprintf("Your appointment at %s is confirmed", hospitalName)
	html := fmt.Sprintf(`
		<h2>Appointment Confirmed</h2>
		<p>Hi %s,</p>
		<p>%s has confirmed your appointment for <strong>%s at %s</strong>.</p>
		<p>A bed has been reserved for you. Please arrive 15 minutes early with a photo ID.</p>
	`, toName, hospitalName, date, timeOfDay)
	text := fmt.Sprintf("%s has confirmed your appointment for %s at %s. A bed has been reserved for you.",
		hospitalName, date, timeOfDay)

	return m.sendEmail(toEmail, toName, subject, text, html)
}

func (m *MailerSendClient) SendAppointmentCancelled(toEmail, toName, hospitalName, date, timeOfDay string) error {
	if !m.enabled {
		return fmt.Errorf("MailerSend not configured")
	}

	subject := fmt.Sprintf("Your appointment at %s was cancelled", hospitalName)
	html := fmt.Sprintf(`
		<h2>Appointment Cancelled</h2>
		<p>Hi %s,</p>
		<p>Your appointment at %s for <strong>%s at %s</strong> has been cancelled.</p>
		<p>You can book a new appointment at any time.</p>
	`, toName, hospitalName, date, timeOfDay)
	text := fmt.Sprintf("Your appointment at %s for %s at %s has been cancelled.",
		hospitalName, date, timeOfDay)

	return m.sendEmail(toEmail, toName, subject, text, html)
}

func (m *MailerSendClient) sendEmail(toEmail, toName, subject, text, html string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	msg := m.client.Email.NewMessage()
	msg.SetFrom(m.from)
	msg.SetRecipients([]mailersend.Recipient{{Name: toName, Email: toEmail}})
	msg.SetSubject(subject)

	if strings.TrimSpace(text) != "" {
		msg.SetText(text)
	}
	if strings.TrimSpace(html) != "" {
		msg.SetHTML(html)
	}

	_, err := m.client.Email.Send(ctx, msg)
	return err
}

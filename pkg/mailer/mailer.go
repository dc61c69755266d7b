package mailer

import (
	"fmt"
	"net/smtp"
	"sync"

	"golang.org/x/exp/slog"
)

// Mailer represents an outbound email gateway
type Mailer interface {
	Send(to, subject, body string) error
}

// SMTPMailer sends mail through a plain SMTP relay
type SMTPMailer struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// NewSMTPMailer creates a new SMTPMailer
func NewSMTPMailer(host string, port int, username, password, from string) *SMTPMailer {
	return &SMTPMailer{
		Host:     host,
		Port:     port,
		Username: username,
		Password: password,
		From:     from,
	}
}

// Send sends a single plain-text message
func (m *SMTPMailer) Send(to, subject, body string) error {
	addr := fmt.Sprintf("%s:%d", m.Host, m.Port)
	msg := []byte(fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n", m.From, to, subject, body))

	var auth smtp.Auth
	if m.Username != "" {
		auth = smtp.PlainAuth("", m.Username, m.Password, m.Host)
	}
	if err := smtp.SendMail(addr, auth, m.From, []string{to}, msg); err != nil {
		return fmt.Errorf("smtp send to %s failed: %w", to, err)
	}
	return nil
}

// MockMailer records messages instead of sending them; used in development
// and in tests.
type MockMailer struct {
	mu   sync.Mutex
	sent []MockMessage
}

// MockMessage is one captured message
type MockMessage struct {
	To      string
	Subject string
	Body    string
}

// NewMockMailer creates a new MockMailer
func NewMockMailer() *MockMailer {
	return &MockMailer{}
}

// Send records the message and logs it
func (m *MockMailer) Send(to, subject, body string) error {
	m.mu.Lock()
	m.sent = append(m.sent, MockMessage{To: to, Subject: subject, Body: body})
	m.mu.Unlock()
	slog.Info("MOCK EMAIL", "to", to, "subject", subject)
	return nil
}

// Sent returns a copy of all captured messages
func (m *MockMailer) Sent() []MockMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]MockMessage, len(m.sent))
	copy(out, m.sent)
	return out
}

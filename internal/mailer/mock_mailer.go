package mailer

import (
	"sync"
)

// Email represents a sent email
type Email struct {
	Recipient    string
	TemplateFile string
	Data         any
}

// MockMailer records emails instead of sending them.
type MockMailer struct {
	mu     sync.Mutex
	Emails []Email
}

func (m *MockMailer) Send(recipient, templateFile string, data any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Emails = append(m.Emails, Email{
		Recipient:    recipient,
		TemplateFile: templateFile,
		Data:         data,
	})

	return nil
}

func (m *MockMailer) Sent() []Email {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]Email(nil), m.Emails...)
}

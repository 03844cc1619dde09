package common

// EmailSender delivers transactional mail. The worker uses it for checkout
// confirmation messages; production wires an SMTP or provider-backed
// implementation, everything else uses the fakes below.
type EmailSender interface {
	Send(to, subject, html string) error
}

// Email is a single captured message.
type Email struct {
	To      string
	Subject string
	HTML    string
}

// InMemoryEmail records messages instead of sending them.
type InMemoryEmail struct {
	Outbox []Email
}

// Send appends the message to the outbox. A nil receiver drops it.
func (m *InMemoryEmail) Send(to, subject, html string) error {
	if m == nil {
		return nil
	}
	m.Outbox = append(m.Outbox, Email{To: to, Subject: subject, HTML: html})
	return nil
}

// Last returns the most recently captured message, if any.
func (m *InMemoryEmail) Last() (Email, bool) {
	if m == nil || len(m.Outbox) == 0 {
		return Email{}, false
	}
	return m.Outbox[len(m.Outbox)-1], true
}

// NopEmailSender discards every message. Used when confirmations are disabled.
type NopEmailSender struct{}

// Send implements EmailSender.
func (NopEmailSender) Send(string, string, string) error { return nil }

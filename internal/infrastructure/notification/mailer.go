// Package notification holds outbound message adapters.
// Delivery is not wired to a provider; LoggingMailer records what would be sent.
package notification

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Message kinds
const (
	KindPasswordSet   = "password_set"
	KindPasswordReset = "password_reset"
)

// PasswordLinkMessage carries a password-set or reset link to a user
type PasswordLinkMessage struct {
	Kind      string
	To        string
	Link      string
	ExpiresAt time.Time
}

// Mailer sends account emails
type Mailer interface {
	SendPasswordLink(ctx context.Context, msg PasswordLinkMessage) error
}

// LoggingMailer writes messages to the log instead of delivering them
type LoggingMailer struct {
	logger *zap.Logger

	mu   sync.Mutex
	sent []PasswordLinkMessage
}

// NewLoggingMailer creates a mailer that logs every message
func NewLoggingMailer(logger *zap.Logger) *LoggingMailer {
	return &LoggingMailer{logger: logger}
}

// SendPasswordLink logs the message. The link itself is never logged.
func (m *LoggingMailer) SendPasswordLink(_ context.Context, msg PasswordLinkMessage) error {
	m.mu.Lock()
	m.sent = append(m.sent, msg)
	m.mu.Unlock()

	m.logger.Info("Password link email queued",
		zap.String("kind", msg.Kind),
		zap.String("to", msg.To),
		zap.Time("expires_at", msg.ExpiresAt),
	)
	return nil
}

// Sent returns a copy of the messages recorded so far
func (m *LoggingMailer) Sent() []PasswordLinkMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]PasswordLinkMessage, len(m.sent))
	copy(out, m.sent)
	return out
}

var _ Mailer = (*LoggingMailer)(nil)

package notification

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestLoggingMailer_SendPasswordLink(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	mailer := NewLoggingMailer(zap.New(core))

	msg := PasswordLinkMessage{
		Kind:      KindPasswordReset,
		To:        "tenant@example.com",
		Link:      "http://localhost/set-password?token=secret",
		ExpiresAt: time.Now().Add(time.Hour),
	}
	require.NoError(t, mailer.SendPasswordLink(context.Background(), msg))

	sent := mailer.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, msg, sent[0])

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "tenant@example.com", fields["to"])
	_, hasLink := fields["link"]
	assert.False(t, hasLink)
}

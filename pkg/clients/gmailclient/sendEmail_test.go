package gmailclient

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/gmail/v1"
)

// mockSender records raw messages instead of calling the API
type mockSender struct {
	raw []string
	err error
}

func (m *mockSender) Send(ctx context.Context, msg *gmail.Message) error {
	if m.err != nil {
		return m.err
	}
	decoded, err := base64.URLEncoding.DecodeString(msg.Raw)
	if err != nil {
		return err
	}
	m.raw = append(m.raw, string(decoded))
	return nil
}

func TestSendEmail(t *testing.T) {
	s := &mockSender{}
	c := newClient(context.Background(), s, "team@example.com", 0)

	require.NoError(t, c.SendEmail("john@example.com", "Hope Hub: Gala", "Tickets on sale"))

	require.Len(t, s.raw, 1)
	assert.Contains(t, s.raw[0], "From: team@example.com\r\n")
	assert.Contains(t, s.raw[0], "To: john@example.com\r\n")
	assert.Contains(t, s.raw[0], "Subject: Hope Hub: Gala\r\n")
	assert.Contains(t, s.raw[0], "\r\n\r\nTickets on sale")
}

func TestSendEmail_Throttles(t *testing.T) {
	s := &mockSender{}
	c := newClient(context.Background(), s, "", time.Hour)
	var slept []time.Duration
	c.sleep = func(d time.Duration) { slept = append(slept, d) }

	require.NoError(t, c.SendEmail("a@example.com", "S", "B"))
	require.NoError(t, c.SendEmail("b@example.com", "S", "B"))

	assert.Len(t, s.raw, 2)
	require.Len(t, slept, 1)
	assert.Greater(t, slept[0], 59*time.Minute)
	assert.NotContains(t, s.raw[0], "From:")
}

func TestSendEmail_Error(t *testing.T) {
	c := newClient(context.Background(), &mockSender{err: errors.New("quota")}, "", 0)

	err := c.SendEmail("a@example.com", "S", "B")
	assert.ErrorContains(t, err, "a@example.com")
	assert.True(t, c.lastSendTime.IsZero())
}

func TestBuildMessage_EncodesSubject(t *testing.T) {
	msg := buildMessage("", "a@example.com", "Café night", "B")
	assert.Contains(t, msg, "Subject: =?utf-8?q?Caf=C3=A9_night?=")
}

package mailer

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderBookingConfirmation(t *testing.T) {
	m := NewSMTPMailer("localhost", 2525, "", "", "Popcorn Palace <no-reply@popcornpalace.test>")

	data := map[string]any{
		"FirstName":     "Ada",
		"MovieTitle":    "Wicked",
		"ScreeningDate": "14/12/2024 19:00",
		"Seats":         []string{"A1", "A2"},
		"Total":         "25.00",
		"BookingID":     "7f1c",
	}

	msg, err := m.render("ada@example.com", BookingConfirmationTemplate, data)
	require.NoError(t, err)

	assert.Equal(t, []string{"Your tickets for Wicked"}, msg.GetHeader("Subject"))
	assert.Equal(t, []string{"ada@example.com"}, msg.GetHeader("To"))

	var buf bytes.Buffer
	_, err = msg.WriteTo(&buf)
	require.NoError(t, err)

	body := buf.String()
	assert.True(t, strings.Contains(body, "A1, A2"))
	assert.True(t, strings.Contains(body, "25.00 EUR"))
}

func TestRenderUnknownTemplate(t *testing.T) {
	m := NewSMTPMailer("localhost", 2525, "", "", "no-reply@popcornpalace.test")

	_, err := m.render("ada@example.com", "missing.tmpl", nil)
	assert.Error(t, err)
}

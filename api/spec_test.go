package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetSwagger(t *testing.T) {
	doc, err := GetSwagger()
	require.NoError(t, err)

	for _, path := range []string{
		"/screenings",
		"/screenings/{screeningId}",
		"/bookings",
		"/bookings/checkout",
		"/bookings/{bookingId}/confirm",
		"/webhook/stripe",
		"/auth/signin",
		"/users/me/bookings",
	} {
		assert.NotNil(t, doc.Paths.Find(path), path)
	}

	screening := doc.Components.Schemas["ScreeningResponse"]
	require.NotNil(t, screening)
	assert.Contains(t, screening.Value.Required, "bookedSeats")
}

package mailer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/reservekit/pkg/mailer"
	"github.com/dmitrymomot/reservekit/pkg/reservation"
)

func TestRegistry_RenderAllKinds(t *testing.T) {
	t.Parallel()

	reg := mailer.NewRegistry(mailer.Identity{
		Name:  "Resto Pecheur",
		Phone: "0661-460593",
	})
	r := &reservation.Reservation{
		ID:           "res-1",
		CustomerName: "Alice Martin",
		Date:         "2025-08-01",
		Time:         "19:00",
		Guests:       4,
	}

	for _, kind := range []mailer.MessageKind{
		mailer.MessagePending,
		mailer.MessageConfirmed,
		mailer.MessageCancelled,
		mailer.MessageReminder,
	} {
		subject, body, err := reg.Render(kind, r, "https://example.com/track/t/")
		require.NoError(t, err, "kind %s", kind)
		assert.Contains(t, subject, "Resto Pecheur")
		assert.Contains(t, body, "Alice Martin")
		assert.Contains(t, body, "https://example.com/track/t/")
	}
}

func TestRegistry_RegisterOverride(t *testing.T) {
	t.Parallel()

	reg := mailer.NewRegistry(mailer.Identity{Name: "Resto"})
	reg.Register(mailer.MessagePending, func(id mailer.Identity, r *reservation.Reservation, trackingURL string) (string, string) {
		return "custom subject", "custom body " + trackingURL
	})

	subject, body, err := reg.Render(mailer.MessagePending, &reservation.Reservation{}, "#")
	require.NoError(t, err)
	assert.Equal(t, "custom subject", subject)
	assert.Equal(t, "custom body #", body)
}

func TestRegistry_UnknownKind(t *testing.T) {
	t.Parallel()

	reg := mailer.NewRegistry(mailer.Identity{})
	_, _, err := reg.Render(mailer.MessageKind("bogus"), &reservation.Reservation{}, "#")
	assert.ErrorIs(t, err, mailer.ErrUnknownMessageKind)
}

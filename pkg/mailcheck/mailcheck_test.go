package mailcheck_test

import (
	"context"
	"errors"
	"net"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/reservekit/pkg/mailcheck"
)

// stubResolver returns canned MX answers so no test touches the network.
type stubResolver struct {
	records []*net.MX
	err     error
}

func (s *stubResolver) LookupMX(ctx context.Context, domain string) ([]*net.MX, error) {
	return s.records, s.err
}

func okResolver() *stubResolver {
	return &stubResolver{records: []*net.MX{{Host: "mx1.example.com", Pref: 10}}}
}

func TestValidator_FormatStages(t *testing.T) {
	t.Parallel()

	v := mailcheck.New(mailcheck.WithResolver(okResolver()))
	ctx := context.Background()

	tests := []struct {
		name  string
		addr  string
		valid bool
	}{
		{"valid address", "alice@example.com", true},
		{"empty", "", false},
		{"whitespace only", "   ", false},
		{"missing at", "aliceexample.com", false},
		{"multiple at", "alice@@example.com", false},
		{"address too long", strings.Repeat("a", 250) + "@example.com", false},
		{"local part too long", strings.Repeat("a", 65) + "@example.com", false},
		{"no domain", "alice@", false},
		{"spaces inside", "alice smith@example.com", false},
		{"trimmed is valid", "  alice@example.com  ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			res := v.Validate(ctx, tt.addr)
			assert.Equal(t, tt.valid, res.Valid, "reason: %s", res.Reason)
		})
	}
}

func TestValidator_FakePatternDenylist(t *testing.T) {
	t.Parallel()

	v := mailcheck.New(mailcheck.WithResolver(okResolver()))
	ctx := context.Background()

	for _, addr := range []string{
		"test@test.com",
		"mytest@test.org",
		"fakeuser@fake.net",
		"admin@example.com",
		"noreply@shop.com",
		"no-reply@shop.com",
		"fatimaaaaaa@gmail.com",
	} {
		res := v.Validate(ctx, addr)
		assert.False(t, res.Valid, "expected %q to be rejected", addr)
	}
}

func TestValidator_DisposableDomains(t *testing.T) {
	t.Parallel()

	v := mailcheck.New(mailcheck.WithResolver(okResolver()))
	ctx := context.Background()

	res := v.Validate(ctx, "user@tempmail.org")
	require.False(t, res.Valid)
	assert.Contains(t, res.Reason, "disposable")

	res = v.Validate(ctx, "user@mailinator.com")
	assert.False(t, res.Valid)

	// Custom additions are honored.
	custom := mailcheck.New(
		mailcheck.WithResolver(okResolver()),
		mailcheck.WithDisposableDomains("burner.example"),
	)
	res = custom.Validate(ctx, "user@burner.example")
	assert.False(t, res.Valid)
}

func TestValidator_TypoSuggestion(t *testing.T) {
	t.Parallel()

	v := mailcheck.New(mailcheck.WithResolver(okResolver()))
	ctx := context.Background()

	res := v.Validate(ctx, "user@gmial.com")
	require.False(t, res.Valid)
	assert.Equal(t, "user@gmail.com", res.Suggestion)

	res = v.Validate(ctx, "user@hotmial.com")
	require.False(t, res.Valid)
	assert.Equal(t, "user@hotmail.com", res.Suggestion)

	// Correct spellings carry no suggestion.
	res = v.Validate(ctx, "user@gmail.com")
	assert.True(t, res.Valid)
	assert.Empty(t, res.Suggestion)
}

func TestValidator_MXStage(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("nxdomain rejects", func(t *testing.T) {
		t.Parallel()
		v := mailcheck.New(mailcheck.WithResolver(&stubResolver{
			err: &net.DNSError{Err: "no such host", Name: "nope.example", IsNotFound: true},
		}))
		res := v.Validate(ctx, "user@nope.example")
		assert.False(t, res.Valid)
	})

	t.Run("no MX records rejects", func(t *testing.T) {
		t.Parallel()
		v := mailcheck.New(mailcheck.WithResolver(&stubResolver{records: []*net.MX{}}))
		res := v.Validate(ctx, "user@nomx.example")
		assert.False(t, res.Valid)
	})

	t.Run("resolver unavailable degrades to unverified accept", func(t *testing.T) {
		t.Parallel()
		v := mailcheck.New(mailcheck.WithResolver(&stubResolver{
			err: errors.New("read udp: i/o timeout"),
		}))
		res := v.Validate(ctx, "user@example.com")
		assert.True(t, res.Valid)
		assert.Contains(t, res.Reason, "unverified")
	})

	t.Run("skip MX accepts on format alone", func(t *testing.T) {
		t.Parallel()
		v := mailcheck.New(mailcheck.WithSkipMX())
		res := v.Validate(ctx, "user@example.com")
		assert.True(t, res.Valid)
	})
}

package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/reservekit/pkg/config"
)

type mailerTestConfig struct {
	SenderEmail string `env:"TEST_SENDER_EMAIL" envDefault:"noreply@resto.example.com"`
	ReplyTo     string `env:"TEST_REPLY_TO"`
	Timeout     int    `env:"TEST_SEND_TIMEOUT" envDefault:"15"`
}

type requiredTestConfig struct {
	Token string `env:"TEST_REQUIRED_TOKEN,required"`
}

func TestLoad_Defaults(t *testing.T) {
	config.ResetCache()

	var cfg mailerTestConfig
	require.NoError(t, config.Load(&cfg))
	assert.Equal(t, "noreply@resto.example.com", cfg.SenderEmail)
	assert.Equal(t, 15, cfg.Timeout)
	assert.Empty(t, cfg.ReplyTo)
}

func TestLoad_FromEnvironment(t *testing.T) {
	config.ResetCache()
	t.Setenv("TEST_SENDER_EMAIL", "bookings@resto.example.com")
	t.Setenv("TEST_REPLY_TO", "contact@resto.example.com")

	var cfg mailerTestConfig
	require.NoError(t, config.Load(&cfg))
	assert.Equal(t, "bookings@resto.example.com", cfg.SenderEmail)
	assert.Equal(t, "contact@resto.example.com", cfg.ReplyTo)
}

func TestLoad_CachedPerType(t *testing.T) {
	config.ResetCache()
	t.Setenv("TEST_SENDER_EMAIL", "first@resto.example.com")

	var first mailerTestConfig
	require.NoError(t, config.Load(&first))

	// The cached copy wins even after the environment changes.
	t.Setenv("TEST_SENDER_EMAIL", "second@resto.example.com")
	var second mailerTestConfig
	require.NoError(t, config.Load(&second))
	assert.Equal(t, first.SenderEmail, second.SenderEmail)
}

func TestLoad_RequiredMissing(t *testing.T) {
	config.ResetCache()

	var cfg requiredTestConfig
	err := config.Load(&cfg)
	require.ErrorIs(t, err, config.ErrParsingConfig)
}

func TestLoad_NilPointer(t *testing.T) {
	var cfg *mailerTestConfig
	require.ErrorIs(t, config.Load(cfg), config.ErrNilPointer)
}

func TestMustLoad_PanicsOnFailure(t *testing.T) {
	config.ResetCache()

	assert.Panics(t, func() {
		var cfg requiredTestConfig
		config.MustLoad(&cfg)
	})
}

func TestLoadEnv_MissingFile(t *testing.T) {
	require.ErrorIs(t, config.LoadEnv("testdata/does-not-exist.env"), config.ErrLoadingEnvFile)
}

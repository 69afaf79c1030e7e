package engine

// Config holds engine settings loaded from the environment.
type Config struct {
	// BaseURL is the public address tracking links point back to.
	BaseURL string `env:"APP_BASE_URL" envDefault:"http://localhost:8080"`
}

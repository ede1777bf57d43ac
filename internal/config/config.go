// Package config defines service configuration structures and loading
// hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults; Load layers file/env.
// - External errors must be wrapped via this package's error helpers.
package config

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// FairnessPenalty is the stdev weight in the group score formula.
	FairnessPenalty float64 `koanf:"fairness_penalty"`

	// BufferMinutes pads a film's runtime when fitting it into a slot.
	BufferMinutes int `koanf:"buffer_minutes"`

	// DefaultRuntimeMinutes stands in for screenings with no duration.
	DefaultRuntimeMinutes int `koanf:"default_runtime_minutes"`

	// DayStartHour and DayEndHour bound free time on each calendar day.
	DayStartHour int `koanf:"day_start_hour"`
	DayEndHour   int `koanf:"day_end_hour"`

	// CacheTTLSeconds bounds how long a computed recommendation list is
	// served from cache.
	CacheTTLSeconds int `koanf:"cache_ttl_seconds"`

	// CacheShards configures the number of shards in the result cache.
	CacheShards int `koanf:"cache_shards"`

	// FetchConcurrency bounds parallel collaborator fetches per request.
	FetchConcurrency int `koanf:"fetch_concurrency"`

	// FetchTimeoutSeconds applies to profile, catalog, and token calls;
	// CalendarTimeoutSeconds applies to busy-event listings, which page
	// through full calendars and run longer.
	FetchTimeoutSeconds    int `koanf:"fetch_timeout_seconds"`
	CalendarTimeoutSeconds int `koanf:"calendar_timeout_seconds"`

	// MaxResultsCap is the hard ceiling on a request's max_results.
	MaxResultsCap int `koanf:"max_results_cap"`

	// Collaborator endpoints and credentials.
	TMDBAPIKey         string `koanf:"tmdb_api_key"`
	CinevilleAPIURL    string `koanf:"cineville_api_url"`
	LetterboxdBaseURL  string `koanf:"letterboxd_base_url"`
	GoogleClientID     string `koanf:"google_client_id"`
	GoogleClientSecret string `koanf:"google_client_secret"`

	// CalendarTokens maps usernames to OAuth refresh tokens. A user
	// missing here simply has no calendar grant.
	CalendarTokens map[string]string `koanf:"calendar_tokens"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:               "info",
		Addr:                   ":9090",
		FairnessPenalty:        0.25,
		BufferMinutes:          15,
		DefaultRuntimeMinutes:  120,
		DayStartHour:           8,
		DayEndHour:             24,
		CacheTTLSeconds:        300,
		CacheShards:            8,
		FetchConcurrency:       8,
		FetchTimeoutSeconds:    10,
		CalendarTimeoutSeconds: 30,
		MaxResultsCap:          50,
		CinevilleAPIURL:        "https://api.cineville.nl/events/search",
		LetterboxdBaseURL:      "https://letterboxd.com",
		CalendarTokens:         map[string]string{},
	}
}

package config

import (
	"log/slog"
	"os"
	"time"

	"github.com/dmitrijs2005/dnahub/internal/client/nav"
)

// BackendURLEnv is the environment variable the web front end used for the
// API location. It is honoured here too.
const BackendURLEnv = "REACT_APP_BACKEND_URL"

// Config holds runtime settings for the dnahub CLI.
//
// Fields:
//   - APIBaseURL: scheme://host[:port] of the community REST API.
//   - DatabasePath: SQLite file that keeps the signed-in session.
//   - RequestTimeout: per-request timeout of the HTTP client.
//   - RequestsPerSecond, RequestBurst: outgoing request limiter; 0 disables it.
//   - OnlineCheckInterval: how often the client checks API reachability.
//   - LogLevel: slog level name (debug, info, warn, error).
//   - Sections, Layout, HeaderOffset, ActivationOffset, HomeTolerance: inputs
//     of the section tracker used by the "section" command.
type Config struct {
	APIBaseURL          string
	DatabasePath        string
	RequestTimeout      time.Duration
	RequestsPerSecond   float64
	RequestBurst        int
	OnlineCheckInterval time.Duration
	LogLevel            string

	Sections         []string
	Layout           nav.Layout
	HeaderOffset     float64
	ActivationOffset float64
	HomeTolerance    float64
}

// DefaultLayout is a demo geometry for nav.DefaultSections.
func DefaultLayout() nav.Layout {
	return nav.Layout{
		"home":      {Top: 0, Height: 800},
		"about":     {Top: 800, Height: 700},
		"team":      {Top: 1500, Height: 900},
		"projects":  {Top: 2400, Height: 900},
		"resources": {Top: 3300, Height: 700},
		"events":    {Top: 4000, Height: 900},
		"blog":      {Top: 4900, Height: 800},
		"contact":   {Top: 5700, Height: 700},
	}
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://localhost:8001"
	c.DatabasePath = "dnahub.db"
	c.RequestTimeout = 10 * time.Second
	c.RequestsPerSecond = 5
	c.RequestBurst = 5
	c.OnlineCheckInterval = 3 * time.Second
	c.LogLevel = "info"

	c.Sections = append([]string(nil), nav.DefaultSections...)
	c.Layout = DefaultLayout()
	c.HeaderOffset = nav.DefaultHeaderOffset
	c.ActivationOffset = nav.DefaultActivationOffset
	c.HomeTolerance = nav.DefaultHomeTolerance
}

// SlogLevel converts LogLevel, falling back to info.
func (c *Config) SlogLevel() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

// applyEnv overlays values from the environment.
func applyEnv(cfg *Config) {
	if v, ok := os.LookupEnv(BackendURLEnv); ok && v != "" {
		cfg.APIBaseURL = v
	}
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// the environment, JSON (if present) and command-line flags (if present).
// Later sources take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	applyEnv(cfg)
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}

package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/dnahub/internal/client/nav"
	"github.com/dmitrijs2005/dnahub/internal/flagx"
	"github.com/dmitrijs2005/dnahub/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
// It relies on timex.Duration so JSON can specify intervals either as
// strings like "3s" or as integer nanoseconds. Pointer fields distinguish
// "absent" from an explicit zero.
type JsonConfig struct {
	APIBaseURL          string          `json:"api_base_url"`
	DatabasePath        string          `json:"database_path"`
	RequestTimeout      *timex.Duration `json:"request_timeout"`
	RequestsPerSecond   *float64        `json:"requests_per_second"`
	RequestBurst        *int            `json:"request_burst"`
	OnlineCheckInterval *timex.Duration `json:"online_check_interval"`
	LogLevel            string          `json:"log_level"`

	Sections         []string   `json:"sections"`
	Layout           nav.Layout `json:"layout"`
	HeaderOffset     *float64   `json:"header_offset"`
	ActivationOffset *float64   `json:"activation_offset"`
	HomeTolerance    *float64   `json:"home_tolerance"`
}

// parseJson overlays Config with values loaded from a JSON file.
//
// The file path comes from the -c or -config flag. Without it nothing is
// loaded. Only keys present in the file replace existing values.
//
// Panics on read or unmarshal errors (caller should recover if desired).
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.ConfigFilePath()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.APIBaseURL != "" {
		cfg.APIBaseURL = jc.APIBaseURL
	}
	if jc.DatabasePath != "" {
		cfg.DatabasePath = jc.DatabasePath
	}
	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.RequestsPerSecond != nil {
		cfg.RequestsPerSecond = *jc.RequestsPerSecond
	}
	if jc.RequestBurst != nil {
		cfg.RequestBurst = *jc.RequestBurst
	}
	if jc.OnlineCheckInterval != nil {
		cfg.OnlineCheckInterval = jc.OnlineCheckInterval.Duration
	}
	if jc.LogLevel != "" {
		cfg.LogLevel = jc.LogLevel
	}
	if len(jc.Sections) > 0 {
		cfg.Sections = jc.Sections
	}
	if jc.Layout != nil {
		cfg.Layout = jc.Layout
	}
	if jc.HeaderOffset != nil {
		cfg.HeaderOffset = *jc.HeaderOffset
	}
	if jc.ActivationOffset != nil {
		cfg.ActivationOffset = *jc.ActivationOffset
	}
	if jc.HomeTolerance != nil {
		cfg.HomeTolerance = *jc.HomeTolerance
	}
}

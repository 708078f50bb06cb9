// Package config loads runtime configuration for the dnahub CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. The REACT_APP_BACKEND_URL environment variable, for the API base URL.
//  3. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  4. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the community API
//	-d string   path of the local session database
//	-t int      request timeout (seconds)
//	-r float    outgoing requests per second
//	-i int      online status check interval (seconds)
//	-l string   log level
//
// # JSON schema
//
// The JSON loader uses timex.Duration for intervals, so values can be either
// strings like "3s" or integer nanoseconds:
//
//	{
//	  "api_base_url": "http://localhost:8001",
//	  "database_path": "dnahub.db",
//	  "request_timeout": "10s",
//	  "requests_per_second": 5,
//	  "online_check_interval": "3s",
//	  "log_level": "info",
//	  "layout": {"home": {"top": 0, "height": 800}},
//	  "header_offset": 150
//	}
package config

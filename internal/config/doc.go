// Package config handles configuration loading for parley.
//
// # Overview
//
// Configuration is loaded from YAML files with environment variable expansion.
// The package provides validation and sensible defaults.
//
// # Environment Variable Expansion
//
// Configuration values can reference environment variables:
//
//	server:
//	  base_url: "${PARLEY_SERVER_URL}"
//
// Syntax: ${VAR_NAME}
//
// # Duration Parsing
//
// Duration values use Go's time.ParseDuration syntax:
//
//	sync:
//	  poll_interval: "30s"
//
// Supported units: ns, us, ms, s, m, h
//
// # Configuration Sections
//
// Server settings:
//
//	server:
//	  base_url: "https://chat.example.com/api"
//
// Event stream:
//
//	events:
//	  enabled: true
//	  ws_url: "wss://chat.example.com/api/Events"
//
// List refresh timing:
//
//	sync:
//	  poll_interval: "30s"
//
// Local state database:
//
//	database:
//	  path: "~/.config/parley/state.db"
//
// Logging:
//
//	logging:
//	  level: "info"   # debug, info, warn, error
//	  format: "text"  # text, json
//
// # Usage
//
// Load configuration from a path:
//
//	cfg, err := config.Load("/etc/parley/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Or use built-in defaults:
//
//	cfg := config.Default()
package config

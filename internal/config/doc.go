// Package config handles configuration loading for leasing-chat.
//
// # Overview
//
// Configuration is loaded from YAML or TOML files with environment variable
// expansion. Any value left out of the file keeps its Default.
//
// # Configuration File
//
// Default locations (in order):
//
//  1. The --config flag
//  2. Path from LEASING_CHAT_CONFIG environment variable
//  3. $XDG_CONFIG_HOME/leasing-chat/config.yaml
//  4. ~/.config/leasing-chat/config.yaml
//
// A file whose name ends in .toml is parsed as TOML.
//
// # Environment Variable Expansion
//
//	agent:
//	  token: "${LEASING_AGENT_TOKEN}"
//
// Unset variables expand to the empty string.
//
// # Configuration Sections
//
//	agent:
//	  base_url: "http://localhost:8000"
//	  token: "${LEASING_AGENT_TOKEN}"
//	  request_timeout: "30s"   # start and listing calls
//	  idle_timeout: "2m"       # max silence between reply events, "0s" disables
//
//	stream:
//	  max_line_bytes: 1048576
//	  max_malformed_frames: 32  # consecutive, 0 = unlimited
//	  read_buffer_bytes: 4096
//
//	telemetry:
//	  database_path: "${HOME}/.local/share/leasing-chat/observations.db"
//	  bus_topic: "leasing.observations"
//
//	logging:
//	  level: "info"   # debug, info, warn, error
//	  format: "text"  # text, json
package config

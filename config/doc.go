// Package config loads the formatter configuration from YAML or JSONC and
// turns it into binding options and a zap logger.
//
//	style: standard          # standard | compact | plain
//	separator: " "
//	trailing_separator: false
//	track_allocations: false
//	wasm:
//	  memory_limit_pages: 4096
//	  guest_pages: 2
//	log:
//	  level: info
//	  encoding: console
//	  development: false
//
// JSON files may carry // and /* */ comments and trailing commas; they are
// stripped with github.com/tidwall/jsonc before decoding.
package config

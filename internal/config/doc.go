// Package config loads subburn's TOML configuration.
//
// A config file is optional. Values are layered as defaults, then the
// file, then command-line flags applied by the cli package. Unknown keys
// are rejected so typos surface instead of being ignored.
package config

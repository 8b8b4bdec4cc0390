// Package config loads the dashboard configuration from environment
// variables (prefix VETTOO) layered over an optional YAML file. Environment
// values take precedence. Load also validates the result, so the rest of
// the application can assume a usable configuration.
package config

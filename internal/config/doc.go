// Package config loads, normalizes, and validates the TOML configuration
// shared by all vidops commands. Path fields are expanded (~, relative →
// absolute) during Load so downstream code never re-resolves them.
package config

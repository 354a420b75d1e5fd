// Package config loads server settings from an optional config file, a .env
// file and the environment, and validates them once at startup.
//
// The resulting *Config is read-only and is handed to every component that
// needs it; nothing reads settings through package globals at request time.
package config

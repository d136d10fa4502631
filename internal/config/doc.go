// Package config loads ~/.config/venv/config.toml.
package config

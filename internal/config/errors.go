package config

import "errors"

var (
	// ErrInvalidValue indicates a config value that cannot be parsed or is out of range.
	ErrInvalidValue = errors.New("invalid config value")

	// ErrInvalidFile indicates the config file is not a flat YAML map.
	ErrInvalidFile = errors.New("invalid config file")

	// ErrUnknownKey indicates a config file key that no setting uses.
	ErrUnknownKey = errors.New("unknown config key")
)

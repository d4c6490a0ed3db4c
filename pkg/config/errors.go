package config

import "errors"

var (
	ErrDotenv   = errors.New("config: failed to load .env file")
	ErrReadFile = errors.New("config: failed to read config file")
	ErrParse    = errors.New("config: failed to parse environment")
	ErrInvalid  = errors.New("config: invalid value")
)

package service

import "errors"

// Sentinel errors shared by the storage layers and the transports
var (
	ErrSessionNotFound = errors.New("session not found")
	ErrConfigNotFound  = errors.New("configuration not found")
	ErrInvalidConfig   = errors.New("invalid configuration")
	ErrNoCommands      = errors.New("no commands given")
)

package config

import "errors"

// Configuration errors. A missing global or project file is never an error;
// these cover files that exist but cannot be used.
var (
	ErrConfigFileNotFound = errors.New("config file not found")
	ErrConfigFileRead     = errors.New("cannot read config file")
	ErrConfigInvalid      = errors.New("invalid config file")
	ErrSchemaEmpty        = errors.New("schema cannot be empty")
)

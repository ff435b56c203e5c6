// Package logger builds the application's zap logger.
package logger

import (
	"go.uber.org/zap"
)

// New returns a sugared logger for the given environment. "production"
// selects the JSON encoder; anything else gets the human-readable console
// encoder. Initialization failure falls back to a nop logger.
func New(env string) *zap.SugaredLogger {
	var base *zap.Logger
	var err error

	if env == "production" {
		base, err = zap.NewProduction()
	} else {
		base, err = zap.NewDevelopment()
	}
	if err != nil {
		base = zap.NewNop()
	}

	return base.Sugar()
}

// Package logging sets up the structured logger the rest of this module
// uses, built on zap the way it appears in the retrieval pack's dependency
// graph (xuperchain-xuperchain pulls it in for exactly this purpose).
package logging

import (
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// New builds a development-friendly zap logger tagged with component.
func New(component string) (*zap.Logger, error) {
	logger, err := zap.NewDevelopment()
	if err != nil {
		return nil, err
	}
	return logger.With(zap.String("component", component)), nil
}

// NewRunID mints a fresh correlation ID for one outlining run, so every
// log line a single RunOnModule call emits can be grepped together
// (spec.md §9 "per-run correlation id").
func NewRunID() string {
	return uuid.NewString()
}

package logger

import (
	"fmt"

	"go.uber.org/zap"
)

// New builds the production zap logger used across the service. Components
// receive it at construction; nothing pulls a logger out of ambient state.
func New() (*zap.Logger, error) {
	l, err := zap.NewProduction()
	if err != nil {
		return nil, fmt.Errorf("error creating new logger: %w", err)
	}
	return l, nil
}

package testutil

import (
	"context"

	"github.com/hiretrack/hiretrack/internal/types"
)

func SetupContext() context.Context {
	return types.WithRequestID(context.Background(), "")
}

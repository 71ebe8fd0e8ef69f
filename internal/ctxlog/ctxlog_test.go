package ctxlog

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFromContext_ReturnsStoredLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	ctx := WithLogger(context.Background(), logger)
	FromContext(ctx).Info("hello", "k", "v")

	require.Same(t, logger, FromContext(ctx))
	require.Contains(t, buf.String(), "msg=hello")
	require.Contains(t, buf.String(), "k=v")
}

func TestFromContext_MissingLoggerDiscards(t *testing.T) {
	logger := FromContext(context.Background())
	require.NotNil(t, logger)
	require.NotPanics(t, func() { logger.Error("dropped") })

	ctx := WithLogger(context.Background(), nil)
	require.NotNil(t, FromContext(ctx))
}

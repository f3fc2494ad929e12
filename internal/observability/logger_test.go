package observability

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInitLogger(t *testing.T) {
	tests := []struct {
		name   string
		level  string
		format string
	}{
		{"json info", "info", "json"},
		{"text debug", "debug", "text"},
		{"json error", "error", "json"},
		{"unknown level defaults to info", "verbose", "text"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			InitLogger(tt.level, tt.format)
			assert.NotNil(t, logger)
			assert.Same(t, logger, slog.Default())
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"nonsense", slog.LevelInfo},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, parseLevel(tt.input))
	}
}

func TestFromContext(t *testing.T) {
	InitLogger("info", "json")

	t.Run("empty context returns base logger", func(t *testing.T) {
		l := FromContext(context.Background())
		assert.Same(t, logger, l)
	})

	t.Run("request id attaches", func(t *testing.T) {
		ctx := WithRequestID(context.Background(), "req-123")
		l := FromContext(ctx)
		assert.NotSame(t, logger, l)
	})

	t.Run("user id and role attach", func(t *testing.T) {
		ctx := WithUserID(context.Background(), "user-456")
		ctx = WithRole(ctx, "COACH")
		l := FromContext(ctx)
		assert.NotSame(t, logger, l)
	})

	t.Run("empty values are skipped", func(t *testing.T) {
		ctx := WithRequestID(context.Background(), "")
		ctx = WithUserID(ctx, "")
		l := FromContext(ctx)
		assert.Same(t, logger, l)
	})
}

func TestFromContext_Uninitialized(t *testing.T) {
	saved := logger
	logger = nil
	defer func() { logger = saved }()

	l := FromContext(context.Background())
	assert.NotNil(t, l)
}

func TestContextValuesDoNotCollide(t *testing.T) {
	ctx := context.WithValue(context.Background(), "request_id", "plain-string-key")
	l := FromContext(ctx)
	assert.Same(t, logger, l)
}

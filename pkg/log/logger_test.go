package log

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewContextWithWriter(t *testing.T) {
	var buf bytes.Buffer
	ctx, flush := NewContextWithWriter(context.Background(), &buf, true)

	Component(ctx, "memory_graph").Debug().Str("id", "m1").Msg("memory created")
	flush()

	out := buf.String()
	assert.Contains(t, out, "memory created")
	assert.Contains(t, out, "memory_graph")
	assert.Contains(t, out, "m1")
}

func TestNewContextWithWriter_InfoLevelDropsDebug(t *testing.T) {
	var buf bytes.Buffer
	ctx, flush := NewContextWithWriter(context.Background(), &buf, false)

	FromCtx(ctx).Debug().Msg("hidden")
	FromCtx(ctx).Info().Msg("visible")
	flush()

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "visible")
}

func TestGooseLogger_PrintsAtDebug(t *testing.T) {
	var buf bytes.Buffer
	ctx, flush := NewContextWithWriter(context.Background(), &buf, true)

	NewGooseLoggerFromCtx(ctx).Printf("OK   00001_snapshots.sql\n")
	flush()

	assert.Contains(t, buf.String(), "00001_snapshots.sql")
	assert.Contains(t, buf.String(), "migrations")
}

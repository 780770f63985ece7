package logger

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestNewWithWriter(t *testing.T) {
	buf := &bytes.Buffer{}
	log := NewWithWriter(buf)

	log.Info().Str("user_id", "7").Msg("transfer completed")

	out := buf.String()
	assert.Contains(t, out, "transfer completed")
	assert.Contains(t, out, `"user_id":"7"`)
}

func TestWithLevel(t *testing.T) {
	buf := &bytes.Buffer{}
	log := WithLevel(NewWithWriter(buf), "WARN")

	log.Info().Msg("hidden")
	log.Warn().Msg("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")

	assert.Equal(t, zerolog.InfoLevel, WithLevel(Nop(), "bogus").GetLevel())
}

func TestFromContext(t *testing.T) {
	buf := &bytes.Buffer{}
	ctx := WithContext(context.Background(), NewWithWriter(buf))

	log := FromContext(ctx, Nop())
	log.Info().Msg("from ctx")
	assert.Contains(t, buf.String(), "from ctx")

	fallback := FromContext(context.Background(), Nop())
	assert.Equal(t, zerolog.Disabled, fallback.GetLevel())
}

func TestNewConsole(t *testing.T) {
	buf := &bytes.Buffer{}
	log := NewConsole(buf)
	log.Warn().Str("amount", "12.50").Msg("transfer rejected")

	out := buf.String()
	assert.Contains(t, out, "transfer rejected")
	assert.Contains(t, out, "amount=12.50")
	assert.NotContains(t, out, "\x1b[", "no color codes outside a terminal")
}

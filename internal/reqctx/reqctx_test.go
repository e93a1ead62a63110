package reqctx

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithRun_AttachesLoggerAndRun(t *testing.T) {
	var buf bytes.Buffer
	ctx, run := WithRun(context.Background(), zerolog.New(&buf), "someone")

	require.NotEmpty(t, run.ID)
	assert.Same(t, run, FromContext(ctx))

	zerolog.Ctx(ctx).Info().Msg("hello")
	assert.Contains(t, buf.String(), `"run_id":"`+run.ID+`"`)
	assert.Contains(t, buf.String(), `"user":"someone"`)
}

func TestFromContext_Missing(t *testing.T) {
	assert.Equal(t, "unknown", FromContext(context.Background()).ID)
}

func TestWrap(t *testing.T) {
	ctx, run := WithRun(context.Background(), zerolog.Nop(), "u")
	base := errors.New("boom")

	err := Wrap(ctx, base)
	assert.ErrorIs(t, err, base)
	assert.Contains(t, err.Error(), run.ID)
	assert.NoError(t, Wrap(ctx, nil))
}

package prompt

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateLimit(t *testing.T) {
	tests := []struct {
		input   string
		max     int
		want    int
		wantErr bool
	}{
		{"1", 3, 1, false},
		{" 3 \n", 3, 3, false},
		{"5", 3, 0, true},
		{"0", 3, 0, true},
		{"-2", 3, 0, true},
		{"abc", 3, 0, true},
		{"2.5", 3, 0, true},
		{"", 3, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ValidateLimit(tt.input, tt.max)
			if tt.wantErr {
				var ve *ValidationError
				require.True(t, errors.As(err, &ve), "want *ValidationError, got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidateLimit_ZeroMaxAlwaysFails(t *testing.T) {
	for _, in := range []string{"0", "1", "-1", "999", "x", ""} {
		_, err := ValidateLimit(in, 0)
		assert.Error(t, err, in)
	}
}

func TestAskLimit_RepromptsUntilValid(t *testing.T) {
	var out bytes.Buffer
	p := New(strings.NewReader("abc\n9\n2\n"), &out)

	n, err := p.AskLimit(3)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 3, strings.Count(out.String(), "(max 3)"))
	assert.Equal(t, 2, strings.Count(out.String(), "Invalid input"))
}

func TestAskLimit_EOF(t *testing.T) {
	p := New(strings.NewReader("7\n"), io.Discard)

	_, err := p.AskLimit(3)
	assert.ErrorIs(t, err, io.EOF)
}

func TestAskLimit_LastLineWithoutNewline(t *testing.T) {
	p := New(strings.NewReader("2"), io.Discard)

	n, err := p.AskLimit(3)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestAskLimit_NothingToChoose(t *testing.T) {
	p := New(strings.NewReader("1\n"), io.Discard)

	_, err := p.AskLimit(0)
	var ve *ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestAskUsername(t *testing.T) {
	var out bytes.Buffer
	p := New(strings.NewReader("\n  @someone \n"), &out)

	name, err := p.AskUsername()
	require.NoError(t, err)
	assert.Equal(t, "someone", name)
	assert.Contains(t, out.String(), "cannot be empty")
}

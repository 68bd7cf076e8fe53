package costseg

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDateLayouts(t *testing.T) {
	want := time.Date(2021, time.March, 15, 0, 0, 0, 0, time.UTC)

	for _, input := range []string{
		"2021-03-15",
		"03/15/2021",
		"2021-03-15T10:30:00Z",
	} {
		got, err := ParseDate(input)
		require.NoError(t, err, "input %q", input)
		assert.True(t, got.Equal(want), "input %q parsed to %s", input, got)
	}
}

func TestParseDateRejectsUnknownFormats(t *testing.T) {
	for _, input := range []string{"", "15-03-2021", "March 15, 2021", "2021/03/15", "not a date"} {
		_, err := ParseDate(input)
		assert.ErrorIs(t, err, ErrInvalidInput, "input %q", input)
	}
}

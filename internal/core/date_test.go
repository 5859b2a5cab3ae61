package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	want := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	for _, in := range []string{
		"2024-03-05",
		"2024-03-05T13:45:00Z",
		"2024-03-05 13:45:00",
		"3/5/2024",
		"03/05/2024",
		" 2024-03-05 ",
	} {
		got, err := ParseDate(in)
		require.NoError(t, err, in)
		assert.True(t, want.Equal(got), "%s parsed as %s", in, got)
	}
}

func TestParseDateRejectsGarbage(t *testing.T) {
	for _, in := range []string{"", "yesterday", "2024-13-01", "32/01/2024"} {
		_, err := ParseDate(in)
		assert.ErrorIs(t, err, ErrInvalidDate, in)
	}
}

func TestFormatDate(t *testing.T) {
	assert.Equal(t, "2024-01-09", FormatDate(time.Date(2024, 1, 9, 0, 0, 0, 0, time.UTC)))
}

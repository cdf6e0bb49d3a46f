package util

import (
	"testing"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePhone(t *testing.T) {
	cases := map[string]string{
		"+33600000000":       "+33600000000",
		"06 00 00 00 00":     "+33600000000",
		"0033 6 00 00 00 00": "+33600000000",
		"33600000000":        "+33600000000",
		"+1 (415) 555-0100":  "+14155550100",
		"":                   "",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizePhone(in), "input %q", in)
	}
}

func TestNewID(t *testing.T) {
	a, b := NewID(), NewID()
	assert.NotEqual(t, a, b)

	_, err := ulid.Parse(a)
	require.NoError(t, err)
}

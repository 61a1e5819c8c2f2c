package rut

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare", "12345678-5", "12345678-5"},
		{"dotted", "12.345.678-5", "12345678-5"},
		{"no separators", "123456785", "12345678-5"},
		{"single digit body", "1-9", "1-9"},
		{"repeated digits", "11.111.111-1", "11111111-1"},
		{"k check digit lowercase", "1000005-k", "1000005-K"},
		{"k check digit uppercase", "1.000.005-K", "1000005-K"},
		{"leading zeros dropped", "012345678-5", "12345678-5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeInvalid(t *testing.T) {
	for _, in := range []string{
		"",
		"5",
		"abc",
		"12345678-4",
		"12.345.678-K",
		"1-8",
	} {
		t.Run(in, func(t *testing.T) {
			_, err := Normalize(in)
			assert.Error(t, err)
		})
	}
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "12.345.678-5", Format("12345678-5"))
	assert.Equal(t, "1-9", Format("1-9"))
	assert.Equal(t, "1.000.005-K", Format("1000005-K"))
	assert.Equal(t, "not-a-rut", Format("not-a-rut"))
}

package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/chaoscrypt/internal/dynamo"
)

func TestParseGrid(t *testing.T) {
	name, values, err := parseGrid("a=34.5:35.5:3")
	require.NoError(t, err)
	assert.Equal(t, "a", name)
	assert.Equal(t, []float64{34.5, 35, 35.5}, values)

	for _, bad := range []string{"a", "=1:2:3", "a=1:2", "a=x:2:3", "a=2:1:3", "a=1:2:0"} {
		_, _, err := parseGrid(bad)
		assert.ErrorIs(t, err, dynamo.ErrInvalidInput, bad)
	}
}

func TestRequireSeed(t *testing.T) {
	seedValue = ""
	t.Setenv("CHAOSCRYPT_SEED", "")
	_, err := requireSeed()
	assert.ErrorIs(t, err, dynamo.ErrInvalidInput)

	t.Setenv("CHAOSCRYPT_SEED", "from-env")
	s, err := requireSeed()
	require.NoError(t, err)
	assert.Equal(t, "from-env", s)

	seedValue = "from-flag"
	defer func() { seedValue = "" }()
	s, err = requireSeed()
	require.NoError(t, err)
	assert.Equal(t, "from-flag", s)
}

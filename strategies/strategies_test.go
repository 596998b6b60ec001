package strategies

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetStrategies(t *testing.T) {
	t.Parallel()
	all := GetStrategies()
	require.NotEmpty(t, all)
	for _, s := range all {
		assert.NotEmpty(t, s.Name())
		assert.NotEmpty(t, s.Description())
	}
}

func TestLoadStrategyByName(t *testing.T) {
	t.Parallel()
	s, err := LoadStrategyByName("rsi")
	require.NoError(t, err)
	assert.Equal(t, "rsi", s.Name())

	// lookup is case insensitive
	s, err = LoadStrategyByName("RSI")
	require.NoError(t, err)
	assert.Equal(t, "rsi", s.Name())

	_, err = LoadStrategyByName("momentum")
	assert.ErrorIs(t, err, ErrStrategyNotFound)
}

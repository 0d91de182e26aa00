package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeLimit(t *testing.T) {
	assert.Equal(t, DefaultLimit, NormalizeLimit(0))
	assert.Equal(t, MaxLimit, NormalizeLimit(MaxLimit+50))
	assert.Equal(t, 10, NormalizeLimit(10))
}

func TestParse(t *testing.T) {
	p, err := Parse("", "")
	require.NoError(t, err)
	assert.Equal(t, Params{Limit: DefaultLimit}, p)

	p, err = Parse("500", "40")
	require.NoError(t, err)
	assert.Equal(t, Params{Limit: MaxLimit, Offset: 40}, p)

	_, err = Parse("abc", "")
	require.Error(t, err)
	_, err = Parse("10", "-1")
	require.Error(t, err)
}

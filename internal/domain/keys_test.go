package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAPIKeysValid(t *testing.T) {
	pub := strings.Repeat("a", 32)
	priv := strings.Repeat("b", 32)

	assert.True(t, APIKeys{Public: pub, Private: priv}.Valid())
	assert.False(t, APIKeys{Public: pub, Private: "short"}.Valid())
	assert.False(t, APIKeys{Public: pub + "x", Private: priv}.Valid())
	assert.False(t, APIKeys{}.Valid())
}

func TestParseAPIKeys(t *testing.T) {
	keys, ok := ParseAPIKeys("pub:priv")
	assert.True(t, ok)
	assert.Equal(t, APIKeys{Public: "pub", Private: "priv"}, keys)
	assert.Equal(t, "pub:priv", keys.String())

	for _, s := range []string{"", "pub", ":priv", "pub:", "a:b:c", ":"} {
		_, ok := ParseAPIKeys(s)
		assert.False(t, ok, "input %q", s)
	}
}

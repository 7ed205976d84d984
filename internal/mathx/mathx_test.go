package mathx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClamp(t *testing.T) {
	assert.Equal(t, 40, Clamp(10, 40, 240))
	assert.Equal(t, 240, Clamp(500, 40, 240))
	assert.Equal(t, 120, Clamp(120, 40, 240))
	assert.Equal(t, 0.25, Clamp(0.1, 0.25, 4.0))
}

func TestMod(t *testing.T) {
	assert.Equal(t, 11, Mod(-1, 12))
	assert.Equal(t, 0, Mod(24, 12))
	assert.Equal(t, 5, Mod(17, 12))
}

func TestAbs(t *testing.T) {
	assert.Equal(t, 3, Abs(-3))
	assert.Equal(t, 2.5, Abs(2.5))
}

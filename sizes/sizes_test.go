package sizes_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cse30341/simplefs/sizes"
)

func TestLookup__KnownPreset(t *testing.T) {
	preset, ok := sizes.Lookup("floppy")
	assert.True(t, ok)
	assert.EqualValues(t, 2880, preset.Blocks)
}

func TestLookup__UnknownPreset(t *testing.T) {
	_, ok := sizes.Lookup("does-not-exist")
	assert.False(t, ok)
}

func TestNames__IncludesEveryPresetSorted(t *testing.T) {
	names := sizes.Names()
	assert.Contains(t, names, "tiny")
	assert.Contains(t, names, "floppy")
	assert.Contains(t, names, "small-disk")
	assert.Contains(t, names, "large-disk")

	sorted := append([]string(nil), names...)
	assert.True(t, len(sorted) > 0)
	for i := 1; i < len(sorted); i++ {
		assert.LessOrEqual(t, sorted[i-1], sorted[i])
	}
}

package simplefs_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cse30341/simplefs"
	simplefstest "github.com/cse30341/simplefs/testing"
)

func TestDebug__ReportsSuperblockAndValidInodes(t *testing.T) {
	fs, disk := simplefstest.MountedFileSystem(t, 32)

	inumber, err := fs.Create()
	require.NoError(t, err)
	payload := []byte("debug me")
	_, err = fs.Write(inumber, payload, len(payload), 0)
	require.NoError(t, err)
	require.NoError(t, fs.Unmount())

	var out strings.Builder
	require.NoError(t, simplefs.Debug(&out, disk))

	report := out.String()
	assert.Contains(t, report, "SuperBlock:")
	assert.Contains(t, report, "32 blocks")
	assert.Contains(t, report, "Inode 0:")
	assert.Contains(t, report, "size: 8 bytes")
}

func TestDebug__RejectsUnformattedImage(t *testing.T) {
	disk := simplefstest.NewMemoryDisk(t, 16)
	var out strings.Builder
	err := simplefs.Debug(&out, disk)
	assert.ErrorIs(t, err, simplefs.ErrFormat)
}

// Package testing holds helpers shared by simplefs's own _test.go files: a
// way to get a fresh in-memory disk image without touching the real
// filesystem, mirroring how the teacher repo's own test helper package backs
// fixture images with an in-memory stream instead of a file.
package testing

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/bytesextra"

	"github.com/cse30341/simplefs"
)

// NewMemoryDisk returns a Disk backed by an in-memory buffer of exactly
// blocks*simplefs.BlockSize bytes. It is not formatted.
func NewMemoryDisk(t *testing.T, blocks uint32) *simplefs.Disk {
	t.Helper()
	buf := make([]byte, int(blocks)*simplefs.BlockSize)
	stream := bytesextra.NewReadWriteSeeker(buf)
	return simplefs.NewFromStream(stream, blocks)
}

// NewFormattedDisk returns a freshly formatted Disk backed by an in-memory
// buffer of blocks blocks.
func NewFormattedDisk(t *testing.T, blocks uint32) *simplefs.Disk {
	t.Helper()
	disk := NewMemoryDisk(t, blocks)
	require.NoError(t, simplefs.Format(disk), "formatting in-memory disk")
	return disk
}

// MountedFileSystem formats and mounts a fresh in-memory disk of blocks
// blocks, returning both so the caller can unmount when it's done.
func MountedFileSystem(t *testing.T, blocks uint32) (*simplefs.FileSystem, *simplefs.Disk) {
	t.Helper()
	disk := NewFormattedDisk(t, blocks)
	fs := simplefs.NewFileSystem()
	require.NoError(t, fs.Mount(disk), "mounting freshly formatted disk")
	return fs, disk
}

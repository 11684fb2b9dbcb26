package simplefs

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/bytesextra"
)

// TestScanInodeTable__DuplicateBlockOwnershipIsReportedNotFatal writes two
// valid inodes that both claim the same direct block directly onto the
// disk (bypassing Create/Write, which would never produce this on their
// own) and checks that scanInodeTable still completes, leaves the block
// marked in-use, and surfaces the collision as an aggregated warning.
func TestScanInodeTable__DuplicateBlockOwnershipIsReportedNotFatal(t *testing.T) {
	const blocks = 32
	buf := make([]byte, blocks*BlockSize)
	disk := NewFromStream(bytesextra.NewReadWriteSeeker(buf), blocks)
	require.NoError(t, Format(disk))

	inodeBlocks := inodeBlocksFor(blocks)
	meta := superblock{
		Magic:       MagicNumber,
		Blocks:      blocks,
		InodeBlocks: inodeBlocks,
		Inodes:      inodeBlocks * InodesPerBlock,
	}

	raw := make([]byte, BlockSize)
	require.NoError(t, disk.Read(1, raw))
	inodes := decodeInodeBlock(raw)

	const sharedBlock = 10
	inodes[0] = rawInode{Valid: 1, Size: 1, Direct: [PointersPerInode]uint32{sharedBlock}}
	inodes[1] = rawInode{Valid: 1, Size: 1, Direct: [PointersPerInode]uint32{sharedBlock}}
	require.NoError(t, disk.Write(1, encodeInodeBlock(inodes)))

	freeBlocks, freeInodes, warnings := scanInodeTable(disk, meta)
	require.Error(t, warnings, "a block owned by two inodes must be reported")
	require.True(t, freeBlocks.inUse(sharedBlock), "the contested block stays marked in-use")
	require.True(t, freeInodes.inUse(0))
	require.True(t, freeInodes.inUse(1))
}

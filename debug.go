package simplefs

import (
	"fmt"
	"io"
)

// Debug reads disk directly — it does not require (or use) a mounted
// FileSystem — and writes a human-readable dump of the superblock and every
// valid inode to w. It never writes to disk.
func Debug(w io.Writer, disk *Disk) error {
	buf := make([]byte, BlockSize)
	if err := disk.Read(0, buf); err != nil {
		return err
	}

	meta := decodeSuperblock(buf)
	if meta.Magic != MagicNumber {
		return ErrFormat
	}

	fmt.Fprintf(w, "SuperBlock:\n")
	fmt.Fprintf(w, "    %d blocks\n", meta.Blocks)
	fmt.Fprintf(w, "    %d inode blocks\n", meta.InodeBlocks)
	fmt.Fprintf(w, "    %d inodes\n", meta.Inodes)

	for blockIndex := uint32(0); blockIndex < meta.InodeBlocks; blockIndex++ {
		if err := disk.Read(1+blockIndex, buf); err != nil {
			return err
		}

		for slot, inode := range decodeInodeBlock(buf) {
			if !inode.isValid() {
				continue
			}
			inumber := blockIndex*InodesPerBlock + uint32(slot)

			fmt.Fprintf(w, "Inode %d:\n", inumber)
			fmt.Fprintf(w, "    size: %d bytes\n", inode.Size)
			fmt.Fprintf(w, "    direct blocks: %v\n", nonzero(inode.Direct[:]))

			if inode.Indirect == 0 {
				continue
			}
			fmt.Fprintf(w, "    indirect block: %d\n", inode.Indirect)

			ptrBuf := make([]byte, BlockSize)
			if err := disk.Read(inode.Indirect, ptrBuf); err != nil {
				return err
			}
			pointers := decodePointerBlock(ptrBuf)
			fmt.Fprintf(w, "    indirect data blocks: %v\n", nonzero(pointers[:]))
		}
	}

	return nil
}

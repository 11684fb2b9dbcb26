package simplefs

// This file implements the block-pointer tree walker: translating a
// 0-based file-block index into a data-block number, optionally allocating
// new blocks (and the indirect block itself) along the way. Both Read and
// Write share this single resolver; Read calls it with allocate=false and
// treats an unallocated block inside the live size range as corruption,
// Write calls it with allocate=true and treats exhaustion of the free-block
// bitmap as the point where it must stop and return a short count.

// resolveBlock maps file-block index fileBlock to its backing data-block
// number.
//
//   - If allocate is false, an unallocated slot is reported by returning
//     (0, nil): the caller decides what that means.
//   - If allocate is true, an unallocated slot is filled from fs.freeBlocks
//     and inode (and, for indirect slots, the on-disk indirect block) is
//     updated to match. ErrNoSpace is returned if no free block remains.
//   - A fileBlock beyond what the direct pointers plus one indirect block
//     can address returns ErrNoSpace unconditionally: the file has hit
//     MaxFileSize.
func (fs *FileSystem) resolveBlock(inode *rawInode, fileBlock uint32, allocate bool) (uint32, error) {
	if fileBlock < PointersPerInode {
		return fs.resolveDirect(inode, fileBlock, allocate)
	}

	slot := fileBlock - PointersPerInode
	if slot >= PointersPerBlock {
		return 0, ErrNoSpace.WithMessage("file-block index beyond maximum file size")
	}
	return fs.resolveIndirect(inode, slot, allocate)
}

func (fs *FileSystem) resolveDirect(inode *rawInode, index uint32, allocate bool) (uint32, error) {
	if inode.Direct[index] != 0 {
		return inode.Direct[index], nil
	}
	if !allocate {
		return 0, nil
	}

	block, ok := fs.freeBlocks.allocate()
	if !ok {
		return 0, ErrNoSpace.WithMessage("no free data blocks")
	}
	inode.Direct[index] = block
	return block, nil
}

func (fs *FileSystem) resolveIndirect(inode *rawInode, slot uint32, allocate bool) (uint32, error) {
	if inode.Indirect == 0 {
		if !allocate {
			return 0, nil
		}

		indirectBlock, ok := fs.freeBlocks.allocate()
		if !ok {
			return 0, ErrNoSpace.WithMessage("no free data blocks for indirect block")
		}
		if err := fs.disk.Write(indirectBlock, make([]byte, BlockSize)); err != nil {
			fs.freeBlocks.markFree(indirectBlock)
			return 0, err
		}
		inode.Indirect = indirectBlock
	}

	buf := make([]byte, BlockSize)
	if err := fs.disk.Read(inode.Indirect, buf); err != nil {
		return 0, err
	}
	pointers := decodePointerBlock(buf)

	if pointers[slot] != 0 {
		return pointers[slot], nil
	}
	if !allocate {
		return 0, nil
	}

	block, ok := fs.freeBlocks.allocate()
	if !ok {
		return 0, ErrNoSpace.WithMessage("no free data blocks")
	}
	pointers[slot] = block
	if err := fs.disk.Write(inode.Indirect, encodePointerBlock(pointers)); err != nil {
		fs.freeBlocks.markFree(block)
		return 0, err
	}
	return block, nil
}

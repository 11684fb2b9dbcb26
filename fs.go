package simplefs

import (
	"errors"
	"log"
)

// FileSystem is the public API: format, mount, unmount, and the per-file
// operations create/remove/stat/read/write. It owns the in-memory free-block
// and free-inode bitmaps for as long as a disk is mounted, and borrows (does
// not own) the Disk itself.
type FileSystem struct {
	disk       *Disk
	meta       superblock
	freeBlocks *allocator
	freeInodes *allocator
}

// NewFileSystem returns an unmounted FileSystem ready to have a disk mounted
// onto it.
func NewFileSystem() *FileSystem {
	return &FileSystem{}
}

// Format writes a fresh superblock and zeroes every other block on disk. It
// fails if disk is currently mounted. After Format returns successfully,
// every inode is invalid and every data block is free.
func Format(disk *Disk) error {
	if disk.Mounted() {
		return ErrSanity.WithMessage("cannot format a mounted disk")
	}

	blocks := disk.Blocks()
	inodeBlocks := inodeBlocksFor(blocks)
	meta := superblock{
		Magic:       MagicNumber,
		Blocks:      blocks,
		InodeBlocks: inodeBlocks,
		Inodes:      inodeBlocks * InodesPerBlock,
	}

	if err := disk.Write(0, encodeSuperblock(meta)); err != nil {
		return err
	}

	zero := make([]byte, BlockSize)
	for b := uint32(1); b < blocks; b++ {
		if err := disk.Write(b, zero); err != nil {
			return err
		}
	}
	return nil
}

// Mount reads the superblock from disk, rejects it if the magic number
// doesn't match, and rebuilds the free-block and free-inode bitmaps with a
// single scan of the inode table. It fails if disk is already mounted.
func (fs *FileSystem) Mount(disk *Disk) error {
	if disk.Mounted() {
		return ErrSanity.WithMessage("disk already mounted")
	}

	buf := make([]byte, BlockSize)
	if err := disk.Read(0, buf); err != nil {
		return err
	}

	meta := decodeSuperblock(buf)
	if meta.Magic != MagicNumber {
		return ErrFormat
	}

	freeBlocks, freeInodes, warnings := scanInodeTable(disk, meta)
	if freeBlocks == nil {
		// The inode table could not be read: warnings is that I/O error, not
		// a corruption report, and the disk stays unmounted.
		return warnings
	}
	if warnings != nil {
		log.Printf(
			"simplefs: mount: corruption detected while scanning inode table: %s",
			warnings,
		)
	}

	fs.disk = disk
	fs.meta = meta
	fs.freeBlocks = freeBlocks
	fs.freeInodes = freeInodes
	disk.setMounted(true)
	return nil
}

// Unmount releases the in-memory bitmaps and detaches the disk. It is
// idempotent: calling it on an already-unmounted FileSystem is a no-op.
func (fs *FileSystem) Unmount() error {
	if fs.disk == nil {
		return nil
	}
	fs.disk.setMounted(false)
	fs.disk = nil
	fs.freeBlocks = nil
	fs.freeInodes = nil
	fs.meta = superblock{}
	return nil
}

// inodeLocation maps an inode number to the inode block that holds it and
// its slot within that block.
func (fs *FileSystem) inodeLocation(inumber uint32) (block uint32, slot uint32) {
	return 1 + inumber/InodesPerBlock, inumber % InodesPerBlock
}

func (fs *FileSystem) loadInodeBlock(inumber uint32) ([InodesPerBlock]rawInode, uint32, uint32, error) {
	block, slot := fs.inodeLocation(inumber)
	buf := make([]byte, BlockSize)
	if err := fs.disk.Read(block, buf); err != nil {
		return [InodesPerBlock]rawInode{}, block, slot, err
	}
	return decodeInodeBlock(buf), block, slot, nil
}

// Create reserves the lowest-numbered free inode, initializes it to empty,
// and returns its number. It fails with ErrNoSpace if every inode is in use.
// If the disk write fails, the free-inode bitmap is left untouched so the
// filesystem's observable state doesn't change.
func (fs *FileSystem) Create() (uint32, error) {
	if fs.disk == nil {
		return 0, ErrSanity.WithMessage("filesystem not mounted")
	}

	inumber, ok := fs.freeInodes.findFree()
	if !ok {
		return 0, ErrNoSpace.WithMessage("no free inodes")
	}

	inodes, block, slot, err := fs.loadInodeBlock(inumber)
	if err != nil {
		return 0, err
	}

	inodes[slot] = rawInode{Valid: 1}
	if err := fs.disk.Write(block, encodeInodeBlock(inodes)); err != nil {
		return 0, err
	}

	fs.freeInodes.markUsed(inumber)
	return inumber, nil
}

// Remove invalidates inode inumber and releases every data block (and
// indirect block) it reached. A disk failure partway through leaves the
// on-disk inode exactly as it was — either fully invalidated or untouched,
// never half-freed — though the in-memory bitmaps may already reflect blocks
// as free; the next mount's scan would rebuild them correctly regardless.
func (fs *FileSystem) Remove(inumber uint32) error {
	if fs.disk == nil {
		return ErrSanity.WithMessage("filesystem not mounted")
	}
	if inumber >= fs.meta.Inodes {
		return ErrInvalidInode.WithMessage("inode number out of range")
	}

	inodes, block, slot, err := fs.loadInodeBlock(inumber)
	if err != nil {
		return err
	}

	inode := inodes[slot]
	if !inode.isValid() {
		return ErrInvalidInode.WithMessage("inode is already free")
	}

	for _, dataBlock := range inode.Direct {
		if dataBlock != 0 {
			fs.freeBlocks.markFree(dataBlock)
		}
	}
	if inode.Indirect != 0 {
		ptrBuf := make([]byte, BlockSize)
		if err := fs.disk.Read(inode.Indirect, ptrBuf); err == nil {
			for _, dataBlock := range decodePointerBlock(ptrBuf) {
				if dataBlock != 0 {
					fs.freeBlocks.markFree(dataBlock)
				}
			}
		}
		fs.freeBlocks.markFree(inode.Indirect)
	}

	inodes[slot] = rawInode{}
	if err := fs.disk.Write(block, encodeInodeBlock(inodes)); err != nil {
		return err
	}

	fs.freeInodes.markFree(inumber)
	return nil
}

// Stat returns the size in bytes of inode inumber.
func (fs *FileSystem) Stat(inumber uint32) (int64, error) {
	if fs.disk == nil {
		return 0, ErrSanity.WithMessage("filesystem not mounted")
	}
	if inumber >= fs.meta.Inodes {
		return 0, ErrInvalidInode.WithMessage("inode number out of range")
	}

	inodes, _, slot, err := fs.loadInodeBlock(inumber)
	if err != nil {
		return 0, err
	}
	if !inodes[slot].isValid() {
		return 0, ErrInvalidInode
	}
	return int64(inodes[slot].Size), nil
}

// Read copies min(length, size-offset) bytes of inode inumber starting at
// offset into buf, and returns how many bytes were copied. Reading an empty
// range (offset == size) returns (0, nil). An unallocated data block inside
// the inode's live size range means the filesystem is corrupt and is
// reported as ErrCorruption.
func (fs *FileSystem) Read(inumber uint32, buf []byte, length, offset int) (int, error) {
	if fs.disk == nil {
		return 0, ErrSanity.WithMessage("filesystem not mounted")
	}
	if inumber >= fs.meta.Inodes {
		return 0, ErrInvalidInode.WithMessage("inode number out of range")
	}

	inodes, _, slot, err := fs.loadInodeBlock(inumber)
	if err != nil {
		return 0, err
	}
	inode := inodes[slot]
	if !inode.isValid() {
		return 0, ErrInvalidInode
	}
	if offset > int(inode.Size) {
		return 0, ErrSanity.WithMessage("offset beyond end of file")
	}

	end := offset + length
	if end > int(inode.Size) {
		end = int(inode.Size)
	}
	if end <= offset {
		return 0, nil
	}

	totalRead := 0
	pos := offset
	block := make([]byte, BlockSize)
	for pos < end {
		fileBlock := uint32(pos / BlockSize)
		offsetInBlock := pos % BlockSize
		chunk := BlockSize - offsetInBlock
		if pos+chunk > end {
			chunk = end - pos
		}

		dataBlock, err := fs.resolveBlock(&inode, fileBlock, false)
		if err != nil {
			return 0, err
		}
		if dataBlock == 0 {
			return 0, ErrCorruption.WithMessage("file-block within size has no backing data block")
		}

		if err := fs.disk.Read(dataBlock, block); err != nil {
			return totalRead, err
		}
		copy(buf[totalRead:], block[offsetInBlock:offsetInBlock+chunk])

		totalRead += chunk
		pos += chunk
	}
	return totalRead, nil
}

// Write writes length bytes from buf into inode inumber starting at offset,
// allocating data blocks (and the indirect block, on first use past the
// direct pointers) as needed. If the free-block bitmap is exhausted, or the
// file would grow past MaxFileSize, Write stops early, updates the inode's
// size to reflect what it actually wrote, and returns that short count with
// a nil error. A disk-write failure mid-way returns the count of bytes
// durably written before the failure, along with the error.
func (fs *FileSystem) Write(inumber uint32, buf []byte, length, offset int) (int, error) {
	if fs.disk == nil {
		return 0, ErrSanity.WithMessage("filesystem not mounted")
	}
	if inumber >= fs.meta.Inodes {
		return 0, ErrInvalidInode.WithMessage("inode number out of range")
	}

	inodes, block, slot, err := fs.loadInodeBlock(inumber)
	if err != nil {
		return 0, err
	}
	inode := inodes[slot]
	if !inode.isValid() {
		return 0, ErrInvalidInode
	}

	if offset >= MaxFileSize {
		return 0, nil
	}
	end := offset + length
	if end > MaxFileSize {
		end = MaxFileSize
	}

	written := 0
	pos := offset
	writeErr := error(nil)
	data := make([]byte, BlockSize)

loop:
	for pos < end {
		fileBlock := uint32(pos / BlockSize)
		offsetInBlock := pos % BlockSize
		chunk := BlockSize - offsetInBlock
		if pos+chunk > end {
			chunk = end - pos
		}

		dataBlock, err := fs.resolveBlock(&inode, fileBlock, true)
		if err != nil {
			// Bitmap exhaustion isn't a failure of the call as a whole —
			// report what we managed as a short count. Anything else (a
			// disk I/O failure while allocating or writing the indirect
			// block) is a genuine error and must be reported as one.
			if !errors.Is(err, ErrNoSpace) {
				writeErr = err
			}
			break loop
		}

		if chunk < BlockSize {
			if err := fs.disk.Read(dataBlock, data); err != nil {
				writeErr = err
				break loop
			}
		}
		copy(data[offsetInBlock:offsetInBlock+chunk], buf[written:written+chunk])

		if err := fs.disk.Write(dataBlock, data); err != nil {
			writeErr = err
			break loop
		}

		written += chunk
		pos += chunk
	}

	newSize := offset + written
	if newSize > int(inode.Size) {
		inode.Size = uint32(newSize)
	}
	inodes[slot] = inode
	if err := fs.disk.Write(block, encodeInodeBlock(inodes)); err != nil {
		if writeErr == nil {
			writeErr = err
		}
	}

	return written, writeErr
}

// scanInodeTable implements the mount-time bitmap construction described in
// the bitmap construction component: a single pass over the inode table that
// rebuilds both free-block and free-inode bitmaps from whatever is durably
// on disk. A data block reachable from two distinct valid inodes is a
// corruption signal; the scan still completes and leaves the block marked
// in-use, collecting every such signal into the returned error instead of
// failing outright. If an inode block cannot be read, it returns nil bitmaps
// and that read error instead.
func scanInodeTable(disk *Disk, meta superblock) (*allocator, *allocator, error) {
	freeBlocks := newAllocator(meta.Blocks)
	for b := uint32(0); b < 1+meta.InodeBlocks && b < meta.Blocks; b++ {
		freeBlocks.markUsed(b)
	}
	freeInodes := newAllocator(meta.Inodes)

	owner := make(map[uint32]uint32, meta.Inodes)
	var warnings error

	claim := func(dataBlock, inumber uint32) {
		if dataBlock == 0 {
			return
		}
		if existing, duplicate := owner[dataBlock]; duplicate {
			warnings = appendWarning(warnings, dataBlock, existing, inumber)
		} else {
			owner[dataBlock] = inumber
		}
		freeBlocks.markUsed(dataBlock)
	}

	buf := make([]byte, BlockSize)
	for blockIndex := uint32(0); blockIndex < meta.InodeBlocks; blockIndex++ {
		if err := disk.Read(1+blockIndex, buf); err != nil {
			return nil, nil, err
		}

		for slot, inode := range decodeInodeBlock(buf) {
			if !inode.isValid() {
				continue
			}
			inumber := blockIndex*InodesPerBlock + uint32(slot)
			freeInodes.markUsed(inumber)

			for _, dataBlock := range inode.Direct {
				claim(dataBlock, inumber)
			}
			if inode.Indirect != 0 {
				claim(inode.Indirect, inumber)

				ptrBuf := make([]byte, BlockSize)
				if err := disk.Read(inode.Indirect, ptrBuf); err == nil {
					for _, dataBlock := range decodePointerBlock(ptrBuf) {
						claim(dataBlock, inumber)
					}
				}
			}
		}
	}

	return freeBlocks, freeInodes, warnings
}

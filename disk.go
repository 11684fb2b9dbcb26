package simplefs

import (
	"fmt"
	"io"
	"os"
)

// Disk is a fixed-size, block-addressable random-access I/O stream: a thin
// wrapper over a host file (or, in tests, an in-memory buffer) that only
// allows whole-block reads and writes. It tracks whether a FileSystem
// currently has it mounted, which is the only mutual-exclusion mechanism a
// single-threaded filesystem needs.
type Disk struct {
	stream  io.ReadWriteSeeker
	blocks  uint32
	mounted bool
	reads   uint64
	writes  uint64
}

// Open opens or creates the backing file at path and truncates it to exactly
// blocks*BlockSize bytes. The returned Disk starts out unmounted with its
// read/write counters at zero.
func Open(path string, blocks uint32) (*Disk, error) {
	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, err
	}
	if err := file.Truncate(int64(blocks) * BlockSize); err != nil {
		file.Close()
		return nil, err
	}
	return NewFromStream(file, blocks), nil
}

// NewFromStream wraps an already-open, already-sized stream as a Disk. It
// exists so tests (and anything else that doesn't want a real file) can back
// a Disk with an in-memory buffer instead of calling Open.
func NewFromStream(stream io.ReadWriteSeeker, blocks uint32) *Disk {
	return &Disk{stream: stream, blocks: blocks}
}

// Close releases the underlying stream, if it knows how to close itself.
// Read/write counters are observational only and are not reset.
func (d *Disk) Close() error {
	if closer, ok := d.stream.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// Blocks returns the total number of addressable blocks on the disk.
func (d *Disk) Blocks() uint32 { return d.blocks }

// Mounted reports whether a FileSystem currently has this disk mounted.
func (d *Disk) Mounted() bool { return d.mounted }

// Reads returns the cumulative number of blocks read since the disk was
// opened. Observational only.
func (d *Disk) Reads() uint64 { return d.reads }

// Writes returns the cumulative number of blocks written since the disk was
// opened. Observational only.
func (d *Disk) Writes() uint64 { return d.writes }

func (d *Disk) setMounted(mounted bool) { d.mounted = mounted }

// sanityCheck is the gate applied on every Read and Write: the disk must be
// open, the block must be in range, and the buffer must be able to hold a
// full block. Note this deliberately does NOT look at d.reads/d.writes —
// those are cumulative counters, not an in-flight guard, and gating on them
// would refuse every I/O after the first.
func (d *Disk) sanityCheck(block uint32, buf []byte) Error {
	if d == nil || d.stream == nil {
		return ErrSanity.WithMessage("disk is not open")
	}
	if block >= d.blocks {
		return ErrSanity.WithMessage(
			fmt.Sprintf("block %d out of range [0, %d)", block, d.blocks))
	}
	if buf == nil || len(buf) < BlockSize {
		return ErrSanity.WithMessage("buffer smaller than one block")
	}
	return nil
}

func (d *Disk) seekToBlock(block uint32) error {
	_, err := d.stream.Seek(int64(block)*BlockSize, io.SeekStart)
	return err
}

// Read fills buf[:BlockSize] with the contents of block. A short read is
// reported as ErrDiskIO and is fatal to the calling operation: simplefs
// never retries a failed block I/O.
func (d *Disk) Read(block uint32, buf []byte) error {
	if err := d.sanityCheck(block, buf); err != nil {
		return err
	}
	if err := d.seekToBlock(block); err != nil {
		return ErrDiskIO.WrapError(err)
	}

	n, err := io.ReadFull(d.stream, buf[:BlockSize])
	d.reads++
	if err != nil || n < BlockSize {
		return ErrDiskIO.WithMessage(fmt.Sprintf("short read of block %d", block))
	}
	return nil
}

// Write stores buf[:BlockSize] as the contents of block. A short write is
// reported as ErrDiskIO and is fatal to the calling operation.
func (d *Disk) Write(block uint32, buf []byte) error {
	if err := d.sanityCheck(block, buf); err != nil {
		return err
	}
	if err := d.seekToBlock(block); err != nil {
		return ErrDiskIO.WrapError(err)
	}

	n, err := d.stream.Write(buf[:BlockSize])
	d.writes++
	if err != nil || n < BlockSize {
		return ErrDiskIO.WithMessage(fmt.Sprintf("short write of block %d", block))
	}
	return nil
}

package simplefs

import (
	"bytes"
	"encoding/binary"

	"github.com/noxer/bytewriter"
)

// This file implements the "block view": the four ways a single BlockSize
// buffer is interpreted on disk — superblock, inode array, pointer array, or
// raw bytes. There's no behavior here beyond encoding and decoding; the raw
// byte interpretation needs no helpers at all since data blocks are passed
// through Disk.Read/Disk.Write unchanged.

// superblock is the on-disk layout of block 0.
type superblock struct {
	Magic       uint32
	Blocks      uint32
	InodeBlocks uint32
	Inodes      uint32
}

// rawInode is the on-disk, fixed 32-byte layout of a single inode record.
// valid is stored as a uint32 rather than a bool to keep the record's field
// widths uniform, matching the wire format in spec §6.
type rawInode struct {
	Valid    uint32
	Size     uint32
	Direct   [PointersPerInode]uint32
	Indirect uint32
}

func (inode rawInode) isValid() bool {
	return inode.Valid != 0
}

// encodeBlock serializes a fixed-size value into a fresh, zero-filled
// BlockSize buffer. Values smaller than a block (the superblock) are left
// zero-padded past their encoded length; values that exactly fill a block
// (an inode array, a pointer array) use every byte.
func encodeBlock(v any) []byte {
	buf := make([]byte, BlockSize)
	w := bytewriter.New(buf)
	// Fixed-size values never fail to encode into a big-enough buffer.
	_ = binary.Write(w, binary.LittleEndian, v)
	return buf
}

func decodeBlock(buf []byte, v any) {
	_ = binary.Read(bytes.NewReader(buf), binary.LittleEndian, v)
}

func encodeSuperblock(sb superblock) []byte {
	return encodeBlock(sb)
}

func decodeSuperblock(buf []byte) superblock {
	var sb superblock
	decodeBlock(buf, &sb)
	return sb
}

func encodeInodeBlock(inodes [InodesPerBlock]rawInode) []byte {
	return encodeBlock(inodes)
}

func decodeInodeBlock(buf []byte) [InodesPerBlock]rawInode {
	var inodes [InodesPerBlock]rawInode
	decodeBlock(buf, &inodes)
	return inodes
}

func encodePointerBlock(pointers [PointersPerBlock]uint32) []byte {
	return encodeBlock(pointers)
}

func decodePointerBlock(buf []byte) [PointersPerBlock]uint32 {
	var pointers [PointersPerBlock]uint32
	decodeBlock(buf, &pointers)
	return pointers
}

// nonzero returns the entries of pointers that aren't the "no block" sentinel
// 0, in order. It's used only by Debug to print the populated slots of a
// direct or indirect pointer vector.
func nonzero(pointers []uint32) []uint32 {
	out := make([]uint32, 0, len(pointers))
	for _, p := range pointers {
		if p != 0 {
			out = append(out, p)
		}
	}
	return out
}

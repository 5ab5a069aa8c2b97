// Package imageasset decodes and encodes the binary image-asset blob
// format spec.md §6 describes: a 4-byte magic, a fixed header, and either
// raw or ZSTD-compressed pixel data. It is the external collaborator
// format the Texture factory consumes when loading art assets from disk,
// as opposed to procedurally generated textures created directly through
// hal.TextureDescriptor.
package imageasset

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
)

// Magic is the 4-byte identifier every well-formed blob starts with.
const Magic = "ARIM"

// PixelFormat enumerates the formats an image asset's pixel data may be
// stored in, spec.md §6.
type PixelFormat uint8

const (
	FormatR8 PixelFormat = iota
	FormatRG8
	FormatRGB8
	FormatRGBA8
	FormatR32F
	FormatRG32F
	FormatRGB32F
	FormatRGBA32F
	FormatBC5
	FormatBC7
)

// ColorSpace selects how the stored pixel values should be interpreted on
// sampling.
type ColorSpace uint8

const (
	ColorSpaceSRGBEncoded ColorSpace = iota
	ColorSpaceData
)

// Asset is the decoded in-memory form of an image asset blob.
type Asset struct {
	Width, Height, Depth uint32
	Format               PixelFormat
	ColorSpace           ColorSpace
	PixelData            []byte // always decompressed on return from Decode
}

const headerFixedSize = 4 + 4*3 + 1 + 1 + 1 + 4 + 4 // magic + w/h/d + format + colorSpace + isCompressed + uncompressedSize + compressedSize

// Encode serializes asset into the binary blob format. When compress is
// true, PixelData is ZSTD-compressed before being written and the
// isCompressed/compressedSize/uncompressedSize header fields are set
// accordingly.
func Encode(asset Asset, compress bool) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(Magic)
	writeU32(&buf, asset.Width)
	writeU32(&buf, asset.Height)
	writeU32(&buf, asset.Depth)
	buf.WriteByte(byte(asset.Format))
	buf.WriteByte(byte(asset.ColorSpace))

	payload := asset.PixelData
	uncompressedSize := uint32(len(payload))
	isCompressed := byte(0)
	if compress {
		enc, err := zstd.NewWriter(nil)
		if err != nil {
			return nil, fmt.Errorf("imageasset: create zstd encoder: %w", err)
		}
		payload = enc.EncodeAll(asset.PixelData, nil)
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("imageasset: close zstd encoder: %w", err)
		}
		isCompressed = 1
	}

	buf.WriteByte(isCompressed)
	writeU32(&buf, uncompressedSize)
	writeU32(&buf, uint32(len(payload)))
	buf.Write(payload)
	return buf.Bytes(), nil
}

// Decode parses a binary image-asset blob, decompressing its pixel data
// (if compressed) so Asset.PixelData always holds raw pixels.
func Decode(blob []byte) (Asset, error) {
	if len(blob) < headerFixedSize {
		return Asset{}, fmt.Errorf("imageasset: blob too short (%d bytes)", len(blob))
	}
	r := bytes.NewReader(blob)

	magic := make([]byte, 4)
	if _, err := io.ReadFull(r, magic); err != nil {
		return Asset{}, err
	}
	if string(magic) != Magic {
		return Asset{}, fmt.Errorf("imageasset: bad magic %q, want %q", magic, Magic)
	}

	var a Asset
	var err error
	if a.Width, err = readU32(r); err != nil {
		return Asset{}, err
	}
	if a.Height, err = readU32(r); err != nil {
		return Asset{}, err
	}
	if a.Depth, err = readU32(r); err != nil {
		return Asset{}, err
	}
	formatByte, err := r.ReadByte()
	if err != nil {
		return Asset{}, err
	}
	a.Format = PixelFormat(formatByte)
	csByte, err := r.ReadByte()
	if err != nil {
		return Asset{}, err
	}
	a.ColorSpace = ColorSpace(csByte)

	isCompressedByte, err := r.ReadByte()
	if err != nil {
		return Asset{}, err
	}
	isCompressed := isCompressedByte != 0

	uncompressedSize, err := readU32(r)
	if err != nil {
		return Asset{}, err
	}
	compressedSize, err := readU32(r)
	if err != nil {
		return Asset{}, err
	}

	payload := make([]byte, compressedSize)
	if _, err := io.ReadFull(r, payload); err != nil {
		return Asset{}, fmt.Errorf("imageasset: short pixel data: %w", err)
	}

	if !isCompressed {
		a.PixelData = payload
		return a, nil
	}

	dec, err := zstd.NewReader(nil)
	if err != nil {
		return Asset{}, fmt.Errorf("imageasset: create zstd decoder: %w", err)
	}
	defer dec.Close()
	raw, err := dec.DecodeAll(payload, make([]byte, 0, uncompressedSize))
	if err != nil {
		return Asset{}, fmt.Errorf("imageasset: zstd decode: %w", err)
	}
	if uint32(len(raw)) != uncompressedSize {
		return Asset{}, fmt.Errorf("imageasset: decompressed size %d != header %d", len(raw), uncompressedSize)
	}
	a.PixelData = raw
	return a, nil
}

func writeU32(buf *bytes.Buffer, v uint32) {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	buf.Write(tmp[:])
}

func readU32(r *bytes.Reader) (uint32, error) {
	var tmp [4]byte
	if _, err := io.ReadFull(r, tmp[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(tmp[:]), nil
}

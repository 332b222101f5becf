// Package memory provides the 64 KiB address space image a conversion job operates on.
package memory

import (
	"fmt"
)

// Size of the addressable space, addresses are $0000-$FFFF.
const Size = 0x10000

// BoundsError indicates an access or range outside the 64 KiB space or
// outside its declared window.
type BoundsError struct {
	Start uint16
	End   int
}

func (e BoundsError) Error() string {
	return fmt.Sprintf("range $%04X-$%04X outside the address space", e.Start, e.End)
}

// Image is a 64 KiB memory image. It is exclusively owned by one conversion
// job for its whole lifetime, there is no sharing between jobs.
type Image struct {
	data [Size]byte
}

// New returns a new zeroed memory image.
func New() *Image {
	return &Image{}
}

// Byte returns the byte at the given address.
func (img *Image) Byte(address uint16) byte {
	return img.data[address]
}

// SetByte sets the byte at the given address.
func (img *Image) SetByte(address uint16, value byte) {
	img.data[address] = value
}

// Word returns the little-endian word at the given address.
// Reading a word at $FFFF is an error as the high byte would wrap.
func (img *Image) Word(address uint16) (uint16, error) {
	if address == Size-1 {
		return 0, BoundsError{Start: address, End: int(address) + 1}
	}
	low := uint16(img.data[address])
	high := uint16(img.data[address+1])
	return high<<8 | low, nil
}

// SetWord writes a little-endian word at the given address.
func (img *Image) SetWord(address uint16, value uint16) error {
	if address == Size-1 {
		return BoundsError{Start: address, End: int(address) + 1}
	}
	img.data[address] = byte(value)
	img.data[address+1] = byte(value >> 8)
	return nil
}

// LoadPRG copies a raw program into the image. The first two bytes are the
// little-endian load address, the rest is the payload. It returns the load
// address and the address of the first byte after the payload.
func (img *Image) LoadPRG(data []byte) (loadAddress uint16, end int, err error) {
	if len(data) < 3 {
		return 0, 0, fmt.Errorf("program of %d bytes is too small", len(data))
	}

	loadAddress = uint16(data[1])<<8 | uint16(data[0])
	end, err = img.Load(loadAddress, data[2:])
	if err != nil {
		return 0, 0, err
	}
	return loadAddress, end, nil
}

// Load copies a payload to the given address and returns the address of the
// first byte after it. A payload running past $FFFF is an error, not a
// truncation.
func (img *Image) Load(address uint16, payload []byte) (int, error) {
	last := int(address) + len(payload)
	if last > Size {
		return 0, BoundsError{Start: address, End: last - 1}
	}
	copy(img.data[address:], payload)
	return last, nil
}

// CopyRange returns a copy of the bytes in [start, end).
func (img *Image) CopyRange(start uint16, end int) ([]byte, error) {
	if err := img.checkRange(start, end); err != nil {
		return nil, err
	}
	buf := make([]byte, end-int(start))
	copy(buf, img.data[start:end])
	return buf, nil
}

// ExportRange exports the bytes in [start, end) in raw program framing,
// prefixed with the 2-byte little-endian start address. The returned slice
// never aliases the image storage.
func (img *Image) ExportRange(start uint16, end int) ([]byte, error) {
	if err := img.checkRange(start, end); err != nil {
		return nil, err
	}
	buf := make([]byte, 2, 2+end-int(start))
	buf[0] = byte(start)
	buf[1] = byte(start >> 8)
	return append(buf, img.data[start:end]...), nil
}

// Fill sets every byte in [start, end) to the given value.
func (img *Image) Fill(start uint16, end int, value byte) error {
	if err := img.checkRange(start, end); err != nil {
		return err
	}
	for i := int(start); i < end; i++ {
		img.data[i] = value
	}
	return nil
}

// Move copies length bytes from src to dst and zero-fills the part of the
// source range that the destination does not cover. Overlapping ranges are
// handled.
func (img *Image) Move(src, dst uint16, length int) error {
	if err := img.checkRange(src, int(src)+length); err != nil {
		return err
	}
	if err := img.checkRange(dst, int(dst)+length); err != nil {
		return err
	}

	copy(img.data[dst:int(dst)+length], img.data[src:int(src)+length])

	for i := int(src); i < int(src)+length; i++ {
		if i >= int(dst) && i < int(dst)+length {
			continue
		}
		img.data[i] = 0
	}
	return nil
}

func (img *Image) checkRange(start uint16, end int) error {
	if end > Size || int(start) >= end {
		return BoundsError{Start: start, End: end - 1}
	}
	return nil
}

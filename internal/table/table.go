// Package table transcodes player data tables between the physical layouts
// used by different player implementations.
package table

import (
	"fmt"

	"github.com/retroenv/sidgoreloc/internal/memory"
)

// Layout describes the physical arrangement of a table.
type Layout uint8

const (
	RowMajor Layout = iota
	ColumnMajor
	InterleavedPairs
	SplitArrays
)

func (l Layout) String() string {
	switch l {
	case RowMajor:
		return "row-major"
	case ColumnMajor:
		return "column-major"
	case InterleavedPairs:
		return "interleaved-pairs"
	case SplitArrays:
		return "split-arrays"
	default:
		return fmt.Sprintf("layout(%d)", uint8(l))
	}
}

// SizeMismatchError indicates that the declared table dimensions disagree
// with the bytes available at the source address. It is raised before any
// byte is written.
type SizeMismatchError struct {
	Address  uint16
	Declared int
	Have     int
}

func (e SizeMismatchError) Error() string {
	return fmt.Sprintf("table at $%04X declares %d bytes but only %d are available",
		e.Address, e.Declared, e.Have)
}

// Descriptor describes one logical table and its physical layout.
type Descriptor struct {
	Address    uint16
	Rows       int
	Cols       int
	EntryWidth int
	Layout     Layout
}

// Size returns the total byte size of the table. It is identical before and
// after transcoding, only the physical arrangement changes.
func (d Descriptor) Size() int {
	return d.Rows * d.Cols * d.EntryWidth
}

func (d Descriptor) validate() error {
	if d.Rows < 1 || d.Cols < 1 || d.EntryWidth < 1 {
		return fmt.Errorf("invalid table dimensions %dx%dx%d", d.Rows, d.Cols, d.EntryWidth)
	}
	size := d.Size()
	have := memory.Size - int(d.Address)
	if size > have {
		return SizeMismatchError{Address: d.Address, Declared: size, Have: have}
	}
	return nil
}

// Transcode converts the table at desc.Address into the target layout at the
// destination address, in place in the image. The source bytes are read into
// a scratch buffer first so overlapping source and destination windows are
// safe. Stride is the distance between the two field runs for SplitArrays,
// it may include padding required by the consuming code and is ignored by
// the row/column conversions.
func Transcode(img *memory.Image, desc Descriptor, target Layout, destination uint16, stride int) error {
	if err := desc.validate(); err != nil {
		return err
	}

	switch {
	case desc.Layout == RowMajor && target == ColumnMajor,
		desc.Layout == ColumnMajor && target == RowMajor:
		return transposeMatrix(img, desc, destination)

	case desc.Layout == InterleavedPairs && target == SplitArrays:
		return splitPairs(img, desc, destination, stride)

	case desc.Layout == SplitArrays && target == InterleavedPairs:
		return mergePairs(img, desc, destination, stride)

	case desc.Layout == target:
		return copyTable(img, desc, destination)

	default:
		return fmt.Errorf("unsupported transcoding %s to %s", desc.Layout, target)
	}
}

// transposeMatrix rewrites a rows x cols matrix of fixed width entries
// between row-major and column-major order. Element (r,c) lives at
// base + r*cols*width + c*width in row-major order and at
// base + c*rows*width + r*width in column-major order. The transform is
// self-inverse.
func transposeMatrix(img *memory.Image, desc Descriptor, destination uint16) error {
	src, err := img.CopyRange(desc.Address, int(desc.Address)+desc.Size())
	if err != nil {
		return err
	}
	if err := checkDestination(destination, desc.Size()); err != nil {
		return err
	}

	width := desc.EntryWidth
	for r := range desc.Rows {
		for c := range desc.Cols {
			rowMajor := (r*desc.Cols + c) * width
			colMajor := (c*desc.Rows + r) * width

			// element (r,c) is read under the source addressing rule and
			// written under the destination rule
			from, to := rowMajor, colMajor
			if desc.Layout == ColumnMajor {
				from, to = colMajor, rowMajor
			}
			for i := range width {
				img.SetByte(destination+uint16(to+i), src[from+i])
			}
		}
	}
	return nil
}

// splitPairs splits n interleaved two-field records (a0,b0,a1,b1,...) into
// two contiguous runs, the a values at the destination and the b values at
// destination + stride. The split footprint is stride + n bytes, the padding
// gap between the two runs is zeroed.
func splitPairs(img *memory.Image, desc Descriptor, destination uint16, stride int) error {
	n := desc.Size() / 2
	if err := checkStride(n, stride); err != nil {
		return err
	}
	src, err := img.CopyRange(desc.Address, int(desc.Address)+desc.Size())
	if err != nil {
		return err
	}
	if err := checkDestination(destination, stride+n); err != nil {
		return err
	}

	for i := range n {
		img.SetByte(destination+uint16(i), src[2*i])
		img.SetByte(destination+uint16(stride+i), src[2*i+1])
	}
	for i := n; i < stride; i++ {
		img.SetByte(destination+uint16(i), 0)
	}
	return nil
}

// mergePairs recombines two split runs back into interleaved pairs and zeroes
// the part of the stride + n split footprint the merged table does not cover.
func mergePairs(img *memory.Image, desc Descriptor, destination uint16, stride int) error {
	n := desc.Size() / 2
	if err := checkStride(n, stride); err != nil {
		return err
	}
	src, err := img.CopyRange(desc.Address, int(desc.Address)+stride+n)
	if err != nil {
		return err
	}
	if err := checkDestination(destination, desc.Size()); err != nil {
		return err
	}

	for i := range n {
		img.SetByte(destination+uint16(2*i), src[i])
		img.SetByte(destination+uint16(2*i+1), src[stride+i])
	}
	for i := int(desc.Address); i < int(desc.Address)+stride+n; i++ {
		if i >= int(destination) && i < int(destination)+desc.Size() {
			continue
		}
		img.SetByte(uint16(i), 0)
	}
	return nil
}

func copyTable(img *memory.Image, desc Descriptor, destination uint16) error {
	if destination == desc.Address {
		return nil
	}
	src, err := img.CopyRange(desc.Address, int(desc.Address)+desc.Size())
	if err != nil {
		return err
	}
	if err := checkDestination(destination, desc.Size()); err != nil {
		return err
	}
	for i, b := range src {
		img.SetByte(destination+uint16(i), b)
	}
	return nil
}

func checkStride(n, stride int) error {
	if stride < n {
		return fmt.Errorf("stride %d is smaller than the field run length %d", stride, n)
	}
	return nil
}

func checkDestination(destination uint16, size int) error {
	if int(destination)+size > memory.Size {
		return memory.BoundsError{Start: destination, End: int(destination) + size - 1}
	}
	return nil
}

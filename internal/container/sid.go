package container

import (
	"bytes"
	"encoding/binary"
)

// SID file header layout, all numeric fields are big-endian.
const (
	sidMagicPSID = "PSID"
	sidMagicRSID = "RSID"

	sidVersion      = 2
	sidHeaderLength = 0x7C

	sidOffsetVersion    = 0x04
	sidOffsetDataOffset = 0x06
	sidOffsetLoad       = 0x08
	sidOffsetInit       = 0x0A
	sidOffsetPlay       = 0x0C
	sidOffsetSongs      = 0x0E
	sidOffsetStartSong  = 0x10
	sidOffsetSpeed      = 0x12
	sidOffsetTitle      = 0x16
	sidOffsetAuthor     = 0x36
	sidOffsetReleased   = 0x56
	sidOffsetFlags      = 0x76
)

// ReadSID parses a PSID or RSID music file.
func ReadSID(data []byte) (*Container, error) {
	if len(data) < sidOffsetFlags {
		return nil, StructuralError{Offset: 0, Reason: "file too small for a SID header"}
	}

	magic := string(data[:4])
	if magic != sidMagicPSID && magic != sidMagicRSID {
		return nil, StructuralError{Offset: 0, Reason: "bad magic " + magic}
	}

	version := binary.BigEndian.Uint16(data[sidOffsetVersion:])
	dataOffset := int(binary.BigEndian.Uint16(data[sidOffsetDataOffset:]))
	if version >= 2 && len(data) < sidHeaderLength {
		return nil, StructuralError{Offset: sidOffsetFlags, Reason: "file too small for a v2 header"}
	}
	if dataOffset > len(data) {
		return nil, StructuralError{Offset: sidOffsetDataOffset, Reason: "data offset past end of file"}
	}

	c := &Container{
		LoadAddress: binary.BigEndian.Uint16(data[sidOffsetLoad:]),
		InitAddress: binary.BigEndian.Uint16(data[sidOffsetInit:]),
		PlayAddress: binary.BigEndian.Uint16(data[sidOffsetPlay:]),
		Songs:       binary.BigEndian.Uint16(data[sidOffsetSongs:]),
		StartSong:   binary.BigEndian.Uint16(data[sidOffsetStartSong:]),
		Speed:       binary.BigEndian.Uint32(data[sidOffsetSpeed:]),
		Title:       trimField(data[sidOffsetTitle : sidOffsetTitle+MetadataFieldWidth]),
		Author:      trimField(data[sidOffsetAuthor : sidOffsetAuthor+MetadataFieldWidth]),
		Released:    trimField(data[sidOffsetReleased : sidOffsetReleased+MetadataFieldWidth]),
	}
	if version >= 2 {
		c.Flags = binary.BigEndian.Uint16(data[sidOffsetFlags:])
	}

	payload := data[dataOffset:]

	// a zero load address means the payload carries a program style embedded
	// load address in its first two bytes
	if c.LoadAddress == 0 {
		if len(payload) < 3 {
			return nil, StructuralError{Offset: dataOffset, Reason: "payload too small for embedded load address"}
		}
		c.LoadAddress = uint16(payload[1])<<8 | uint16(payload[0])
		payload = payload[2:]
	}

	c.Payload = bytes.Clone(payload)
	return c, nil
}

// WriteSID serializes the container as a PSID v2 file. The load address is
// embedded in the payload, the header load field is written as zero as most
// players expect for relocated files.
func WriteSID(c *Container) []byte {
	out := make([]byte, sidHeaderLength, sidHeaderLength+2+len(c.Payload))

	copy(out, sidMagicPSID)
	binary.BigEndian.PutUint16(out[sidOffsetVersion:], sidVersion)
	binary.BigEndian.PutUint16(out[sidOffsetDataOffset:], sidHeaderLength)
	binary.BigEndian.PutUint16(out[sidOffsetLoad:], 0)
	binary.BigEndian.PutUint16(out[sidOffsetInit:], c.InitAddress)
	binary.BigEndian.PutUint16(out[sidOffsetPlay:], c.PlayAddress)

	songs := c.Songs
	if songs == 0 {
		songs = 1
	}
	startSong := c.StartSong
	if startSong == 0 {
		startSong = 1
	}
	binary.BigEndian.PutUint16(out[sidOffsetSongs:], songs)
	binary.BigEndian.PutUint16(out[sidOffsetStartSong:], startSong)
	binary.BigEndian.PutUint32(out[sidOffsetSpeed:], c.Speed)

	copy(out[sidOffsetTitle:], padField(c.Title))
	copy(out[sidOffsetAuthor:], padField(c.Author))
	copy(out[sidOffsetReleased:], padField(c.Released))
	binary.BigEndian.PutUint16(out[sidOffsetFlags:], c.Flags)

	out = append(out, byte(c.LoadAddress), byte(c.LoadAddress>>8))
	return append(out, c.Payload...)
}

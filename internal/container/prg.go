package container

// ReadPRG parses a raw program: a 2-byte little-endian load address
// followed by the payload.
func ReadPRG(data []byte) (*Container, error) {
	if len(data) < 3 {
		return nil, StructuralError{Offset: 0, Reason: "program too small"}
	}

	payload := make([]byte, len(data)-2)
	copy(payload, data[2:])

	return &Container{
		LoadAddress: uint16(data[1])<<8 | uint16(data[0]),
		Payload:     payload,
	}, nil
}

// WritePRG serializes the container in raw program framing. Entry points
// and metadata are not representable in this format and are dropped.
func WritePRG(c *Container) []byte {
	out := make([]byte, 2, 2+len(c.Payload))
	out[0] = byte(c.LoadAddress)
	out[1] = byte(c.LoadAddress >> 8)
	return append(out, c.Payload...)
}

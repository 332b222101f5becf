package container

// Editor container metadata block tags. The payload of an editor container
// opens with a sequence of typed blocks, each a 1-byte tag, a 1-byte length
// and a type specific body, terminated by the sentinel tag.
const (
	editorTagEnd         = 0x00
	editorTagTitle       = 0x01
	editorTagAuthor      = 0x02
	editorTagReleased    = 0x03
	editorTagEntryPoints = 0x04
	editorTagSpeed       = 0x05
)

// ReadEditor parses an editor container: raw program framing whose payload
// opens with metadata blocks, followed by the player code and data tables.
func ReadEditor(data []byte) (*Container, error) {
	c, err := ReadPRG(data)
	if err != nil {
		return nil, err
	}

	payload := c.Payload
	pos := 0
	for {
		if pos >= len(payload) {
			return nil, StructuralError{Offset: 2 + pos, Reason: "unterminated metadata blocks"}
		}
		tag := payload[pos]
		if tag == editorTagEnd {
			pos++
			break
		}
		if pos+2 > len(payload) {
			return nil, StructuralError{Offset: 2 + pos, Reason: "truncated block header"}
		}
		length := int(payload[pos+1])
		body := payload[pos+2:]
		if length > len(body) {
			return nil, StructuralError{Offset: 2 + pos, Reason: "block body past end of payload"}
		}
		body = body[:length]

		switch tag {
		case editorTagTitle:
			c.Title = string(body)
		case editorTagAuthor:
			c.Author = string(body)
		case editorTagReleased:
			c.Released = string(body)
		case editorTagEntryPoints:
			if length != 4 {
				return nil, StructuralError{Offset: 2 + pos, Reason: "entry point block must be 4 bytes"}
			}
			c.InitAddress = uint16(body[1])<<8 | uint16(body[0])
			c.PlayAddress = uint16(body[3])<<8 | uint16(body[2])
		case editorTagSpeed:
			if length != 4 {
				return nil, StructuralError{Offset: 2 + pos, Reason: "speed block must be 4 bytes"}
			}
			c.Speed = uint32(body[0])<<24 | uint32(body[1])<<16 | uint32(body[2])<<8 | uint32(body[3])
		default:
			// unknown blocks are skipped, newer editors may add tags
		}

		pos += 2 + length
	}

	c.Payload = c.Payload[pos:]
	return c, nil
}

// WriteEditor serializes the container in editor framing. The metadata
// blocks precede the code and tables inside the program payload, so the
// load address of the payload is unchanged and the player code begins after
// the sentinel.
func WriteEditor(c *Container) []byte {
	blocks := make([]byte, 0, 128)
	blocks = appendStringBlock(blocks, editorTagTitle, c.Title)
	blocks = appendStringBlock(blocks, editorTagAuthor, c.Author)
	blocks = appendStringBlock(blocks, editorTagReleased, c.Released)

	blocks = append(blocks, editorTagEntryPoints, 4,
		byte(c.InitAddress), byte(c.InitAddress>>8),
		byte(c.PlayAddress), byte(c.PlayAddress>>8))
	blocks = append(blocks, editorTagSpeed, 4,
		byte(c.Speed>>24), byte(c.Speed>>16), byte(c.Speed>>8), byte(c.Speed))
	blocks = append(blocks, editorTagEnd)

	out := make([]byte, 2, 2+len(blocks)+len(c.Payload))
	out[0] = byte(c.LoadAddress)
	out[1] = byte(c.LoadAddress >> 8)
	out = append(out, blocks...)
	return append(out, c.Payload...)
}

func appendStringBlock(blocks []byte, tag byte, value string) []byte {
	if value == "" {
		return blocks
	}
	if len(value) > MetadataFieldWidth {
		value = value[:MetadataFieldWidth]
	}
	blocks = append(blocks, tag, byte(len(value)))
	return append(blocks, value...)
}

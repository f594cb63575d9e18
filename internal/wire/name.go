// Package wire implements the DNS name codec: decompression on read
// (RFC 1035 §4.1.4) and compression-aware encoding on write.
package wire

import (
	"fmt"
	"strings"

	"github.com/joshuafuller/dnsresolve/internal/errors"
	"github.com/joshuafuller/dnsresolve/internal/protocol"
)

// ParseName decompresses a DNS name starting at offset in msg, following
// pointers per RFC 1035 §4.1.4.
//
// msg must be the complete message buffer, not a slice of one RR's rdata —
// a pointer inside an RR's rdata (SRV/PTR/NS targets, etc.) is an offset
// into the whole message, so a codec that parses those names against a
// rdata-only slice will fail or silently follow a wrong offset whenever the
// target itself was compressed.
func ParseName(msg []byte, offset int) (name string, newOffset int, err error) {
	if offset < 0 || offset >= len(msg) {
		return "", offset, &errors.WireFormatError{
			Operation: "parse name",
			Offset:    offset,
			Message:   "offset out of bounds",
		}
	}

	var labels []string
	jumps := 0
	pos := offset
	jumped := false

	for {
		if pos >= len(msg) {
			return "", offset, &errors.WireFormatError{
				Operation: "parse name",
				Offset:    pos,
				Message:   "unexpected end of message while parsing name",
			}
		}

		length := msg[pos]

		if (length & protocol.CompressionMask) == protocol.CompressionMask {
			if pos+1 >= len(msg) {
				return "", offset, &errors.WireFormatError{
					Operation: "parse name",
					Offset:    pos,
					Message:   "truncated compression pointer",
				}
			}

			pointerOffset := int(msg[pos]&0x3F)<<8 | int(msg[pos+1])

			// RFC 1035 §4.1.4: a pointer always points to a PRIOR occurrence,
			// never forward — rejecting pointerOffset >= pos is what makes
			// the jump counter below a sufficient loop defense.
			if pointerOffset >= pos {
				return "", offset, &errors.WireFormatError{
					Operation: "parse name",
					Offset:    pos,
					Message:   fmt.Sprintf("invalid compression pointer: points to offset %d (current position %d)", pointerOffset, pos),
				}
			}

			if !jumped {
				newOffset = pos + 2
				jumped = true
			}

			pos = pointerOffset

			jumps++
			if jumps > protocol.MaxCompressionPointers {
				return "", offset, &errors.WireFormatError{
					Operation: "parse name",
					Offset:    pos,
					Message:   fmt.Sprintf("too many compression jumps (possible loop, exceeded %d jumps)", protocol.MaxCompressionPointers),
				}
			}

			continue
		}

		if length == 0 {
			if !jumped {
				newOffset = pos + 1
			}
			break
		}

		if length > protocol.MaxLabelLength {
			return "", offset, &errors.WireFormatError{
				Operation: "parse name",
				Offset:    pos,
				Message:   fmt.Sprintf("label length %d exceeds maximum %d bytes per RFC 1035 §3.1", length, protocol.MaxLabelLength),
			}
		}

		if pos+1+int(length) > len(msg) {
			return "", offset, &errors.WireFormatError{
				Operation: "parse name",
				Offset:    pos,
				Message:   fmt.Sprintf("truncated label: expected %d bytes, only %d available", length, len(msg)-pos-1),
			}
		}

		label := string(msg[pos+1 : pos+1+int(length)])
		labels = append(labels, label)

		pos += 1 + int(length)

		if len(labels) > protocol.MaxNameLength {
			return "", offset, &errors.WireFormatError{
				Operation: "parse name",
				Offset:    offset,
				Message:   "name contains too many labels",
			}
		}
	}

	name = strings.Join(labels, ".")

	if len(name) > protocol.MaxNameLength {
		return "", offset, &errors.WireFormatError{
			Operation: "parse name",
			Offset:    offset,
			Message:   fmt.Sprintf("name length %d exceeds maximum %d bytes per RFC 1035 §3.1", len(name), protocol.MaxNameLength),
		}
	}

	return name, newOffset, nil
}

// splitLabels turns a presentation-form name into its wire labels,
// dropping a trailing root dot and rejecting empty interior labels.
func splitLabels(name string) ([]string, error) {
	if name == "" || name == "." {
		return nil, nil
	}

	labels := strings.Split(name, ".")
	if labels[len(labels)-1] == "" {
		labels = labels[:len(labels)-1]
	}

	for i, label := range labels {
		if label == "" {
			return nil, &errors.ValidationError{
				Field:   "name",
				Value:   name,
				Message: fmt.Sprintf("empty label at position %d (consecutive dots)", i),
			}
		}
		if len(label) > protocol.MaxLabelLength {
			return nil, &errors.ValidationError{
				Field:   "name",
				Value:   name,
				Message: fmt.Sprintf("label %q exceeds maximum length %d bytes per RFC 1035 §3.1", label, protocol.MaxLabelLength),
			}
		}
	}
	return labels, nil
}

// EncodeName encodes name into wire format without compression — used for
// a standalone name outside any message. EncodeNameCompressed does its own
// label encoding and does not call it.
func EncodeName(name string) ([]byte, error) {
	labels, err := splitLabels(name)
	if err != nil {
		return nil, err
	}

	encoded := make([]byte, 0, protocol.MaxNameLength)
	for _, label := range labels {
		encoded = append(encoded, byte(len(label)))
		encoded = append(encoded, []byte(label)...)
	}
	encoded = append(encoded, 0)

	if len(encoded) > protocol.MaxNameLength {
		return nil, &errors.ValidationError{
			Field:   "name",
			Value:   name,
			Message: fmt.Sprintf("encoded name length %d exceeds maximum %d bytes per RFC 1035 §3.1", len(encoded), protocol.MaxNameLength),
		}
	}
	return encoded, nil
}

// CompressionTable maps a dotted name suffix (lower-cased, no trailing dot)
// to the absolute byte offset of its first occurrence in a message being
// built. It is scoped to a single Message.Pack call — RFC 1035 §4.1.4
// compression pointers are only ever meaningful within one message.
type CompressionTable map[string]int

// NewCompressionTable returns an empty table ready for use with a new
// message buffer.
func NewCompressionTable() CompressionTable {
	return make(CompressionTable)
}

// EncodeNameCompressed appends name to buf in wire format, reusing the
// longest suffix already recorded in table and recording every new suffix
// offset it writes for later reuse. offset is the absolute position in the
// full message that buf's next byte will occupy (buf is usually a growing
// slice of the message itself).
//
// Pointers only fit in 14 bits (RFC 1035 §4.1.4), so a suffix recorded at
// an offset ≥ 0x4000 can never be pointed to and is simply not recorded.
func EncodeNameCompressed(buf []byte, offset int, name string, table CompressionTable) ([]byte, error) {
	labels, err := splitLabels(name)
	if err != nil {
		return nil, err
	}

	matchAt := -1
	var pointerOffset int
	for i := 0; i < len(labels); i++ {
		suffix := strings.ToLower(strings.Join(labels[i:], "."))
		if off, ok := table[suffix]; ok {
			matchAt = i
			pointerOffset = off
			break
		}
	}
	if matchAt == -1 {
		matchAt = len(labels)
	}

	pos := offset
	for i := 0; i < matchAt; i++ {
		if pos < 0x4000 {
			suffix := strings.ToLower(strings.Join(labels[i:], "."))
			if _, exists := table[suffix]; !exists {
				table[suffix] = pos
			}
		}
		buf = append(buf, byte(len(labels[i])))
		buf = append(buf, []byte(labels[i])...)
		pos += 1 + len(labels[i])
	}

	if matchAt < len(labels) {
		ptr := uint16(pointerOffset) | uint16(protocol.CompressionMask)<<8
		buf = append(buf, byte(ptr>>8), byte(ptr&0xFF))
	} else {
		buf = append(buf, 0)
	}
	return buf, nil
}

package protocol

import (
	"fmt"
	"strings"

	"github.com/joshuafuller/dnsresolve/internal/errors"
)

// ValidateName validates a presentation-form DNS name per RFC 1035 §3.1:
// total wire length, per-label length, and character set.
func ValidateName(name string) error {
	if name == "" {
		return &errors.ValidationError{
			Field:   "name",
			Value:   name,
			Message: "name cannot be empty",
		}
	}

	trimmed := strings.TrimSuffix(name, ".")
	if trimmed == "" {
		// The root name "." is valid on its own.
		return nil
	}

	labels := strings.Split(trimmed, ".")

	wireLength := 1 // root terminator
	for _, label := range labels {
		wireLength += 1 + len(label)
	}
	if wireLength > MaxNameLength {
		return &errors.ValidationError{
			Field:   "name",
			Value:   name,
			Message: fmt.Sprintf("name exceeds maximum length %d bytes (wire format: %d bytes) per RFC 1035 §3.1", MaxNameLength, wireLength),
		}
	}

	for i, label := range labels {
		if err := validateLabel(label, i); err != nil {
			return &errors.ValidationError{
				Field:   "name",
				Value:   name,
				Message: err.Error(),
			}
		}
	}
	return nil
}

func validateLabel(label string, position int) error {
	if label == "" {
		return fmt.Errorf("empty label at position %d (consecutive dots)", position)
	}
	if len(label) > MaxLabelLength {
		return fmt.Errorf("label %q exceeds maximum length %d bytes per RFC 1035 §3.1", label, MaxLabelLength)
	}
	for i, ch := range label {
		if !isValidDNSChar(ch) {
			return fmt.Errorf("invalid character %q in label %q (position %d)", ch, label, i)
		}
	}
	return nil
}

// isValidDNSChar allows the "host name" character set plus underscore,
// which in practice appears constantly in the wild (SRV/TXT service
// labels, DKIM/TSIG key owner names) even though RFC 1035 §3.1 itself only
// specifies letters, digits, and hyphen.
func isValidDNSChar(ch rune) bool {
	return (ch >= 'a' && ch <= 'z') ||
		(ch >= 'A' && ch <= 'Z') ||
		(ch >= '0' && ch <= '9') ||
		ch == '-' ||
		ch == '_'
}

// ValidateHeaderFlags checks the one structural header invariant this
// package enforces: OPCODE must not exceed OpcodeUpdate. RCODE and the
// flag bits are not checked.
func ValidateHeaderFlags(flags uint16) error {
	opcode := (flags >> 11) & 0x0F
	if opcode > OpcodeUpdate {
		return &errors.ValidationError{
			Field:   "flags",
			Value:   flags,
			Message: fmt.Sprintf("opcode %d is outside the defined range", opcode),
		}
	}
	return nil
}

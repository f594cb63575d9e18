package message

import (
	"encoding/binary"

	"github.com/joshuafuller/dnsresolve/internal/errors"
	"github.com/joshuafuller/dnsresolve/internal/protocol"
	"github.com/joshuafuller/dnsresolve/internal/wire"
)

// Pack serializes m to wire format, compressing names within the scope of
// this one message (RFC 1035 §4.1.4).
func Pack(m *Message) ([]byte, error) {
	if err := validateOrdering(m); err != nil {
		return nil, err
	}

	buf := make([]byte, 12)
	table := wire.NewCompressionTable()

	binary.BigEndian.PutUint16(buf[0:2], m.Header.ID)
	binary.BigEndian.PutUint16(buf[2:4], m.Header.Flags)
	binary.BigEndian.PutUint16(buf[4:6], uint16(len(m.Question)))
	binary.BigEndian.PutUint16(buf[6:8], uint16(len(m.Answer)))
	binary.BigEndian.PutUint16(buf[8:10], uint16(len(m.Authority)))
	binary.BigEndian.PutUint16(buf[10:12], uint16(len(m.Additional)))

	var err error
	for _, q := range m.Question {
		buf, err = packQuestion(buf, q, table)
		if err != nil {
			return nil, err
		}
	}
	for _, sec := range [][]RR{m.Answer, m.Authority, m.Additional} {
		for _, rr := range sec {
			buf, err = packRR(buf, rr, table)
			if err != nil {
				return nil, err
			}
		}
	}
	return buf, nil
}

// validateOrdering enforces the two placement invariants this codec
// refuses to serialize around: at most one OPT RR, and if TSIG is present
// it must be the final record of the additional section (RFC 8945 §5.1).
// A message that violates this after the caller mutated it post-Apply is
// rejected here rather than silently emitting unverifiable bytes.
func validateOrdering(m *Message) error {
	optCount := 0
	tsigIndex := -1
	for i, rr := range m.Additional {
		if rr.Type == protocol.TypeOPT {
			optCount++
		}
		if rr.Type == protocol.TypeTSIG {
			if tsigIndex != -1 {
				return &errors.IllegalArgumentError{Field: "Additional", Message: "at most one TSIG record is allowed"}
			}
			tsigIndex = i
		}
	}
	if optCount > 1 {
		return &errors.IllegalArgumentError{Field: "Additional", Message: "at most one OPT record is allowed (RFC 6891 §6.1.1)"}
	}
	if tsigIndex != -1 && tsigIndex != len(m.Additional)-1 {
		return &errors.IllegalArgumentError{Field: "Additional", Message: "TSIG record must be the last record in the additional section (RFC 8945 §5.1)"}
	}
	return nil
}

func packQuestion(buf []byte, q Question, table wire.CompressionTable) ([]byte, error) {
	var err error
	buf, err = wire.EncodeNameCompressed(buf, len(buf), q.Name, table)
	if err != nil {
		return nil, err
	}
	var tmp [4]byte
	binary.BigEndian.PutUint16(tmp[0:2], uint16(q.Type))
	binary.BigEndian.PutUint16(tmp[2:4], uint16(q.Class))
	return append(buf, tmp[:]...), nil
}

func packRR(buf []byte, rr RR, table wire.CompressionTable) ([]byte, error) {
	var err error
	buf, err = wire.EncodeNameCompressed(buf, len(buf), rr.Name, table)
	if err != nil {
		return nil, err
	}

	var envelope [10]byte
	binary.BigEndian.PutUint16(envelope[0:2], uint16(rr.Type))
	binary.BigEndian.PutUint16(envelope[2:4], uint16(rr.Class))
	binary.BigEndian.PutUint32(envelope[4:8], rr.TTL)
	rdlenOffset := len(buf) + 8
	buf = append(buf, envelope[:]...)

	rdataStart := len(buf)
	if rr.Data != nil {
		buf, err = rr.Data.Pack(buf, rdataStart, table)
		if err != nil {
			return nil, err
		}
	}
	rdlen := len(buf) - rdataStart
	binary.BigEndian.PutUint16(buf[rdlenOffset:rdlenOffset+2], uint16(rdlen))
	return buf, nil
}

// PackTruncated serializes m within maxSize bytes, dropping whole records
// from the end of Additional, then Authority, then Answer (RFC 1035 §4.1.1
// leaves drop order to the implementation; this codec drops the least
// authoritative sections first so the answer a caller asked for survives
// longest) and setting the TC bit once anything is dropped. A TSIG record,
// if present, is always preserved and re-appended last so a truncated
// response can still be verified.
func PackTruncated(m *Message, maxSize int) (data []byte, truncated bool, err error) {
	full, err := Pack(m)
	if err != nil {
		return nil, false, err
	}
	if len(full) <= maxSize {
		return full, false, nil
	}

	working := *m
	working.Additional = append([]RR(nil), m.Additional...)
	working.Authority = append([]RR(nil), m.Authority...)
	working.Answer = append([]RR(nil), m.Answer...)

	var tsig *RR
	if _, t := working.TSIG(); t != nil {
		tsig = &working.Additional[len(working.Additional)-1]
		working.Additional = working.Additional[:len(working.Additional)-1]
	}

	drop := func(sec *[]RR) bool {
		if len(*sec) == 0 {
			return false
		}
		*sec = (*sec)[:len(*sec)-1]
		return true
	}

	for {
		working.Header.SetTC(true)
		if tsig != nil {
			withTSIG := working
			withTSIG.Additional = append(append([]RR(nil), working.Additional...), *tsig)
			candidate, perr := Pack(&withTSIG)
			if perr == nil && len(candidate) <= maxSize {
				return candidate, true, nil
			}
		} else {
			candidate, perr := Pack(&working)
			if perr == nil && len(candidate) <= maxSize {
				return candidate, true, nil
			}
		}

		if drop(&working.Additional) {
			continue
		}
		if drop(&working.Authority) {
			continue
		}
		if drop(&working.Answer) {
			continue
		}
		// Nothing left to drop; emit the header-only message even if it
		// still exceeds maxSize (e.g. maxSize smaller than a bare header
		// plus a mandatory TSIG) rather than looping forever.
		if tsig != nil {
			withTSIG := working
			withTSIG.Additional = []RR{*tsig}
			last, lerr := Pack(&withTSIG)
			return last, true, lerr
		}
		last, lerr := Pack(&working)
		return last, true, lerr
	}
}

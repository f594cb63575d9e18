package rrdata

import (
	"net"
	"testing"

	"github.com/joshuafuller/dnsresolve/internal/protocol"
	"github.com/joshuafuller/dnsresolve/internal/wire"
)

func packAndParse(t *testing.T, rrtype protocol.RRType, rd RDATA) RDATA {
	t.Helper()
	table := wire.NewCompressionTable()
	msg := make([]byte, 0, 64)
	msg, err := rd.Pack(msg, 0, table)
	if err != nil {
		t.Fatalf("Pack() unexpected error: %v", err)
	}
	parsed, err := Parse(rrtype, msg, 0, len(msg))
	if err != nil {
		t.Fatalf("Parse() unexpected error: %v", err)
	}
	return parsed
}

func TestA_RoundTrip(t *testing.T) {
	rd := &A{Address: net.ParseIP("192.0.2.1")}
	got := packAndParse(t, protocol.TypeA, rd).(*A)
	if !got.Address.Equal(rd.Address) {
		t.Errorf("A round trip = %v, want %v", got.Address, rd.Address)
	}
}

func TestAAAA_RoundTrip(t *testing.T) {
	rd := &AAAA{Address: net.ParseIP("2001:db8::1")}
	got := packAndParse(t, protocol.TypeAAAA, rd).(*AAAA)
	if !got.Address.Equal(rd.Address) {
		t.Errorf("AAAA round trip = %v, want %v", got.Address, rd.Address)
	}
}

func TestSRV_RoundTrip(t *testing.T) {
	rd := &SRV{Priority: 10, Weight: 20, Port: 443, Target: "target.example.com"}
	got := packAndParse(t, protocol.TypeSRV, rd).(*SRV)
	if *got != *rd {
		t.Errorf("SRV round trip = %+v, want %+v", got, rd)
	}
}

func TestTXT_RoundTrip(t *testing.T) {
	rd := &TXT{Strings: []string{"hello", "world strings"}}
	got := packAndParse(t, protocol.TypeTXT, rd).(*TXT)
	if len(got.Strings) != 2 || got.Strings[0] != "hello" || got.Strings[1] != "world strings" {
		t.Errorf("TXT round trip = %+v", got)
	}
}

func TestSOA_RoundTrip(t *testing.T) {
	rd := &SOA{
		MName: "ns1.example.com", RName: "hostmaster.example.com",
		Serial: 2024010101, Refresh: 3600, Retry: 600, Expire: 604800, Minimum: 86400,
	}
	got := packAndParse(t, protocol.TypeSOA, rd).(*SOA)
	if *got != *rd {
		t.Errorf("SOA round trip = %+v, want %+v", got, rd)
	}
}

func TestOPT_RoundTrip(t *testing.T) {
	rd := &OPT{Options: []EDNSOption{{Code: 3, Data: []byte{1, 2, 3}}}}
	got := packAndParse(t, protocol.TypeOPT, rd).(*OPT)
	if len(got.Options) != 1 || got.Options[0].Code != 3 || string(got.Options[0].Data) != "\x01\x02\x03" {
		t.Errorf("OPT round trip = %+v", got)
	}
}

func TestTSIG_NoTextFormat(t *testing.T) {
	if HasTextFormat(protocol.TypeTSIG) {
		t.Error("HasTextFormat(TSIG) = true, want false")
	}
	rd := &TSIG{Algorithm: "hmac-sha256.", TimeSigned: 12345, Fudge: 300, MAC: []byte{1, 2}, OriginalID: 7}
	if rd.String() == "" {
		t.Error("TSIG.String() should return a marker, not empty")
	}
}

func TestTSIG_RoundTrip(t *testing.T) {
	rd := &TSIG{
		Algorithm: "hmac-sha256.", TimeSigned: 1700000000, Fudge: 300,
		MAC: []byte{0xde, 0xad, 0xbe, 0xef}, OriginalID: 4242, Error: 0, OtherData: nil,
	}
	got := packAndParse(t, protocol.TypeTSIG, rd).(*TSIG)
	// Decoded names carry no trailing root dot.
	if got.Algorithm != "hmac-sha256" || got.TimeSigned != rd.TimeSigned || got.Fudge != rd.Fudge ||
		string(got.MAC) != string(rd.MAC) || got.OriginalID != rd.OriginalID {
		t.Errorf("TSIG round trip = %+v, want %+v", got, rd)
	}
}

func TestHINFO_RoundTrip(t *testing.T) {
	rd := &HINFO{CPU: "INTEL-X64", OS: "LINUX"}
	got := packAndParse(t, protocol.TypeHINFO, rd).(*HINFO)
	if *got != *rd {
		t.Errorf("HINFO round trip = %+v, want %+v", got, rd)
	}
}

func TestNAPTR_RoundTrip(t *testing.T) {
	rd := &NAPTR{
		Order: 100, Preference: 10,
		Flags: "U", Services: "E2U+sip", Regexp: "!^.*$!sip:info@example.com!",
		Replacement: ".",
	}
	got := packAndParse(t, protocol.TypeNAPTR, rd).(*NAPTR)
	want := *rd
	want.Replacement = "" // the root name decodes as ""
	if *got != want {
		t.Errorf("NAPTR round trip = %+v, want %+v", got, want)
	}
}

func TestNSEC3PARAM_RoundTrip(t *testing.T) {
	rd := &NSEC3PARAM{HashAlgorithm: 1, Flags: 0, Iterations: 10, Salt: []byte{0xAA, 0xBB}}
	got := packAndParse(t, protocol.TypeNSEC3PARAM, rd).(*NSEC3PARAM)
	if got.HashAlgorithm != rd.HashAlgorithm || got.Flags != rd.Flags || got.Iterations != rd.Iterations || string(got.Salt) != string(rd.Salt) {
		t.Errorf("NSEC3PARAM round trip = %+v, want %+v", got, rd)
	}
}

func TestSIG0_RoundTrip(t *testing.T) {
	rd := &SIG0{
		TypeCovered: protocol.TypeA, Algorithm: 8, Labels: 2,
		OriginalTTL: 3600, Expiration: 2000000000, Inception: 1900000000,
		KeyTag: 1234, SignerName: "example.com", Signature: []byte{1, 2, 3, 4},
	}
	got := packAndParse(t, protocol.TypeSIG0, rd).(*SIG0)
	if got.TypeCovered != rd.TypeCovered || got.SignerName != rd.SignerName || string(got.Signature) != string(rd.Signature) {
		t.Errorf("SIG0 round trip = %+v, want %+v", got, rd)
	}
}

func TestUnknown_Passthrough(t *testing.T) {
	table := wire.NewCompressionTable()
	data := []byte{0xAA, 0xBB, 0xCC}
	parsed, err := Parse(protocol.RRType(65280), data, 0, len(data))
	if err != nil {
		t.Fatalf("Parse(unregistered type) unexpected error: %v", err)
	}
	unk, ok := parsed.(*Unknown)
	if !ok {
		t.Fatalf("Parse(unregistered type) = %T, want *Unknown", parsed)
	}
	packed, err := unk.Pack(nil, 0, table)
	if err != nil {
		t.Fatalf("Pack() unexpected error: %v", err)
	}
	if string(packed) != string(data) {
		t.Errorf("Unknown round trip = %v, want %v", packed, data)
	}
}

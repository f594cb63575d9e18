package message

import (
	"net"
	"testing"

	"github.com/joshuafuller/dnsresolve/internal/protocol"
	"github.com/joshuafuller/dnsresolve/internal/rrdata"
	"github.com/joshuafuller/dnsresolve/internal/wire"
)

func TestPackParse_Query_RoundTrip(t *testing.T) {
	q := NewQuery(1234, "example.com", protocol.TypeA, protocol.ClassIN)

	data, err := Pack(q)
	if err != nil {
		t.Fatalf("Pack() unexpected error: %v", err)
	}

	got, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse() unexpected error: %v", err)
	}
	if got.Header.ID != 1234 {
		t.Errorf("Header.ID = %d, want 1234", got.Header.ID)
	}
	if got.Header.IsResponse() {
		t.Error("query message parsed as a response")
	}
	if !got.Header.RD() {
		t.Error("expected RD bit set on a default query")
	}
	if len(got.Question) != 1 || got.Question[0].Name != "example.com" {
		t.Errorf("Question = %+v", got.Question)
	}
}

func TestPackParse_AnswerWithCompression(t *testing.T) {
	q := NewQuery(1, "www.example.com", protocol.TypeA, protocol.ClassIN)
	q.Header.SetQR(true)
	q.Answer = []RR{
		{Name: "www.example.com", Type: protocol.TypeA, Class: protocol.ClassIN, TTL: 300,
			Data: &rrdata.A{Address: net.ParseIP("192.0.2.10")}},
		{Name: "www.example.com", Type: protocol.TypeCNAME, Class: protocol.ClassIN, TTL: 300,
			Data: &rrdata.CNAME{Target: "alias.example.com"}},
	}

	data, err := Pack(q)
	if err != nil {
		t.Fatalf("Pack() unexpected error: %v", err)
	}

	got, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse() unexpected error: %v", err)
	}
	if len(got.Answer) != 2 {
		t.Fatalf("Answer count = %d, want 2", len(got.Answer))
	}
	a, ok := got.Answer[0].Data.(*rrdata.A)
	if !ok || a.Address.String() != "192.0.2.10" {
		t.Errorf("Answer[0] = %+v", got.Answer[0])
	}
	if got.Answer[0].Name != "www.example.com" || got.Answer[1].Name != "www.example.com" {
		t.Errorf("expected compressed owner names to decode identically")
	}
}

func TestValidateOrdering_RejectsTSIGNotLast(t *testing.T) {
	m := NewQuery(1, "example.com", protocol.TypeA, protocol.ClassIN)
	m.Additional = []RR{
		{Name: ".", Type: protocol.TypeTSIG, Class: protocol.ClassANY, Data: &rrdata.TSIG{Algorithm: "hmac-sha256."}},
		{Name: ".", Type: protocol.TypeOPT, Class: protocol.Class(1232), Data: &rrdata.OPT{}},
	}
	if _, err := Pack(m); err == nil {
		t.Fatal("expected an error when TSIG is not the last additional record")
	}
}

func TestValidateOrdering_RejectsDuplicateOPT(t *testing.T) {
	m := NewQuery(1, "example.com", protocol.TypeA, protocol.ClassIN)
	m.Additional = []RR{
		{Name: ".", Type: protocol.TypeOPT, Class: protocol.Class(1232), Data: &rrdata.OPT{}},
		{Name: ".", Type: protocol.TypeOPT, Class: protocol.Class(1232), Data: &rrdata.OPT{}},
	}
	if _, err := Pack(m); err == nil {
		t.Fatal("expected an error with two OPT records")
	}
}

// appendRR packs a single RR's envelope (name, type, class, ttl, rdlength)
// plus its rdata onto buf, bypassing Message/Pack so a test can assemble
// section orderings Pack's own validateOrdering would refuse to emit.
func appendRR(t *testing.T, buf []byte, rr RR) []byte {
	t.Helper()
	table := wire.NewCompressionTable()
	name, err := wire.EncodeName(rr.Name)
	if err != nil {
		t.Fatalf("EncodeName: %v", err)
	}
	buf = append(buf, name...)
	buf = append(buf, byte(rr.Type>>8), byte(rr.Type&0xFF))
	buf = append(buf, byte(rr.Class>>8), byte(rr.Class&0xFF))
	buf = append(buf, byte(rr.TTL>>24), byte(rr.TTL>>16), byte(rr.TTL>>8), byte(rr.TTL))
	rdlenOffset := len(buf)
	buf = append(buf, 0, 0) // rdlength placeholder, patched below

	rdataStart := len(buf)
	rdata, err := rr.Data.Pack(nil, rdataStart, table)
	if err != nil {
		t.Fatalf("rdata.Pack: %v", err)
	}
	buf = append(buf, rdata...)
	buf[rdlenOffset] = byte(len(rdata) >> 8)
	buf[rdlenOffset+1] = byte(len(rdata) & 0xFF)
	return buf
}

func TestParse_RejectsTSIGNotLast(t *testing.T) {
	m := NewQuery(1, "example.com", protocol.TypeA, protocol.ClassIN)
	data, err := Pack(m)
	if err != nil {
		t.Fatalf("Pack: %v", err)
	}
	data[11] = 2 // ARCOUNT: two additional records follow

	data = appendRR(t, data, RR{Name: ".", Type: protocol.TypeTSIG, Class: protocol.ClassANY, Data: &rrdata.TSIG{Algorithm: "hmac-sha256."}})
	data = appendRR(t, data, RR{Name: ".", Type: protocol.TypeOPT, Class: protocol.Class(1232), Data: &rrdata.OPT{}})

	if _, err := Parse(data); err == nil {
		t.Fatal("expected Parse to reject a TSIG record that isn't last in Additional")
	}
}

func TestOPTAndTSIGAccessors(t *testing.T) {
	m := NewQuery(1, "example.com", protocol.TypeA, protocol.ClassIN)
	m.Additional = []RR{
		{Name: ".", Type: protocol.TypeOPT, Class: protocol.Class(1232), Data: &rrdata.OPT{}},
		{Name: "key.", Type: protocol.TypeTSIG, Class: protocol.ClassANY, Data: &rrdata.TSIG{Algorithm: "hmac-sha256."}},
	}
	if _, opt := m.OPT(); opt == nil {
		t.Error("expected OPT() to find the OPT record")
	}
	if _, tsig := m.TSIG(); tsig == nil {
		t.Error("expected TSIG() to find the TSIG record")
	}
	if m.UDPPayloadSize() != 1232 {
		t.Errorf("UDPPayloadSize() = %d, want 1232", m.UDPPayloadSize())
	}
}

func TestPackTruncated_DropsAdditionalBeforeAnswer(t *testing.T) {
	m := NewQuery(1, "example.com", protocol.TypeTXT, protocol.ClassIN)
	m.Header.SetQR(true)
	bigTXT := make([]string, 0)
	for i := 0; i < 20; i++ {
		bigTXT = append(bigTXT, "this is a moderately long txt string to inflate the message size")
	}
	m.Answer = []RR{
		{Name: "example.com", Type: protocol.TypeTXT, Class: protocol.ClassIN, TTL: 300, Data: &rrdata.TXT{Strings: bigTXT}},
	}
	m.Additional = []RR{
		{Name: ".", Type: protocol.TypeOPT, Class: protocol.Class(1232), Data: &rrdata.OPT{}},
	}

	data, truncated, err := PackTruncated(m, 512)
	if err != nil {
		t.Fatalf("PackTruncated() unexpected error: %v", err)
	}
	if !truncated {
		t.Fatal("expected truncation to have occurred")
	}
	if len(data) > 512 {
		t.Errorf("PackTruncated() produced %d bytes, want <= 512", len(data))
	}
	got, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse(truncated) unexpected error: %v", err)
	}
	if !got.Header.TC() {
		t.Error("expected TC bit set on truncated message")
	}
}

func TestPackTruncated_PreservesTSIG(t *testing.T) {
	m := NewQuery(1, "example.com", protocol.TypeTXT, protocol.ClassIN)
	m.Header.SetQR(true)
	bigTXT := make([]string, 0)
	for i := 0; i < 20; i++ {
		bigTXT = append(bigTXT, "this is a moderately long txt string to inflate the message size")
	}
	m.Answer = []RR{
		{Name: "example.com", Type: protocol.TypeTXT, Class: protocol.ClassIN, TTL: 300, Data: &rrdata.TXT{Strings: bigTXT}},
	}
	m.Additional = []RR{
		{Name: "key.", Type: protocol.TypeTSIG, Class: protocol.ClassANY, Data: &rrdata.TSIG{Algorithm: "hmac-sha256.", MAC: make([]byte, 32)}},
	}

	data, truncated, err := PackTruncated(m, 512)
	if err != nil {
		t.Fatalf("PackTruncated() unexpected error: %v", err)
	}
	if !truncated {
		t.Fatal("expected truncation to have occurred")
	}
	got, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse(truncated) unexpected error: %v", err)
	}
	if _, tsig := got.TSIG(); tsig == nil {
		t.Fatal("expected TSIG record to survive truncation")
	}
}

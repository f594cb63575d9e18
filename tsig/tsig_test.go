package tsig

import (
	"strings"
	"testing"

	"github.com/joshuafuller/dnsresolve/internal/protocol"
	"github.com/joshuafuller/dnsresolve/message"
)

func testKey(t *testing.T, algorithm string) *Key {
	t.Helper()
	key, err := NewKey("test-key.", algorithm, "dGVzdHNlY3JldHRlc3RzZWNyZXQ=")
	if err != nil {
		t.Fatalf("NewKey(%q): %v", algorithm, err)
	}
	return key
}

func TestSignVerify_RoundTrip(t *testing.T) {
	key := testKey(t, "hmac-sha256.")
	m := message.NewQuery(42, "example.com.", protocol.TypeA, protocol.ClassIN)

	signed, mac, err := Sign(m, key, nil, false, 0, 1_700_000_000)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if len(mac) == 0 {
		t.Fatal("Sign returned empty MAC")
	}

	if err := Verify(signed, key, nil, false, 1_700_000_000); err != nil {
		t.Fatalf("Verify: %v", err)
	}
}

func TestSignVerify_AllAlgorithms(t *testing.T) {
	algorithms := []string{
		"hmac-md5.sig-alg.reg.int.",
		"hmac-sha1.",
		"hmac-sha224.",
		"hmac-sha256.",
		"hmac-sha384.",
		"hmac-sha512.",
		// Legacy Java-style spellings, any case.
		"HmacSHA256",
		"hmacsha1",
		"HMAC-SHA512",
	}
	for _, alg := range algorithms {
		t.Run(alg, func(t *testing.T) {
			key := testKey(t, alg)
			m := message.NewQuery(7, "example.org.", protocol.TypeAAAA, protocol.ClassIN)
			signed, _, err := Sign(m, key, nil, false, 0, 1000)
			if err != nil {
				t.Fatalf("Sign(%s): %v", alg, err)
			}
			if err := Verify(signed, key, nil, false, 1000); err != nil {
				t.Fatalf("Verify(%s): %v", alg, err)
			}
		})
	}
}

func TestParseAlgorithm_UnknownRejected(t *testing.T) {
	_, err := ParseAlgorithm("hmac-sha3000")
	if err == nil {
		t.Fatal("expected an error for an unknown algorithm")
	}
	if !strings.Contains(err.Error(), "unknown TSIG algorithm") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestVerify_RejectsTamperedBody(t *testing.T) {
	key := testKey(t, "hmac-sha256.")
	m := message.NewQuery(1, "tamper.example.", protocol.TypeA, protocol.ClassIN)
	signed, _, err := Sign(m, key, nil, false, 0, 1000)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	tampered := append([]byte(nil), signed...)
	tampered[2] ^= 0xFF // flip a header flag bit after signing

	if err := Verify(tampered, key, nil, false, 1000); err == nil {
		t.Fatal("expected Verify to reject a tampered message")
	}
}

func TestVerify_RejectsOutsideFudgeWindow(t *testing.T) {
	key := testKey(t, "hmac-sha256.")
	m := message.NewQuery(1, "stale.example.", protocol.TypeA, protocol.ClassIN)
	signed, _, err := Sign(m, key, nil, false, 300, 1000)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	if err := Verify(signed, key, nil, false, 1000+301); err == nil {
		t.Fatal("expected Verify to reject a message outside the fudge window")
	}
}

func TestSign_RejectsAlreadySignedMessage(t *testing.T) {
	key := testKey(t, "hmac-sha256.")
	m := message.NewQuery(1, "double-sign.example.", protocol.TypeA, protocol.ClassIN)
	if _, _, err := Sign(m, key, nil, false, 0, 1000); err != nil {
		t.Fatalf("first Sign: %v", err)
	}
	if _, _, err := Sign(m, key, nil, false, 0, 1000); err == nil {
		t.Fatal("expected second Sign on an already-signed message to fail")
	}
}

func TestSignVerify_ResponseBoundToRequestMAC(t *testing.T) {
	key := testKey(t, "hmac-sha256.")
	query := message.NewQuery(99, "bound.example.", protocol.TypeA, protocol.ClassIN)
	_, queryMAC, err := Sign(query, key, nil, false, 0, 1000)
	if err != nil {
		t.Fatalf("sign query: %v", err)
	}

	response := message.NewQuery(99, "bound.example.", protocol.TypeA, protocol.ClassIN)
	response.Header.SetQR(true)
	signedResp, _, err := Sign(response, key, queryMAC, false, 0, 1000)
	if err != nil {
		t.Fatalf("sign response: %v", err)
	}

	if err := Verify(signedResp, key, queryMAC, false, 1000); err != nil {
		t.Fatalf("Verify bound to correct request MAC: %v", err)
	}

	wrongMAC := append([]byte(nil), queryMAC...)
	wrongMAC[0] ^= 0xFF
	if err := Verify(signedResp, key, wrongMAC, false, 1000); err == nil {
		t.Fatal("expected Verify to reject a response bound to the wrong request MAC")
	}
}

func TestStream_MultiMessageChaining(t *testing.T) {
	key := testKey(t, "hmac-sha256.")
	signer := NewStream(key, nil)
	verifier := NewStream(key, nil)

	for i := uint16(0); i < 3; i++ {
		m := message.NewQuery(i, "axfr.example.", protocol.TypeAXFR, protocol.ClassIN)
		m.Header.SetQR(true)
		signed, err := signer.Sign(m, 0, 1000)
		if err != nil {
			t.Fatalf("Stream.Sign message %d: %v", i, err)
		}
		if err := verifier.Verify(signed, 1000); err != nil {
			t.Fatalf("Stream.Verify message %d: %v", i, err)
		}
	}
}

func TestPack_RejectsTSIGNotLastAfterMutation(t *testing.T) {
	key := testKey(t, "hmac-sha256.")
	m := message.NewQuery(1, "mutate.example.", protocol.TypeA, protocol.ClassIN)
	if _, _, err := Sign(m, key, nil, false, 0, 1000); err != nil {
		t.Fatalf("Sign: %v", err)
	}

	// A caller that appends another record after signing breaks the
	// "TSIG must be last" invariant; Pack must refuse to serialize it
	// rather than emit bytes no verifier could check.
	m.Additional = append(m.Additional, message.RR{Name: "extra.example.", Type: protocol.TypeA, Class: protocol.ClassIN})
	if _, err := message.Pack(m); err == nil {
		t.Fatal("expected Pack to reject a message mutated after TSIG was attached")
	}
}

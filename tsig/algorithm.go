package tsig

import (
	"strings"

	"github.com/joshuafuller/dnsresolve/internal/errors"
)

// Algorithm identifies an HMAC algorithm in its canonical DNS wire form —
// lower-case, trailing dot (RFC 8945 §6).
type Algorithm string

// The HMAC algorithms RFC 8945 §6 and its predecessor RFC 2845 define.
// HMACMD5 remains only for interop with legacy signers; new keys should
// use SHA-256 or stronger.
const (
	HMACMD5    Algorithm = "hmac-md5.sig-alg.reg.int."
	HMACSHA1   Algorithm = "hmac-sha1."
	HMACSHA224 Algorithm = "hmac-sha224."
	HMACSHA256 Algorithm = "hmac-sha256."
	HMACSHA384 Algorithm = "hmac-sha384."
	HMACSHA512 Algorithm = "hmac-sha512."
)

// aliases maps every spelling seen in the wild — DNS wire form in any
// case, and the legacy Java/BIND-style "HmacSHA256" names some older
// client libraries still emit — to the canonical Algorithm.
var aliases = map[string]Algorithm{
	"hmac-md5.sig-alg.reg.int.": HMACMD5,
	"hmac-md5.sig-alg.reg.int":  HMACMD5,
	"hmac-md5":                  HMACMD5,
	"hmacmd5":                   HMACMD5,
	"hmac-sha1.":                HMACSHA1,
	"hmac-sha1":                 HMACSHA1,
	"hmacsha1":                  HMACSHA1,
	"hmac-sha224.":              HMACSHA224,
	"hmac-sha224":               HMACSHA224,
	"hmacsha224":                HMACSHA224,
	"hmac-sha256.":              HMACSHA256,
	"hmac-sha256":               HMACSHA256,
	"hmacsha256":                HMACSHA256,
	"hmac-sha384.":              HMACSHA384,
	"hmac-sha384":               HMACSHA384,
	"hmacsha384":                HMACSHA384,
	"hmac-sha512.":              HMACSHA512,
	"hmac-sha512":               HMACSHA512,
	"hmacsha512":                HMACSHA512,
}

// ParseAlgorithm resolves any accepted spelling of an HMAC algorithm name
// — DNS wire form or legacy form, any case, with or without the trailing
// dot — to its canonical Algorithm. An unrecognized name is an
// IllegalArgumentError, not a WireFormatError: the bytes are well-formed,
// the library just declines to sign or verify with an algorithm it
// doesn't implement.
func ParseAlgorithm(name string) (Algorithm, error) {
	key := strings.ToLower(name)
	if alg, ok := aliases[key]; ok {
		return alg, nil
	}
	return "", &errors.IllegalArgumentError{
		Field:   "algorithm",
		Value:   name,
		Message: "unknown TSIG algorithm",
	}
}

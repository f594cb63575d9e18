package tsig

import (
	"encoding/base64"

	"github.com/joshuafuller/dnsresolve/internal/errors"
)

// Key is a shared TSIG secret bound to an owner name and algorithm
// (RFC 8945 §4.2). Name is the key's presentation-form owner name as it
// appears in the TSIG RR, not the query name being signed.
type Key struct {
	Name      string
	Algorithm Algorithm
	Secret    []byte
}

// NewKey builds a Key from a base64-encoded secret, the form TSIG keys are
// conventionally distributed in (e.g. BIND's key files, RFC 8945 Appendix
// A examples).
func NewKey(name, algorithm, secretBase64 string) (*Key, error) {
	alg, err := ParseAlgorithm(algorithm)
	if err != nil {
		return nil, err
	}
	secret, err := base64.StdEncoding.DecodeString(secretBase64)
	if err != nil {
		return nil, &errors.IllegalArgumentError{
			Field:   "secret",
			Message: "secret is not valid base64: " + err.Error(),
		}
	}
	if len(secret) == 0 {
		return nil, &errors.IllegalArgumentError{
			Field:   "secret",
			Message: "secret must not be empty",
		}
	}
	return &Key{Name: name, Algorithm: alg, Secret: secret}, nil
}

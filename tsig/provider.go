package tsig

import (
	"crypto/hmac"
	"crypto/md5" //nolint:gosec // retained only for interop with legacy HMAC-MD5 signers
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"hash"

	"github.com/joshuafuller/dnsresolve/internal/errors"
)

// Provider computes and checks the HMAC over a TSIG-hashed buffer. Its
// only implementation is keyHMACProvider, which Sign and Verify always
// use; no function in this package accepts another Provider.
type Provider interface {
	Generate(buf []byte, alg Algorithm) ([]byte, error)
	Verify(buf []byte, alg Algorithm, mac []byte) error
}

type keyHMACProvider struct {
	secret []byte
}

func newHash(alg Algorithm, secret []byte) (hash.Hash, error) {
	switch alg {
	case HMACMD5:
		return hmac.New(md5.New, secret), nil
	case HMACSHA1:
		return hmac.New(sha1.New, secret), nil
	case HMACSHA224:
		return hmac.New(sha256.New224, secret), nil
	case HMACSHA256:
		return hmac.New(sha256.New, secret), nil
	case HMACSHA384:
		return hmac.New(sha512.New384, secret), nil
	case HMACSHA512:
		return hmac.New(sha512.New, secret), nil
	default:
		return nil, &errors.IllegalArgumentError{Field: "algorithm", Value: string(alg), Message: "unknown TSIG algorithm"}
	}
}

func (p keyHMACProvider) Generate(buf []byte, alg Algorithm) ([]byte, error) {
	h, err := newHash(alg, p.secret)
	if err != nil {
		return nil, err
	}
	h.Write(buf)
	return h.Sum(nil), nil
}

func (p keyHMACProvider) Verify(buf []byte, alg Algorithm, mac []byte) error {
	expected, err := p.Generate(buf, alg)
	if err != nil {
		return err
	}
	if !hmac.Equal(expected, mac) {
		return &errors.TSIGVerifyError{Code: 16, Reason: "MAC mismatch"} // BADSIG
	}
	return nil
}

package utils

import (
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"strings"

	"golang.org/x/crypto/blake2b"
)

// ErrInvalidSignature is returned when a signed value was tampered with or is malformed.
var ErrInvalidSignature = errors.New("invalid signature")

// Signer appends and checks a keyed BLAKE2b-256 MAC on cookie values.
type Signer struct {
	key [32]byte
}

// NewSigner derives the MAC key from secret, so secrets of any length work.
func NewSigner(secret string) *Signer {
	return &Signer{key: blake2b.Sum256([]byte(secret))}
}

func (s *Signer) mac(value string) []byte {
	h, err := blake2b.New256(s.key[:])
	if err != nil {
		// only fails for keys over 64 bytes
		panic(err)
	}
	h.Write([]byte(value))
	return h.Sum(nil)
}

// Sign returns value.mac
func (s *Signer) Sign(value string) string {
	return value + "." + hex.EncodeToString(s.mac(value))
}

// Verify returns the original value when signed carries a valid MAC.
func (s *Signer) Verify(signed string) (string, error) {
	i := strings.LastIndexByte(signed, '.')
	if i <= 0 || i == len(signed)-1 {
		return "", ErrInvalidSignature
	}
	value, sig := signed[:i], signed[i+1:]

	got, err := hex.DecodeString(sig)
	if err != nil {
		return "", ErrInvalidSignature
	}
	if subtle.ConstantTimeCompare(got, s.mac(value)) != 1 {
		return "", ErrInvalidSignature
	}
	return value, nil
}

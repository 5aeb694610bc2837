package keys

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"unicode/utf8"
)

// DefaultMasterKey is the shared publication secret, stored as
// base64-encoded hex. It is combined with a per-publication hash to
// derive the AES key and IV for that publication's payloads.
const DefaultMasterKey = "MTFjYmI1NTg3ZTMyODQ2ZDRjMjY3OTBjNjMzZGEyODlmNjZmZTU4NDJhM2E1ODVjZTFiYzNhMjk0YWY1YWRhNw=="

// ErrMasterKey indicates the master key constant failed to decode.
// This is a build-time defect, not a runtime condition.
var ErrMasterKey = errors.New("keys: malformed master key")

// Material holds derived AES-128-CBC key material. It has no identity
// of its own and is recomputed from the publication identity whenever
// needed.
type Material struct {
	Key [16]byte
	IV  [16]byte
}

// Engine derives per-publication key material from the master key.
type Engine struct {
	masterKey []byte
}

// NewEngine decodes the master key (base64 wrapping ASCII hex digits)
// and returns an engine ready to derive.
func NewEngine(masterKeyB64 string) (*Engine, error) {
	hexBytes, err := base64.StdEncoding.DecodeString(masterKeyB64)
	if err != nil {
		return nil, fmt.Errorf("%w: base64: %v", ErrMasterKey, err)
	}
	if !utf8.Valid(hexBytes) {
		return nil, fmt.Errorf("%w: not valid UTF-8", ErrMasterKey)
	}
	raw, err := hex.DecodeString(string(hexBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: hex: %v", ErrMasterKey, err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: empty key", ErrMasterKey)
	}
	return &Engine{masterKey: raw}, nil
}

// Derive computes key material for a publication identity string of the
// form "{language}_{symbol}_{year}_{issue}". The SHA-256 of the
// identity is XORed byte-wise with the master key (cycled when
// shorter); the first half is the key, the second the IV. Deterministic
// and pure: equal inputs always yield equal material.
func (e *Engine) Derive(identity string) Material {
	hash := sha256.Sum256([]byte(identity))

	var m Material
	for i, h := range hash {
		x := h ^ e.masterKey[i%len(e.masterKey)]
		if i < 16 {
			m.Key[i] = x
		} else {
			m.IV[i-16] = x
		}
	}
	return m
}

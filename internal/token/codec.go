package token

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
)

// Codec obfuscates payloads for transport. The transform is a cyclic XOR
// with a shared key followed by base64; it deters casual tampering only and
// is intentionally not cryptography — anyone holding the app key can invert
// it. Short, fast, deterministic output is part of the contract.
type Codec struct {
	key []byte
}

// NewCodec returns a codec bound to the given shared key.
func NewCodec(key string) (*Codec, error) {
	if key == "" {
		return nil, errors.New("codec key required")
	}
	return &Codec{key: []byte(key)}, nil
}

// Encode serializes the payload and masks it into a base64 transport string.
func (c *Codec) Encode(p Payload) (string, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("encode payload: %w", err)
	}
	return base64.StdEncoding.EncodeToString(c.mask(raw)), nil
}

// Decode reverses Encode. Garbage input of any kind comes back as
// ErrMalformed, never a panic.
func (c *Codec) Decode(s string) (Payload, error) {
	// Strict decoding rejects non-canonical trailing bits, so a flipped
	// character near the padding cannot decode back to the same bytes.
	masked, err := base64.StdEncoding.Strict().DecodeString(s)
	if err != nil {
		return Payload{}, fmt.Errorf("%w: bad base64", ErrMalformed)
	}
	raw := c.mask(masked)

	var p Payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return Payload{}, fmt.Errorf("%w: bad payload", ErrMalformed)
	}
	if p.LectureID == "" || p.TeacherID == "" || p.IssuedAt <= 0 || p.ExpiresAt <= 0 {
		return Payload{}, fmt.Errorf("%w: incomplete payload", ErrMalformed)
	}
	return p, nil
}

// mask XORs data with the key repeated cyclically. The transform is its own
// inverse, so encode and decode share it.
func (c *Codec) mask(data []byte) []byte {
	out := make([]byte, len(data))
	for i, b := range data {
		out[i] = b ^ c.key[i%len(c.key)]
	}
	return out
}

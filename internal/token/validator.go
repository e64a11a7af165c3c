package token

import (
	"fmt"
	"net/url"
	"time"
)

// Validator turns a scanned transport URI back into a payload and enforces
// freshness. now is always passed in; the validator never reads the clock,
// which keeps the expiry boundary deterministic under test.
type Validator struct {
	codec *Codec
}

// NewValidator creates a validator sharing the issuer's codec key.
func NewValidator(codec *Codec) *Validator {
	return &Validator{codec: codec}
}

// Validate parses and decodes uri, then checks it against now. It returns
// ErrMalformed for anything that is not a well-formed attendance URI and
// ErrExpired for a decodable payload whose window has passed.
func (v *Validator) Validate(uri string, now time.Time) (Payload, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return Payload{}, fmt.Errorf("%w: not a URI", ErrMalformed)
	}
	if u.Scheme != Scheme || u.Host != Host {
		return Payload{}, fmt.Errorf("%w: unexpected scheme or host", ErrMalformed)
	}
	data := u.Query().Get("data")
	if data == "" {
		return Payload{}, fmt.Errorf("%w: missing data parameter", ErrMalformed)
	}

	p, err := v.codec.Decode(data)
	if err != nil {
		return Payload{}, err
	}
	if !p.Fresh(now.UnixMilli()) {
		return Payload{}, ErrExpired
	}
	return p, nil
}

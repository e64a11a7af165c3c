package token

import (
	"net/url"
	"time"
)

// Issuer mints transport URIs for display. It is pure: the caller supplies
// the clock, and each call is an independent token with a fresh window.
type Issuer struct {
	codec  *Codec
	window time.Duration
}

// NewIssuer creates an issuer with the given validity window.
func NewIssuer(codec *Codec, window time.Duration) *Issuer {
	if window <= 0 {
		window = 10 * time.Second
	}
	return &Issuer{codec: codec, window: window}
}

// Window returns the configured validity window.
func (i *Issuer) Window() time.Duration { return i.window }

// Issue builds a payload stamped at now and returns its transport URI,
// e.g. attendance://mark?data=<escaped encoded payload>.
func (i *Issuer) Issue(lectureID, lectureName, teacherID string, now time.Time) (string, Payload, error) {
	issued := now.UnixMilli()
	p := Payload{
		LectureID:   lectureID,
		LectureName: lectureName,
		IssuedAt:    issued,
		TeacherID:   teacherID,
		ExpiresAt:   issued + i.window.Milliseconds(),
	}
	encoded, err := i.codec.Encode(p)
	if err != nil {
		return "", Payload{}, err
	}
	return Scheme + "://" + Host + "?data=" + url.QueryEscape(encoded), p, nil
}

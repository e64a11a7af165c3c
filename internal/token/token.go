// Package token implements the short-lived attendance credential: an
// obfuscated payload binding (lecture, teacher, issue time) that students
// scan and redeem within a fixed freshness window.
package token

import "errors"

// Scheme and host of the transport URI carried inside the QR image.
const (
	Scheme = "attendance"
	Host   = "mark"
)

var (
	// ErrMalformed covers everything short of a decodable, well-formed
	// payload: wrong scheme or host, missing data parameter, broken
	// base64, or a payload that does not match the expected shape.
	ErrMalformed = errors.New("malformed attendance token")

	// ErrExpired means the payload decoded fine but its window has passed.
	ErrExpired = errors.New("attendance token expired")
)

// Payload is the token body as it travels inside the QR code. Field names
// and order are the wire contract; timestamps are epoch milliseconds.
type Payload struct {
	LectureID   string `json:"lectureId"`
	LectureName string `json:"lectureName"`
	IssuedAt    int64  `json:"timestamp"`
	TeacherID   string `json:"teacherId"`
	ExpiresAt   int64  `json:"expiresAt"`
}

// Fresh reports whether the payload is still within its window at the
// given epoch-millisecond instant. The boundary is inclusive: a token is
// rejected only once now is strictly past ExpiresAt.
func (p Payload) Fresh(nowMillis int64) bool {
	return nowMillis <= p.ExpiresAt
}

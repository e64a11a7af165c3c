// Package attendance turns validated tokens into durable attendance records.
package attendance

import "fmt"

// Record is one redeemed scan. Identity fields come from the student's
// session; lecture and teacher fields are copied from the validated token.
// Timestamp is the redemption instant in epoch milliseconds, distinct from
// the token's issue time.
type Record struct {
	ID          string `json:"id"`
	StudentID   string `json:"studentId"`
	StudentName string `json:"studentName"`
	LectureID   string `json:"lectureId"`
	LectureName string `json:"lectureName"`
	Timestamp   int64  `json:"timestamp"`
	TeacherID   string `json:"teacherId"`
}

// recordID builds the composite id. The nanosecond component keeps ids
// distinct even when two redemptions land in the same millisecond.
func recordID(studentID, lectureID string, nanos int64) string {
	return fmt.Sprintf("%s_%s_%d", studentID, lectureID, nanos)
}

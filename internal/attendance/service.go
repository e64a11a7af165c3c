package attendance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"classmark/internal/token"
)

// ErrPersistence wraps store I/O failures during redemption. When it is
// returned nothing was recorded, so the student can retry against the same
// still-potentially-valid token.
var ErrPersistence = errors.New("attendance store failure")

// Store is the durable record collection: a single logical key holding the
// full list, appended by read-modify-write. Single-writer semantics are
// assumed; backends need no cross-process locking.
type Store interface {
	Load(ctx context.Context) ([]Record, error)
	Save(ctx context.Context, records []Record) error
}

// Service is the redemption pipeline. It trusts the payload it is handed:
// expiry was already enforced by the validator, which must run first on
// every path that reaches Redeem.
type Service struct {
	store Store
}

// NewService creates a service backed by a record store.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Redeem constructs a record for the scanning student and appends it to the
// store. Each call records a fresh event — repeat scans of one token by the
// same student within the window produce separate records; throttling that
// is the scanner's concern, not the pipeline's.
func (s *Service) Redeem(ctx context.Context, p token.Payload, studentID, studentName string, now time.Time) (Record, error) {
	if studentID == "" || studentName == "" {
		return Record{}, errors.New("student identity required")
	}

	rec := Record{
		ID:          recordID(studentID, p.LectureID, now.UnixNano()),
		StudentID:   studentID,
		StudentName: studentName,
		LectureID:   p.LectureID,
		LectureName: p.LectureName,
		Timestamp:   now.UnixMilli(),
		TeacherID:   p.TeacherID,
	}

	existing, err := s.store.Load(ctx)
	if err != nil {
		return Record{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if err := s.store.Save(ctx, append(existing, rec)); err != nil {
		return Record{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return rec, nil
}

// GetAll returns every record in the store.
func (s *Service) GetAll(ctx context.Context) ([]Record, error) {
	records, err := s.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return records, nil
}

// GetByLecture returns the records for one lecture session.
func (s *Service) GetByLecture(ctx context.Context, lectureID string) ([]Record, error) {
	all, err := s.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	var out []Record
	for _, rec := range all {
		if rec.LectureID == lectureID {
			out = append(out, rec)
		}
	}
	return out, nil
}

package attendance

import (
	"context"
	"errors"
	"testing"
	"time"

	"classmark/internal/token"
)

// Full pipeline: issue, transport, validate, redeem.
func TestIssueValidateRedeemFlow(t *testing.T) {
	codec, err := token.NewCodec("AttendanceApp2025SecretKeyDefault")
	if err != nil {
		t.Fatalf("NewCodec failed: %v", err)
	}
	issuer := token.NewIssuer(codec, 10*time.Second)
	validator := token.NewValidator(codec)
	store := &memStore{}
	svc := NewService(store)
	ctx := context.Background()

	// Teacher issues at t=1000.
	uri, _, err := issuer.Issue("CS101_MON_09", "Intro to CS", "t-1", time.UnixMilli(1000))
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	// First student scans at t=5000, inside the window.
	payload, err := validator.Validate(uri, time.UnixMilli(5000))
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	rec, err := svc.Redeem(ctx, payload, "s-42", "Ada Lovelace", time.UnixMilli(5000))
	if err != nil {
		t.Fatalf("Redeem failed: %v", err)
	}
	if rec.LectureID != "CS101_MON_09" || rec.StudentID != "s-42" || rec.StudentName != "Ada Lovelace" {
		t.Errorf("unexpected record %+v", rec)
	}

	// Second student presents the same raw string at t=11500: expired,
	// and no record may exist for it.
	if _, err := validator.Validate(uri, time.UnixMilli(11500)); !errors.Is(err, token.ErrExpired) {
		t.Fatalf("late validation = %v, want ErrExpired", err)
	}
	records, err := svc.GetByLecture(ctx, "CS101_MON_09")
	if err != nil {
		t.Fatalf("GetByLecture failed: %v", err)
	}
	if len(records) != 1 {
		t.Errorf("store holds %d records for the lecture, want only the in-window redemption", len(records))
	}
}

// A wrong-scheme string is rejected before the pipeline and leaves no record.
func TestMalformedURIRecordsNothing(t *testing.T) {
	codec, err := token.NewCodec("secret")
	if err != nil {
		t.Fatalf("NewCodec failed: %v", err)
	}
	validator := token.NewValidator(codec)
	store := &memStore{}
	svc := NewService(store)

	if _, err := validator.Validate("http://mark?data=abc", time.UnixMilli(1000)); !errors.Is(err, token.ErrMalformed) {
		t.Fatalf("Validate = %v, want ErrMalformed", err)
	}

	records, err := svc.GetAll(context.Background())
	if err != nil {
		t.Fatalf("GetAll failed: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("no record may be created for a malformed token, got %+v", records)
	}
}

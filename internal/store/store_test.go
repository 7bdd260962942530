package store

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestAddAndRetrieve(t *testing.T) {
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer s.Close()

	ctx := context.Background()
	rec, err := s.Add(ctx, Record{
		StartedAt:  time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC),
		Duration:   12500 * time.Millisecond,
		Port:       "/dev/ttyACM0",
		Firmware:   "guard.elf",
		Outcome:    "pass",
		Version:    "1.2.3",
		RawVoltage: 3000,
		Voltage:    4.835,
		Message:    "Pass: Firmware Version 1.2.3, Battery Voltage 4.84V",
	})
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if rec.ID == "" {
		t.Fatal("expected generated ID")
	}

	runs, err := s.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}
	got := runs[0]
	if got.ID != rec.ID || got.Version != "1.2.3" || got.RawVoltage != 3000 {
		t.Errorf("unexpected record: %+v", got)
	}
	if got.Duration != 12500*time.Millisecond {
		t.Errorf("expected duration 12.5s, got %v", got.Duration)
	}
	if !got.StartedAt.Equal(rec.StartedAt) {
		t.Errorf("expected StartedAt %v, got %v", rec.StartedAt, got.StartedAt)
	}
}

func TestRecentNewestFirstAndLimit(t *testing.T) {
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer s.Close()

	ctx := context.Background()
	base := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	for i, outcome := range []string{"pass", "fail", "error"} {
		if _, err := s.Add(ctx, Record{StartedAt: base.Add(time.Duration(i) * time.Minute), Outcome: outcome}); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
	}

	runs, err := s.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].Outcome != "error" || runs[1].Outcome != "fail" {
		t.Fatalf("expected newest first, got %s, %s", runs[0].Outcome, runs[1].Outcome)
	}

	all, _ := s.Recent(ctx, 0)
	if len(all) != 3 {
		t.Fatalf("expected 3 runs, got %d", len(all))
	}
}

func TestExists(t *testing.T) {
	dir := t.TempDir()
	ok, err := Exists(dir)
	if err != nil || ok {
		t.Fatalf("Exists before Open = %v, %v; want false, nil", ok, err)
	}

	s, err := Open(dir)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	s.Close()

	ok, err = Exists(dir)
	if err != nil || !ok {
		t.Fatalf("Exists after Open = %v, %v; want true, nil", ok, err)
	}
}

func TestEmptyStore(t *testing.T) {
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer s.Close()

	runs, err := s.Recent(context.Background(), 5)
	if err != nil {
		t.Fatalf("Recent on empty store failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected 0 runs, got %d", len(runs))
	}
}

func TestAddWrapsInsertError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New failed: %v", err)
	}
	defer db.Close()

	boom := errors.New("disk I/O error")
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO runs")).WillReturnError(boom)

	_, err = New(db).Add(context.Background(), Record{Outcome: "pass"})
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped insert error, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRecentRejectsBadTimestamp(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New failed: %v", err)
	}
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id", "started_at", "duration_ms", "port", "firmware", "outcome", "version", "raw_voltage", "voltage", "message"}).
		AddRow("id-1", "yesterday", 10, "COM3", "fw.elf", "pass", nil, 3000, 4.8, "ok")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, started_at")).WithArgs(1).WillReturnRows(rows)

	if _, err := New(db).Recent(context.Background(), 1); err == nil {
		t.Fatal("expected error for unparseable started_at")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

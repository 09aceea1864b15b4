package timeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"medication-timeline/internal/domain/prescriptions"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type fakeSource struct {
	dated   []prescriptions.Prescription
	undated []prescriptions.Prescription
	err     error
}

func (f fakeSource) ListByPatient(_ context.Context, _ string) ([]prescriptions.Prescription, error) {
	if f.err != nil {
		return nil, f.err
	}
	return append(append([]prescriptions.Prescription{}, f.dated...), f.undated...), nil
}

func (f fakeSource) ListUndatedByPatient(_ context.Context, _ string) ([]prescriptions.Prescription, error) {
	return f.undated, f.err
}

type recorderStub struct {
	calls              int
	courses, items, tr int
}

func (r *recorderStub) ObserveConsolidation(courses, items, truncated int, _ time.Duration) {
	r.calls++
	r.courses, r.items, r.tr = courses, items, truncated
}

func TestService_Timeline(t *testing.T) {
	src := fakeSource{
		dated: []prescriptions.Prescription{
			course("b", "aspirin", "2024-01-05", days(5)),
			course("a", "aspirin", "2024-01-01", days(10)),
		},
		undated: []prescriptions.Prescription{course("u", "aspirin", "", days(3))},
	}
	rec := &recorderStub{}
	svc := NewService(src, nil).WithRecorder(rec)

	items, err := svc.Timeline(context.Background(), "p1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].PrescriptionID != "a" || !items[0].Truncated {
		t.Fatalf("expected a first and truncated, got %+v", items[0])
	}
	if rec.calls != 1 || rec.courses != 3 || rec.items != 2 || rec.tr != 1 {
		t.Fatalf("unexpected recorder state %+v", rec)
	}
}

func TestService_Undated(t *testing.T) {
	undated := []prescriptions.Prescription{course("u", "aspirin", "", days(3))}
	svc := NewService(fakeSource{undated: undated}, nil)

	got, err := svc.Undated(context.Background(), "p1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].ID != "u" || len(got[0].Dosages) != 1 {
		t.Fatalf("expected undated course unmodified, got %+v", got)
	}
}

func TestService_SourceError(t *testing.T) {
	boom := errors.New("boom")
	svc := NewService(fakeSource{err: boom}, nil)

	if _, err := svc.Timeline(context.Background(), "p1"); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped source error, got %v", err)
	}
	if _, err := svc.Conflicts(context.Background(), "p1"); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped source error, got %v", err)
	}
}

func TestService_WarnsOnlyForSkippedDatedCourses(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	src := fakeSource{
		dated: []prescriptions.Prescription{
			course("ok", "aspirin", "2024-01-01", days(2)),
			course("sin-med", " ", "2024-01-01", days(2)),
		},
		undated: []prescriptions.Prescription{course("u", "", "", days(1))},
	}

	items, err := NewService(src, zap.New(core)).Timeline(context.Background(), "p1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}

	entries := logs.All()
	if len(entries) != 1 || entries[0].ContextMap()["prescription_id"] != "sin-med" {
		t.Fatalf("expected one warning for the skipped dated course, got %+v", entries)
	}
}

package prescriptions

import (
	"testing"
	"time"
)

func TestMergeCarryForward_FillsBlankFieldsFromLatestNonEmpty(t *testing.T) {
	history := []DosageSchedule{
		{Sequence: 2, Dose: "", Frequency: "twice daily", Route: RouteOral},
		{Sequence: 1, Dose: "100mg", Frequency: "daily", Route: RouteIntravenous},
	}

	got := MergeCarryForward(history, DosageSchedule{Duration: 24 * time.Hour})

	if got.Dose != "100mg" {
		t.Fatalf("dose: expected carry from seq 1, got %q", got.Dose)
	}
	if got.Frequency != "twice daily" {
		t.Fatalf("frequency: expected latest, got %q", got.Frequency)
	}
	if got.Route != RouteOral {
		t.Fatalf("route: expected latest, got %q", got.Route)
	}
	if got.Duration != 24*time.Hour {
		t.Fatalf("duration must not be touched, got %v", got.Duration)
	}
}

func TestMergeCarryForward_KeepsExplicitValues(t *testing.T) {
	history := []DosageSchedule{{Sequence: 1, Dose: "100mg", Frequency: "daily", Route: RouteOral}}

	got := MergeCarryForward(history, DosageSchedule{Dose: "200mg", Frequency: "hourly", Route: RouteTopical})
	if got.Dose != "200mg" || got.Frequency != "hourly" || got.Route != RouteTopical {
		t.Fatalf("explicit values overwritten: %+v", got)
	}
}

func TestCurrentDosage(t *testing.T) {
	if _, ok := CurrentDosage(nil); ok {
		t.Fatalf("expected no current dosage for empty list")
	}

	ds := []DosageSchedule{
		{ID: "b", Sequence: 3, Dose: "300mg"},
		{ID: "a", Sequence: 1, Dose: "100mg"},
		{ID: "c", Sequence: 2, Dose: "200mg"},
	}
	cur, ok := CurrentDosage(ds)
	if !ok || cur.ID != "b" {
		t.Fatalf("expected latest sequence, got %+v", cur)
	}
	if ds[0].ID != "b" || ds[1].ID != "a" {
		t.Fatalf("input must not be reordered")
	}
}

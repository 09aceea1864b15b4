package timeline

import (
	"math"
	"reflect"
	"testing"
	"time"

	"medication-timeline/internal/domain/prescriptions"
)

func date(s string) *time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return &t
}

func days(n int) time.Duration { return time.Duration(n) * 24 * time.Hour }

func course(id, medID, start string, durations ...time.Duration) prescriptions.Prescription {
	p := prescriptions.Prescription{
		ID:         id,
		Medication: prescriptions.MedicationRef{ID: medID, Name: "med-" + medID},
	}
	if start != "" {
		p.StartDate = date(start)
	}
	for i, d := range durations {
		p.Dosages = append(p.Dosages, prescriptions.DosageSchedule{
			ID:       id + "-d",
			Sequence: i + 1,
			Dose:     "100mg",
			Duration: d,
		})
	}
	return p
}

func byID(items []Item) map[string]Item {
	out := make(map[string]Item, len(items))
	for _, it := range items {
		out[it.PrescriptionID] = it
	}
	return out
}

func TestTotalDuration(t *testing.T) {
	cases := []struct {
		name string
		in   []time.Duration
		want time.Duration
	}{
		{"sin tramos", nil, 0},
		{"un tramo", []time.Duration{days(10)}, days(10)},
		{"varios tramos", []time.Duration{days(3), days(4), 6 * time.Hour}, days(7) + 6*time.Hour},
		{"negativo cuenta cero", []time.Duration{days(5), -days(2)}, days(5)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := course("x", "m", "2024-01-01", tc.in...)
			if got := TotalDuration(p.Dosages); got != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestNaturalEndDate(t *testing.T) {
	p := course("a", "m", "2024-01-01", days(10))
	end, ok := NaturalEndDate(p)
	if !ok || !end.Equal(*date("2024-01-11")) {
		t.Fatalf("expected 2024-01-11, got %v (ok=%v)", end, ok)
	}

	// sólo días completos mueven la fecha
	p = course("b", "m", "2024-01-01", days(2)+23*time.Hour)
	end, _ = NaturalEndDate(p)
	if !end.Equal(*date("2024-01-03")) {
		t.Fatalf("expected 2024-01-03, got %v", end)
	}

	if _, ok := NaturalEndDate(course("c", "m", "", days(3))); ok {
		t.Fatalf("expected no natural end without start date")
	}
}

func TestConsolidate_SingleCourse(t *testing.T) {
	items := Consolidate([]prescriptions.Prescription{
		course("a", "aspirin", "2024-01-01", days(10)),
	})

	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	it := items[0]
	if !it.EndDate.Equal(*date("2024-01-11")) || !it.NaturalEndDate.Equal(*date("2024-01-11")) {
		t.Fatalf("unexpected end dates: %v / %v", it.EndDate, it.NaturalEndDate)
	}
	if it.Truncated {
		t.Fatalf("single course must not be truncated")
	}
}

func TestConsolidate_SuccessorTruncates(t *testing.T) {
	items := byID(Consolidate([]prescriptions.Prescription{
		course("a", "aspirin", "2024-01-01", days(10)),
		course("b", "aspirin", "2024-01-05", days(5)),
	}))

	a, b := items["a"], items["b"]
	if !a.Truncated || !a.EndDate.Equal(*date("2024-01-05")) {
		t.Fatalf("expected a truncated at 2024-01-05, got %v truncated=%v", a.EndDate, a.Truncated)
	}
	if !a.NaturalEndDate.Equal(*date("2024-01-11")) {
		t.Fatalf("natural end must stay 2024-01-11, got %v", a.NaturalEndDate)
	}
	if b.Truncated || !b.EndDate.Equal(*date("2024-01-10")) {
		t.Fatalf("expected b untouched until 2024-01-10, got %v truncated=%v", b.EndDate, b.Truncated)
	}
}

func TestConsolidate_BackToBackNotTruncated(t *testing.T) {
	items := byID(Consolidate([]prescriptions.Prescription{
		course("a", "aspirin", "2024-01-01", days(5)),
		course("b", "aspirin", "2024-01-06", days(3)),
	}))

	a := items["a"]
	if a.Truncated || !a.EndDate.Equal(*date("2024-01-06")) {
		t.Fatalf("expected a not truncated ending 2024-01-06, got %v truncated=%v", a.EndDate, a.Truncated)
	}
}

func TestConsolidate_ZeroSegments(t *testing.T) {
	items := Consolidate([]prescriptions.Prescription{
		course("a", "aspirin", "2024-02-01"),
	})

	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	it := items[0]
	if !it.EndDate.Equal(*date("2024-02-01")) || !it.NaturalEndDate.Equal(*date("2024-02-01")) || it.Truncated {
		t.Fatalf("unexpected item: %+v", it)
	}
	if it.Dosages == nil || len(it.Dosages) != 0 {
		t.Fatalf("expected empty dosage list, got %v", it.Dosages)
	}
}

func TestConsolidate_UndatedExcluded(t *testing.T) {
	items := Consolidate([]prescriptions.Prescription{
		course("a", "aspirin", "", days(5)),
		course("b", "aspirin", "2024-01-01", days(5)),
	})

	if len(items) != 1 || items[0].PrescriptionID != "b" {
		t.Fatalf("expected only b, got %+v", items)
	}
}

func TestConsolidate_DifferentMedicationsIndependent(t *testing.T) {
	items := byID(Consolidate([]prescriptions.Prescription{
		course("a", "aspirin", "2024-01-01", days(10)),
		course("b", "ibuprofen", "2024-01-03", days(10)),
	}))

	if items["a"].Truncated || items["b"].Truncated {
		t.Fatalf("different medications must not truncate each other")
	}
}

func TestConsolidate_OnlyImmediateSuccessor(t *testing.T) {
	// a termina el 31; b empieza el 5 y termina el 7; c empieza el 20.
	// a se corta por b (no por c); b no se corta.
	items := byID(Consolidate([]prescriptions.Prescription{
		course("c", "m", "2024-01-20", days(5)),
		course("a", "m", "2024-01-01", days(30)),
		course("b", "m", "2024-01-05", days(2)),
	}))

	if !items["a"].EndDate.Equal(*date("2024-01-05")) || !items["a"].Truncated {
		t.Fatalf("expected a cut at b's start, got %+v", items["a"])
	}
	if items["b"].Truncated {
		t.Fatalf("b ends before c starts, got %+v", items["b"])
	}
	if items["c"].Truncated {
		t.Fatalf("c has no successor, got %+v", items["c"])
	}
}

func TestConsolidate_KeepsInputOrder(t *testing.T) {
	items := Consolidate([]prescriptions.Prescription{
		course("late", "m", "2024-03-01", days(1)),
		course("early", "m", "2024-01-01", days(1)),
	})

	if items[0].PrescriptionID != "late" || items[1].PrescriptionID != "early" {
		t.Fatalf("expected input order, got %s, %s", items[0].PrescriptionID, items[1].PrescriptionID)
	}
}

func TestConsolidate_EqualStartClampsToStart(t *testing.T) {
	// Mismo inicio: orden estable, la primera se corta en su propio inicio.
	items := byID(Consolidate([]prescriptions.Prescription{
		course("first", "m", "2024-01-01", days(10)),
		course("second", "m", "2024-01-01", days(3)),
	}))

	first := items["first"]
	if !first.Truncated || !first.EndDate.Equal(*date("2024-01-01")) {
		t.Fatalf("expected first clamped to its start, got %+v", first)
	}
	if items["second"].Truncated {
		t.Fatalf("second has no successor")
	}
}

func TestConsolidate_ZeroDurationNeverTruncatedBySuccessor(t *testing.T) {
	items := byID(Consolidate([]prescriptions.Prescription{
		course("a", "m", "2024-01-01"),
		course("b", "m", "2024-01-01", days(4)),
	}))

	if items["a"].Truncated {
		t.Fatalf("zero-length course must not be flagged, got %+v", items["a"])
	}
}

func TestConsolidate_DuplicateIDs(t *testing.T) {
	items := Consolidate([]prescriptions.Prescription{
		course("dup", "m", "2024-01-01", days(10)),
		course("dup", "m", "2024-01-05", days(2)),
	})

	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if !items[0].Truncated || items[1].Truncated {
		t.Fatalf("expected only the first duplicate truncated, got %+v", items)
	}
}

func TestConsolidate_SkipsCourseWithoutMedication(t *testing.T) {
	items := Consolidate([]prescriptions.Prescription{
		course("orphan", "", "2024-01-01", days(3)),
		course("ok", "m", "2024-01-01", days(3)),
	})

	if len(items) != 1 || items[0].PrescriptionID != "ok" {
		t.Fatalf("expected only ok, got %+v", items)
	}
}

func TestConsolidate_NegativeDurationTreatedAsZero(t *testing.T) {
	items := Consolidate([]prescriptions.Prescription{
		course("a", "m", "2024-01-01", -days(4), days(2)),
	})

	if !items[0].NaturalEndDate.Equal(*date("2024-01-03")) {
		t.Fatalf("expected 2024-01-03, got %v", items[0].NaturalEndDate)
	}
}

func TestConsolidate_HugeDurationsNeverEndBeforeStart(t *testing.T) {
	huge := prescriptions.DaysToDuration(100000)
	courses := []prescriptions.Prescription{
		course("a", "m", "2024-01-01", huge, huge),
		course("b", "n", "2024-01-01", math.MaxInt64, time.Hour),
		course("c", "m", "2030-06-01", days(3)),
	}

	if got := TotalDuration(courses[0].Dosages); got != math.MaxInt64 {
		t.Fatalf("expected saturated total, got %v", got)
	}

	got := byID(Consolidate(courses))
	for id, it := range got {
		if it.NaturalEndDate.Before(it.StartDate) || it.EndDate.Before(it.StartDate) {
			t.Fatalf("%s: end before start: %+v", id, it)
		}
	}

	// El sucesor sigue cortando al curso saturado.
	if !got["a"].Truncated || !got["a"].EndDate.Equal(*date("2030-06-01")) {
		t.Fatalf("expected a truncated at 2030-06-01, got %+v", got["a"])
	}
}

func TestConsolidate_NilInput(t *testing.T) {
	items := Consolidate(nil)
	if items == nil || len(items) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", items)
	}
}

func TestConsolidate_Properties(t *testing.T) {
	input := []prescriptions.Prescription{
		course("a", "m", "2024-01-10", days(7)),
		course("b", "m", "2024-01-01", days(12)),
		course("c", "m", "2024-01-15", days(1)),
		course("d", "n", "2024-01-02", days(30)),
		course("e", "m", ""),
		course("f", "n", "2024-01-02", days(2)),
	}
	snapshot := make([]prescriptions.Prescription, len(input))
	copy(snapshot, input)

	first := Consolidate(input)
	second := Consolidate(input)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("consolidation must be idempotent")
	}
	if !reflect.DeepEqual(input, snapshot) {
		t.Fatalf("input must not be modified")
	}

	for _, it := range first {
		if it.PrescriptionID == "e" {
			t.Fatalf("undated course in output")
		}
		if it.EndDate.After(it.NaturalEndDate) {
			t.Fatalf("%s: effective end after natural end", it.PrescriptionID)
		}
		if it.Truncated != it.EndDate.Before(it.NaturalEndDate) {
			t.Fatalf("%s: flag does not match dates", it.PrescriptionID)
		}
		if it.EndDate.Before(it.StartDate) {
			t.Fatalf("%s: effective end before start", it.PrescriptionID)
		}
	}

	// no solapamiento entre contiguas del mismo medicamento
	sorted := make([]Item, len(first))
	copy(sorted, first)
	SortForDisplay(sorted)
	last := map[string]Item{}
	for _, it := range sorted {
		if prev, ok := last[it.MedicationID]; ok && prev.EndDate.After(it.StartDate) {
			t.Fatalf("%s overlaps %s", prev.PrescriptionID, it.PrescriptionID)
		}
		last[it.MedicationID] = it
	}
}

func TestSortForDisplay(t *testing.T) {
	items := []Item{
		{PrescriptionID: "3", Medication: "Ibuprofen", StartDate: *date("2024-01-02")},
		{PrescriptionID: "2", Medication: "Aspirin", StartDate: *date("2024-01-02")},
		{PrescriptionID: "1", Medication: "Zinc", StartDate: *date("2024-01-01")},
		{PrescriptionID: "4", Medication: "Aspirin", StartDate: *date("2024-01-02")},
	}
	SortForDisplay(items)

	got := []string{items[0].PrescriptionID, items[1].PrescriptionID, items[2].PrescriptionID, items[3].PrescriptionID}
	want := []string{"1", "2", "4", "3"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

package timeline

import (
	"testing"

	"medication-timeline/internal/domain/prescriptions"
)

func withFacility(p prescriptions.Prescription, id string) prescriptions.Prescription {
	p.Facility = &prescriptions.FacilityRef{ID: id, Name: "fac-" + id}
	return p
}

func TestDetectConflicts(t *testing.T) {
	cases := []struct {
		name    string
		courses []prescriptions.Prescription
		want    int
	}{
		{
			name: "centros distintos solapados",
			courses: []prescriptions.Prescription{
				withFacility(course("a", "m", "2024-01-01", days(10)), "f1"),
				withFacility(course("b", "m", "2024-01-05", days(5)), "f2"),
			},
			want: 1,
		},
		{
			name: "mismo centro",
			courses: []prescriptions.Prescription{
				withFacility(course("a", "m", "2024-01-01", days(10)), "f1"),
				withFacility(course("b", "m", "2024-01-05", days(5)), "f1"),
			},
			want: 0,
		},
		{
			name: "ambos sin centro",
			courses: []prescriptions.Prescription{
				course("a", "m", "2024-01-01", days(10)),
				course("b", "m", "2024-01-05", days(5)),
			},
			want: 0,
		},
		{
			name: "uno sin centro",
			courses: []prescriptions.Prescription{
				withFacility(course("a", "m", "2024-01-01", days(10)), "f1"),
				course("b", "m", "2024-01-05", days(5)),
			},
			want: 1,
		},
		{
			name: "rangos que se tocan cuentan",
			courses: []prescriptions.Prescription{
				withFacility(course("a", "m", "2024-01-01", days(5)), "f1"),
				withFacility(course("b", "m", "2024-01-06", days(3)), "f2"),
			},
			want: 1,
		},
		{
			name: "sin solapamiento",
			courses: []prescriptions.Prescription{
				withFacility(course("a", "m", "2024-01-01", days(5)), "f1"),
				withFacility(course("b", "m", "2024-01-07", days(3)), "f2"),
			},
			want: 0,
		},
		{
			name: "medicamentos distintos",
			courses: []prescriptions.Prescription{
				withFacility(course("a", "m", "2024-01-01", days(10)), "f1"),
				withFacility(course("b", "n", "2024-01-05", days(5)), "f2"),
			},
			want: 0,
		},
		{
			name: "todos los pares, no sólo contiguos",
			courses: []prescriptions.Prescription{
				withFacility(course("a", "m", "2024-01-01", days(30)), "f1"),
				withFacility(course("b", "m", "2024-01-05", days(2)), "f1"),
				withFacility(course("c", "m", "2024-01-20", days(5)), "f2"),
			},
			want: 1, // a-c; b no toca c y comparte centro con a
		},
		{
			name: "sin fecha se ignora",
			courses: []prescriptions.Prescription{
				withFacility(course("a", "m", "", days(10)), "f1"),
				withFacility(course("b", "m", "2024-01-05", days(5)), "f2"),
			},
			want: 0,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := DetectConflicts(tc.courses)
			if len(got) != tc.want {
				t.Fatalf("expected %d conflicts, got %d: %+v", tc.want, len(got), got)
			}
		})
	}
}

func TestDetectConflicts_OverlapWindow(t *testing.T) {
	got := DetectConflicts([]prescriptions.Prescription{
		withFacility(course("b", "m", "2024-01-05", days(5)), "f2"),
		withFacility(course("a", "m", "2024-01-01", days(10)), "f1"),
	})
	if len(got) != 1 {
		t.Fatalf("expected 1 conflict, got %d", len(got))
	}

	c := got[0]
	if c.PrescriptionID != "a" || c.OtherPrescriptionID != "b" {
		t.Fatalf("expected pair ordered by start date, got %s/%s", c.PrescriptionID, c.OtherPrescriptionID)
	}
	if !c.OverlapStart.Equal(*date("2024-01-05")) || !c.OverlapEnd.Equal(*date("2024-01-10")) {
		t.Fatalf("unexpected overlap window %v - %v", c.OverlapStart, c.OverlapEnd)
	}
	if c.Facility.ID != "f1" || c.OtherFacility.ID != "f2" {
		t.Fatalf("unexpected facilities %+v / %+v", c.Facility, c.OtherFacility)
	}
}

func TestDetectConflicts_DoesNotAffectTimeline(t *testing.T) {
	courses := []prescriptions.Prescription{
		withFacility(course("a", "m", "2024-01-01", days(5)), "f1"),
		withFacility(course("b", "m", "2024-01-06", days(3)), "f2"),
	}
	_ = DetectConflicts(courses)

	items := byID(Consolidate(courses))
	if items["a"].Truncated {
		t.Fatalf("conflict detection must not change consolidation")
	}
}

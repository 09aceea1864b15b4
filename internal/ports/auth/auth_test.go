package auth

import "testing"

func TestClaimsContributor(t *testing.T) {
	cases := []struct {
		claims Claims
		want   string
	}{
		{Claims{UserID: "u1", Email: "a@b.c", Name: "Dr. Ruiz"}, "Dr. Ruiz"},
		{Claims{UserID: "u1", Email: "a@b.c", Name: "  "}, "a@b.c"},
		{Claims{UserID: "u1"}, "u1"},
		{Claims{}, ""},
	}
	for _, tc := range cases {
		if got := tc.claims.Contributor(); got != tc.want {
			t.Fatalf("Contributor(%+v) = %q, want %q", tc.claims, got, tc.want)
		}
	}
}

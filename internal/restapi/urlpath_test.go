package restapi

import "testing"

func TestDeriveURL(t *testing.T) {
	cases := []struct {
		name     string
		filePath string
		want     string
	}{
		{"pages index file", "web/pages/api/users/index.ts", "/api/users"},
		{"pages named file", "web/pages/api/users/detail.ts", "/api/users/detail"},
		{"app route file", "web/app/api/users/route.ts", "/api/users"},
		{"app nested route", "web/app/api/users/orders/route.tsx", "/api/users/orders"},
		{"already canonical", "web/app/api/users", "/api/users"},
		{"root api route", "web/app/api/route.ts", "/api"},
		{"no api segment", "web/src/components/button.ts", ""},
		{"javascript file", "web/pages/api/health.js", "/api/health"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := DeriveURL(tc.filePath); got != tc.want {
				t.Errorf("DeriveURL(%q) = %q, want %q", tc.filePath, got, tc.want)
			}
		})
	}
}

func TestDeriveURLIdempotent(t *testing.T) {
	stripped := DeriveURL("web/app/api/users/route.ts")
	again := DeriveURL(stripped)
	if stripped != again {
		t.Errorf("derivation not idempotent: first %q, second %q", stripped, again)
	}
}

func TestClassifyRoute(t *testing.T) {
	cases := []struct {
		filePath string
		want     Convention
	}{
		{"web/pages/api/users/index.ts", ConventionPagesRouter},
		{"web/app/api/users/route.ts", ConventionAppRouter},
		{"web/src/lib/client.ts", ConventionNone},
		{"web/Pages/API/users.ts", ConventionNone}, // match is case-sensitive
	}
	for _, tc := range cases {
		if got := ClassifyRoute(tc.filePath); got != tc.want {
			t.Errorf("ClassifyRoute(%q) = %q, want %q", tc.filePath, got, tc.want)
		}
	}
}

func TestIsRouteFile(t *testing.T) {
	cases := []struct {
		filePath string
		want     bool
	}{
		{"web/app/api/users/route.ts", true},
		{"web/app/api/users/route.tsx", true},
		{"web/app/api/users/route.js", true},
		{"web/app/api/users/handler.ts", false},
		{"web/app/api/users/route.css", false},
		{"web/app/api/users/route", false},
	}
	for _, tc := range cases {
		if got := IsRouteFile(tc.filePath); got != tc.want {
			t.Errorf("IsRouteFile(%q) = %v, want %v", tc.filePath, got, tc.want)
		}
	}
}

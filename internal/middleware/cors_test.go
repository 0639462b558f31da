package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCORS(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusTeapot) })
	cases := []struct {
		name        string
		allowed     []string
		origin      string
		preflight   bool
		wantStatus  int
		wantOrigin  string
		wantCreds   string
		wantMethods bool
	}{
		{"listed simple", []string{"https://app.example.com/"}, "https://app.example.com", false, http.StatusTeapot, "https://app.example.com", "true", false},
		{"listed preflight", []string{"https://app.example.com"}, "https://app.example.com", true, http.StatusNoContent, "https://app.example.com", "true", true},
		{"unlisted", []string{"https://app.example.com"}, "https://evil.example.com", false, http.StatusTeapot, "", "", false},
		{"unlisted preflight", []string{"https://app.example.com"}, "https://evil.example.com", true, http.StatusNoContent, "", "", false},
		{"wildcard", []string{"*"}, "https://any.example.com", true, http.StatusNoContent, "*", "", true},
		{"no origin", []string{"*"}, "", false, http.StatusTeapot, "", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			method := http.MethodGet
			if tc.preflight {
				method = http.MethodOptions
			}
			req := httptest.NewRequest(method, "/v1/me", nil)
			if tc.origin != "" {
				req.Header.Set("Origin", tc.origin)
			}
			if tc.preflight {
				req.Header.Set("Access-Control-Request-Method", http.MethodPatch)
			}
			rec := httptest.NewRecorder()
			CORS(tc.allowed)(next).ServeHTTP(rec, req)

			if rec.Code != tc.wantStatus {
				t.Fatalf("status = %d", rec.Code)
			}
			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != tc.wantOrigin {
				t.Fatalf("allow origin = %q", got)
			}
			if got := rec.Header().Get("Access-Control-Allow-Credentials"); got != tc.wantCreds {
				t.Fatalf("credentials = %q", got)
			}
			if got := rec.Header().Get("Access-Control-Allow-Methods") != ""; got != tc.wantMethods {
				t.Fatalf("methods present = %v", got)
			}
		})
	}
}

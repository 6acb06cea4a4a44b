package middleware

import (
	"net/http"
	"strings"
)

// MethodOverrideField is the hidden form field HTML forms use to send
// PATCH and DELETE.
const MethodOverrideField = "_method"

// MethodOverride rewrites POST requests carrying _method=PATCH|PUT|DELETE.
// It must run before routing.
func MethodOverride(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			switch m := strings.ToUpper(r.PostFormValue(MethodOverrideField)); m {
			case http.MethodPatch, http.MethodPut, http.MethodDelete:
				r.Method = m
			}
		}
		next.ServeHTTP(w, r)
	})
}

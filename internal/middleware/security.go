// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import "net/http"

// SecureHeaders adds hardening headers to every response. The API serves
// JSON only, so the framing and sniffing policies can be strict.
func SecureHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()

		// JSON must never be MIME-sniffed into something executable.
		h.Set("X-Content-Type-Options", "nosniff")

		// Nothing here is meant to render inside a frame.
		h.Set("X-Frame-Options", "DENY")

		// The legacy XSS filter does more harm than good.
		h.Set("X-XSS-Protection", "0")

		// Keep referrer leakage to cross-origin targets minimal.
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")

		// Opt out of FLoC cohort calculations.
		h.Set("Permissions-Policy", "interest-cohort=()")

		next.ServeHTTP(w, r)
	})
}

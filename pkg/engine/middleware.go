package engine

import (
	"log"
	"net/http"
)

// Middleware classifies every request before handing it to next. A waking
// request refreshes the activity marker and, when it moves the engine out of
// IDLE, triggers an immediate tick.
func (e *Engine) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if wake, reason := e.classifier.Classify(r.Context(), r.Method, r.URL.Path); wake {
			woke, err := e.machine.Wake(r.Context(), reason)
			if err != nil {
				log.Printf("Error waking monitor for %s %s: %v", r.Method, r.URL.Path, err)
			}

			if woke {
				e.Kick()
			}
		}

		next.ServeHTTP(w, r)
	})
}

package handler

import (
	"log"
	"net/http"
)

// Quit returns a handler that acknowledges the request and then calls stop
// to shut the server down
func Quit(stop func()) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Printf("Shutdown requested by %s", r.RemoteAddr)
		writeJSON(w, map[string]string{"status": "shutting down"}, http.StatusOK)
		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
		stop()
	}
}

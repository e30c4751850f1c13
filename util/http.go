package util

import (
	"net/http"
	"strings"
)

type prefixedResponseWriter struct {
	http.ResponseWriter
	prefix string // without trailing slash
}

// WriteHeader shadows and calls http.ResponseWriter.WriteHeader.
func (w prefixedResponseWriter) WriteHeader(statusCode int) {
	// modify Location header, absolute locations only
	if w.prefix != "" {
		if location := w.Header().Get("Location"); len(location) > 0 && location[0] == '/' {
			w.Header().Set("Location", w.prefix+location)
		}
	}
	w.ResponseWriter.WriteHeader(statusCode)
}

// StripPrefix removes the prefix from request paths and prepends it to absolute redirect locations.
// Requests outside of the prefix get a 404.
func StripPrefix(prefix string, handler http.Handler) http.Handler {
	prefix = strings.TrimSuffix(prefix, "/")
	if prefix == "" {
		return handler
	}
	return http.StripPrefix(
		prefix,
		http.HandlerFunc(
			func(w http.ResponseWriter, r *http.Request) {
				switch {
				case r.URL.Path == "":
					r.URL.Path = "/"
				case r.URL.Path[0] != '/': // like "/notesfoo" with prefix "/notes"
					http.NotFound(w, r)
					return
				}
				handler.ServeHTTP(prefixedResponseWriter{w, prefix}, r)
			},
		),
	)
}

package testbackend

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
)

func (b *Backend) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		r.Body = io.NopCloser(bytes.NewReader(raw))

		req := Request{
			Method:        r.Method,
			Path:          r.URL.Path,
			Query:         r.URL.RawQuery,
			Authorization: r.Header.Get("Authorization"),
			RequestID:     r.Header.Get("X-Request-ID"),
			ContentType:   r.Header.Get("Content-Type"),
		}
		if len(raw) > 0 {
			_ = json.Unmarshal(raw, &req.Body)
		}

		b.mu.Lock()
		b.requests = append(b.requests, req)
		gate := b.gate
		b.mu.Unlock()

		if gate != nil {
			select {
			case <-gate:
			case <-r.Context().Done():
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (b *Backend) applyOverrides(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		o, ok := b.overrides[r.Method+" "+r.URL.Path]
		b.mu.Unlock()

		if !ok {
			next.ServeHTTP(w, r)
			return
		}
		if raw, isRaw := o.body.(string); isRaw {
			w.WriteHeader(o.status)
			_, _ = io.WriteString(w, raw)
			return
		}
		writeJSON(w, o.status, o.body)
	})
}

package helpers

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"eventboard/internal/domain"
)

// Pagination query parameter defaults and limits.
const (
	DefaultPageSize = 10
	MaxPageSize     = 1000
)

// TimeLayout is the wire format for date-time query parameters and bodies.
const TimeLayout = "2006-01-02 15:04:05"

// ParsePagination reads from and size from the request query string, clamps
// them to valid ranges, and returns domain.Pagination. Invalid or missing
// values fall back to defaults.
func ParsePagination(r *http.Request) domain.Pagination {
	from := 0
	if s := r.URL.Query().Get("from"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v >= 0 {
			from = v
		}
	}
	size := DefaultPageSize
	if s := r.URL.Query().Get("size"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v >= 1 {
			size = v
			if size > MaxPageSize {
				size = MaxPageSize
			}
		}
	}
	return domain.Pagination{From: from, Size: size}
}

// PathID parses the named path parameter as a positive int64 id.
func PathID(r *http.Request, name string) (int64, bool) {
	raw := r.PathValue(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// QueryInt64s parses a repeated or comma-separated int64 query parameter.
func QueryInt64s(r *http.Request, name string) ([]int64, bool) {
	var out []int64
	for _, raw := range r.URL.Query()[name] {
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			v, err := strconv.ParseInt(part, 10, 64)
			if err != nil {
				return nil, false
			}
			out = append(out, v)
		}
	}
	return out, true
}

// QueryTime parses an optional date-time query parameter in TimeLayout.
func QueryTime(r *http.Request, name string) (*time.Time, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, true
	}
	t, err := time.Parse(TimeLayout, raw)
	if err != nil {
		return nil, false
	}
	return &t, true
}

// QueryBool parses an optional boolean query parameter.
func QueryBool(r *http.Request, name string) (*bool, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, true
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, false
	}
	return &v, true
}

// ClientIP extracts the caller's IP, preferring X-Forwarded-For when present.
func ClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if i := strings.IndexByte(fwd, ','); i >= 0 {
			fwd = fwd[:i]
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

package filegate

import (
	"fmt"
	"strconv"
	"strings"
)

// RangeWindow is the inclusive byte window of an object to serve for one
// request. Full is set when no Range header was present and the whole object
// is served with a 200-equivalent status.
type RangeWindow struct {
	Start int64
	End   int64
	Full  bool
}

// Length returns the number of bytes the window covers.
func (w RangeWindow) Length() int64 {
	return w.End - w.Start + 1
}

// ContentRange renders the Content-Range header value for a partial window.
func (w RangeWindow) ContentRange(totalSize int64) string {
	return fmt.Sprintf("bytes %d-%d/%d", w.Start, w.End, totalSize)
}

// ResolveRange parses an HTTP Range header against a known object size.
//
// An absent header yields the full window. A present header must be a single
// range of the form "bytes=<start>-<end>?": start is required, end defaults
// to size-1 when omitted and is clamped down to size-1 when it overshoots.
// A start at or beyond the object size fails with ErrRangeNotSatisfiable.
//
// Multi-range specs, suffix ranges ("bytes=-N") and anything else that does
// not parse as a single well-formed range are rejected outright with
// ErrRangeNotSatisfiable rather than silently served in full.
func ResolveRange(header string, totalSize int64) (RangeWindow, error) {
	if header == "" {
		return RangeWindow{Start: 0, End: totalSize - 1, Full: true}, nil
	}

	spec, ok := strings.CutPrefix(header, "bytes=")
	if !ok {
		return RangeWindow{}, fmt.Errorf("%w: unsupported unit in %q", ErrRangeNotSatisfiable, header)
	}

	if strings.Contains(spec, ",") {
		return RangeWindow{}, fmt.Errorf("%w: multi-range requests are not supported", ErrRangeNotSatisfiable)
	}

	startStr, endStr, found := strings.Cut(spec, "-")
	if !found || startStr == "" {
		return RangeWindow{}, fmt.Errorf("%w: malformed range %q", ErrRangeNotSatisfiable, header)
	}

	start, err := parseOffset(startStr)
	if err != nil {
		return RangeWindow{}, fmt.Errorf("%w: malformed range start %q", ErrRangeNotSatisfiable, startStr)
	}

	if start >= totalSize {
		return RangeWindow{}, fmt.Errorf("%w: start %d beyond object size %d", ErrRangeNotSatisfiable, start, totalSize)
	}

	end := totalSize - 1
	if endStr != "" {
		end, err = parseOffset(endStr)
		if err != nil {
			return RangeWindow{}, fmt.Errorf("%w: malformed range end %q", ErrRangeNotSatisfiable, endStr)
		}
		// lenient clamp: an overshooting end is trimmed, not rejected
		if end > totalSize-1 {
			end = totalSize - 1
		}
	}

	if end < start {
		return RangeWindow{}, fmt.Errorf("%w: end %d precedes start %d", ErrRangeNotSatisfiable, end, start)
	}

	return RangeWindow{Start: start, End: end}, nil
}

// parseOffset accepts plain decimal digits only; signs, whitespace and any
// other decoration ParseInt tolerates are treated as malformed.
func parseOffset(s string) (int64, error) {
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("non-digit %q", r)
		}
	}
	return strconv.ParseInt(s, 10, 64)
}

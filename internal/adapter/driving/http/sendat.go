package httphandler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// zonedLayouts carry their own UTC offset.
var zonedLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999Z0700",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04Z0700",
}

// localLayouts have no offset and are read as server local time, the way a
// browser reads a datetime-local value.
var localLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04",
}

// dateOnlyLayout is a bare calendar date, taken as midnight UTC.
const dateOnlyLayout = "2006-01-02"

// parseSendAt decodes the schedule request's sendAt value. A JSON number is
// epoch milliseconds (fractions truncated); a JSON string is an ISO 8601
// date/time with or without offset, or a bare date.
func parseSendAt(raw json.RawMessage) (time.Time, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return time.Time{}, errors.New("sendAt is required")
	}

	if raw[0] != '"' {
		ms, err := strconv.ParseFloat(string(raw), 64)
		if err != nil || math.IsInf(ms, 0) || math.IsNaN(ms) {
			return time.Time{}, fmt.Errorf("sendAt %s is not a valid date/time", raw)
		}
		return time.UnixMilli(int64(ms)), nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return time.Time{}, fmt.Errorf("sendAt %s is not a valid date/time", raw)
	}
	return parseSendAtString(s)
}

func parseSendAtString(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, errors.New("sendAt is required")
	}

	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	if t, err := time.Parse(dateOnlyLayout, s); err == nil {
		return t, nil
	}

	return time.Time{}, fmt.Errorf("sendAt %q is not a valid date/time", s)
}

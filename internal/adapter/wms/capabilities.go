package wms

import (
	"bytes"
	"encoding/xml"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/skycastlabs/radarloop/internal/domain"
)

// ParseTimeDimension extracts the time dimension from a WMS 1.3.0
// capabilities document. It returns ok=false for malformed XML, a missing
// time dimension, or a dimension whose contents cannot be parsed; callers
// fall back to a synthesized series in every one of those cases.
//
// Namespace handling is deliberately loose: the document is walked token by
// token and any element with local name "Dimension" and a name="time"
// attribute is accepted, whatever namespace prefix the server chose.
func ParseTimeDimension(doc []byte) (domain.TimeDimension, bool) {
	content, ok := findTimeDimension(doc)
	if !ok {
		return domain.TimeDimension{}, false
	}
	return parseDimensionContent(content)
}

func findTimeDimension(doc []byte) (string, bool) {
	decoder := xml.NewDecoder(bytes.NewReader(doc))
	for {
		tok, err := decoder.Token()
		if err != nil {
			return "", false
		}
		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "Dimension" {
			continue
		}
		if !hasTimeName(start.Attr) {
			continue
		}
		var content string
		if err := decoder.DecodeElement(&content, &start); err != nil {
			return "", false
		}
		return strings.TrimSpace(content), true
	}
}

func hasTimeName(attrs []xml.Attr) bool {
	for _, attr := range attrs {
		if attr.Name.Local == "name" && strings.EqualFold(strings.TrimSpace(attr.Value), "time") {
			return true
		}
	}
	return false
}

// parseDimensionContent understands the two encodings radar services use:
// a "start/end/period" range or a comma-separated list of instants.
func parseDimensionContent(content string) (domain.TimeDimension, bool) {
	if content == "" {
		return domain.TimeDimension{}, false
	}

	if strings.Contains(content, "/") {
		// Some servers advertise multiple ranges; the last one is current.
		ranges := strings.Split(content, ",")
		return parseRange(strings.TrimSpace(ranges[len(ranges)-1]))
	}

	parts := strings.Split(content, ",")
	times := make([]time.Time, 0, len(parts))
	for _, part := range parts {
		t, err := time.Parse(time.RFC3339, strings.TrimSpace(part))
		if err != nil {
			return domain.TimeDimension{}, false
		}
		times = append(times, t.UTC())
	}
	if len(times) == 0 {
		return domain.TimeDimension{}, false
	}
	sort.Slice(times, func(i, j int) bool { return times[i].Before(times[j]) })
	return domain.TimeDimension{Discrete: times}, true
}

func parseRange(s string) (domain.TimeDimension, bool) {
	parts := strings.Split(s, "/")
	if len(parts) != 3 {
		return domain.TimeDimension{}, false
	}
	start, err := time.Parse(time.RFC3339, strings.TrimSpace(parts[0]))
	if err != nil {
		return domain.TimeDimension{}, false
	}
	end, err := time.Parse(time.RFC3339, strings.TrimSpace(parts[1]))
	if err != nil {
		return domain.TimeDimension{}, false
	}
	step, ok := parsePeriod(strings.TrimSpace(parts[2]))
	if !ok {
		return domain.TimeDimension{}, false
	}
	if !start.Before(end) {
		return domain.TimeDimension{}, false
	}
	return domain.TimeDimension{Start: start.UTC(), End: end.UTC(), Step: step}, true
}

// parsePeriod accepts the restricted ISO-8601 duration forms PT<n>S, PT<n>M,
// and PT<n>H. Anything else (day periods, compound periods) is rejected.
func parsePeriod(s string) (time.Duration, bool) {
	if len(s) < 4 || !strings.HasPrefix(s, "PT") {
		return 0, false
	}
	digits := s[2 : len(s)-1]
	n, err := strconv.Atoi(digits)
	if err != nil || n <= 0 {
		return 0, false
	}
	switch s[len(s)-1] {
	case 'S':
		return time.Duration(n) * time.Second, true
	case 'M':
		return time.Duration(n) * time.Minute, true
	case 'H':
		return time.Duration(n) * time.Hour, true
	default:
		return 0, false
	}
}

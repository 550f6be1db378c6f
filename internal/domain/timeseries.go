package domain

import "time"

// InstantFormat is the ISO-8601 UTC second-precision layout used for WMS
// TIME parameters.
const InstantFormat = "2006-01-02T15:04:05Z"

// FormatInstant renders t as an ISO-8601 UTC instant with second precision.
func FormatInstant(t time.Time) string {
	return t.UTC().Truncate(time.Second).Format(InstantFormat)
}

// TimeDimension is the resolved time axis of a WMS layer: either a
// start/end/step range or an explicit list of instants. Immutable once
// resolved.
type TimeDimension struct {
	Start time.Time
	End   time.Time
	Step  time.Duration

	Discrete []time.Time
}

// IsRange reports whether the dimension carries a usable range form.
func (d TimeDimension) IsRange() bool {
	return d.Step > 0 && d.Start.Before(d.End)
}

// Series materializes up to n instants from the dimension, oldest first.
// For the range form it walks backward from End in Step increments,
// stopping before Start. For the discrete form it takes the last n
// instants. An empty or malformed dimension yields nil.
func (d TimeDimension) Series(n int) []time.Time {
	if n <= 0 {
		return nil
	}
	if d.IsRange() {
		out := make([]time.Time, 0, n)
		for t := d.End; len(out) < n && !t.Before(d.Start); t = t.Add(-d.Step) {
			out = append(out, t.UTC())
		}
		reverse(out)
		return out
	}
	if len(d.Discrete) > 0 {
		times := d.Discrete
		if len(times) > n {
			times = times[len(times)-n:]
		}
		out := make([]time.Time, len(times))
		for i, t := range times {
			out[i] = t.UTC()
		}
		return out
	}
	return nil
}

// SynthesizeSeries builds the discovery fallback: n instants spaced step
// apart, oldest first, ending at the package clock's current UTC time
// truncated to seconds. Used whenever the capabilities document cannot be
// fetched or parsed; it always returns exactly n instants.
func SynthesizeSeries(n int, step time.Duration) []time.Time {
	if n <= 0 {
		return nil
	}
	end := clock.Now().UTC().Truncate(time.Second)
	out := make([]time.Time, n)
	for i := 0; i < n; i++ {
		out[n-1-i] = end.Add(-time.Duration(i) * step)
	}
	return out
}

func reverse(ts []time.Time) {
	for i, j := 0, len(ts)-1; i < j; i, j = i+1, j-1 {
		ts[i], ts[j] = ts[j], ts[i]
	}
}

package imgresize

import (
	"encoding/csv"
	"strings"
	"time"
)

// Outcome implements interface Resulter.
// Holds the result of processing a single input: both artifact paths on
// success or the error that stopped processing.
type Outcome struct {
	Index        int
	Input        string
	Intermediate string
	Final        string
	Err          error
	Duration     time.Duration
}

// OK reports whether the input was processed successfully.
func (o *Outcome) OK() bool {
	return o.Err == nil
}

// Status returns "ok" or "failed".
func (o *Outcome) Status() string {
	if o.OK() {
		return "ok"
	}
	return "failed"
}

// String returns the human readable progress line.
func (o *Outcome) String() string {
	if o.OK() {
		return "Processed " + o.Input + ": Resized to " + o.Intermediate + ", Converted to " + o.Final
	}
	return "Error processing " + o.Input + ": " + o.Err.Error()
}

// Result returns a line in CSV format: "path","status","intermediate","final","error".
func (o *Outcome) Result() string {
	var errmsg string
	if o.Err != nil {
		errmsg = o.Err.Error()
	}
	return csvLine(o.Input, o.Status(), o.Intermediate, o.Final, errmsg)
}

// Header returns header in CSV format.
func (o *Outcome) Header() string {
	return csvLine("path", "status", "intermediate", "final", "error")
}

func csvLine(fields ...string) string {
	var sb strings.Builder
	w := csv.NewWriter(&sb)
	w.UseCRLF = false
	_ = w.Write(fields) // strings.Builder never fails.
	w.Flush()
	return sb.String()
}

// Stats holds aggregate counters of a batch run.
type Stats struct {
	Total     int
	Succeeded int
	Failed    int
	Duration  time.Duration
}

// NewStats counts outcomes.
func NewStats(outcomes []Outcome, dur time.Duration) Stats {
	st := Stats{Total: len(outcomes), Duration: dur}
	for i := range outcomes {
		if outcomes[i].OK() {
			st.Succeeded++
		} else {
			st.Failed++
		}
	}
	return st
}

// OK reports whether every input was processed successfully.
func (s Stats) OK() bool {
	return s.Failed == 0
}

package telemetry

import (
	"strings"
	"sync"
	"testing"
)

// Report is a single captured call on a Recorder.
type Report struct {
	Kind   string
	ID     string
	Params []any
}

// Recorder implements API by keeping every report in memory, it is meant to be used in tests
// to assert that breakages were (or were not) reported.
type Recorder struct {
	t       testing.TB
	mutex   *sync.Mutex
	reports *[]Report
}

// NewRecorder creates a Recorder, if `t` is not nil every report is also written to the test log.
func NewRecorder(t testing.TB) Recorder {
	return Recorder{
		t:       t,
		mutex:   &sync.Mutex{},
		reports: &[]Report{},
	}
}

func (r Recorder) record(kind, id string, params []any) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	*r.reports = append(*r.reports, Report{Kind: kind, ID: id, Params: params})
	if r.t != nil {
		r.t.Helper()
		r.t.Log(kind, id, params)
	}
}

func (r Recorder) ReportBroken(id string, params ...any) {
	r.record("broken", id, params)
}

func (r Recorder) ReportWarning(id string, params ...any) {
	r.record("warning", id, params)
}

func (r Recorder) ReportDebug(msg string, params ...any) {
	r.record("debug", msg, params)
}

func (r Recorder) ReportCount(id string, count int64) {
	r.record("count", id, []any{count})
}

// Reports returns a copy of every report of the given kind whose id contains `substr`.
func (r Recorder) Reports(kind, substr string) []Report {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	var out []Report
	for _, report := range *r.reports {
		if report.Kind == kind && strings.Contains(report.ID, substr) {
			out = append(out, report)
		}
	}
	return out
}

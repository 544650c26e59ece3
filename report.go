package osformula

import (
	"fmt"
	"time"

	"github.com/mateothegreat/osformula/scenario"
	"go.uber.org/multierr"
)

// PrepareCheck is the check name reported when a scenario cannot be merged
// onto the defaults, so none of its checks ran.
const PrepareCheck = "prepare"

// SetupCheck and TearDownCheck are the check names reported when an assertion
// in a Setup or TearDown hook fails.
const (
	SetupCheck    = "setup"
	TearDownCheck = "teardown"
)

type Status string

const (
	StatusPassed  Status = "passed"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// Result is the outcome of one check for one scenario on one platform.
type Result struct {
	Scenario scenario.Name
	Platform Platform
	Check    string
	Status   Status
	Err      error
	Duration time.Duration
}

func (r Result) String() string {
	s := fmt.Sprintf("%s/%s/%s: %s", r.Scenario, r.Platform, r.Check, r.Status)
	if r.Err != nil {
		s += ": " + r.Err.Error()
	}
	return s
}

type Report struct {
	Results []Result
}

func (r *Report) Count(status Status) int {
	return countStatus(r.Results, status)
}

func (r *Report) Failures() []Result {
	var out []Result
	for _, res := range r.Results {
		if res.Status == StatusFailed {
			out = append(out, res)
		}
	}
	return out
}

// Err combines every failure of the report, nil when nothing failed.
func (r *Report) Err() error {
	var err error
	for _, res := range r.Failures() {
		err = multierr.Append(err, fmt.Errorf("%s/%s/%s: %w", res.Scenario, res.Platform, res.Check, res.Err))
	}
	return err
}

func countStatus(results []Result, status Status) int {
	n := 0
	for _, r := range results {
		if r.Status == status {
			n++
		}
	}
	return n
}

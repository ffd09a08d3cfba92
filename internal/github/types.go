// Package github wraps the gh CLI for workflow, run, job and log access.
// All network access and authentication is delegated to gh; this package
// shells out and decodes its --json output.
package github

import (
	"fmt"
	"time"
)

// Workflow is a GitHub Actions workflow defined in the repository.
type Workflow struct {
	Name  string
	State string // active, disabled_manually, disabled_inactivity
}

// Run is one execution of a workflow.
type Run struct {
	ID         int64
	Number     int
	Title      string
	Branch     string
	SHA        string
	Status     string // completed, in_progress, queued
	Conclusion string // success, failure, cancelled, skipped
	CreatedAt  time.Time
	URL        string
}

// ShortSHA returns the abbreviated commit hash, or "unknown" when absent.
func (r Run) ShortSHA() string {
	if len(r.SHA) < 7 {
		if r.SHA == "" {
			return "unknown"
		}
		return r.SHA
	}
	return r.SHA[:7]
}

// FormattedDate returns the run creation time for list rows, or
// "unknown date" when absent.
func (r Run) FormattedDate() string {
	if r.CreatedAt.IsZero() {
		return "unknown date"
	}
	return r.CreatedAt.Local().Format("2006-01-02 15:04")
}

// Job is one job within a run.
type Job struct {
	ID          int64
	Name        string
	Status      string
	Conclusion  string
	StartedAt   time.Time
	CompletedAt time.Time
}

// Completed reports whether the job has finished; only completed jobs
// have immutable logs worth caching.
func (j Job) Completed() bool {
	return j.Status == "completed"
}

// Duration returns how long the job ran, zero when unknown or running.
func (j Job) Duration() time.Duration {
	if j.StartedAt.IsZero() || j.CompletedAt.IsZero() || j.CompletedAt.Before(j.StartedAt) {
		return 0
	}
	return j.CompletedAt.Sub(j.StartedAt)
}

// DurationString formats the job duration as "3m42s" or "42s", with "n/a"
// for jobs that have not finished.
func (j Job) DurationString() string {
	d := j.Duration()
	if d <= 0 {
		return "n/a"
	}
	d = d.Round(time.Second)
	if d >= time.Minute {
		return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%ds", int(d.Seconds()))
}

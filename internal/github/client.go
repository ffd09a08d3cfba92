package github

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"sort"
	"strconv"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/runlens/runlens/internal/logcache"
	"github.com/runlens/runlens/internal/logging"
)

// Options configures a Client.
type Options struct {
	// Repo is the owner/repo the client is bound to.
	Repo string
	// ListingTTL is how long workflow/run/job listings are reused.
	ListingTTL time.Duration
	// MaxCachedLogs bounds the persistent log cache; 0 is unlimited.
	MaxCachedLogs int
	// Logs persists completed-job logs. Nil disables persistence.
	Logs *logcache.Cache
}

// Client wraps the gh CLI for one repository. Listings are memoised for
// the configured TTL; completed-job logs go to the persistent cache.
type Client struct {
	repo          string
	listings      *gocache.Cache
	logs          *logcache.Cache
	maxCachedLogs int
}

// NewClient creates a client bound to opts.Repo.
func NewClient(opts Options) *Client {
	ttl := opts.ListingTTL
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &Client{
		repo:          opts.Repo,
		listings:      gocache.New(ttl, 2*ttl),
		logs:          opts.Logs,
		maxCachedLogs: opts.MaxCachedLogs,
	}
}

// Repo returns the owner/repo the client is bound to.
func (c *Client) Repo() string {
	return c.repo
}

// Refresh drops every memoised listing so the next calls hit gh again.
func (c *Client) Refresh() {
	c.listings.Flush()
}

// Workflows lists the workflows defined in the repository.
func (c *Client) Workflows(ctx context.Context) ([]Workflow, error) {
	const key = "workflows"
	if cached, ok := c.listings.Get(key); ok {
		return cached.([]Workflow), nil
	}

	cmd := exec.CommandContext(ctx, "gh", "workflow", "list",
		"--repo", c.repo,
		"--limit", "100",
		"--json", "name,state")
	output, err := cmd.Output()
	if err != nil {
		logging.Error("gh workflow list failed", "error", err, "repo", c.repo)
		return nil, fmt.Errorf("gh workflow list failed: %w", err)
	}

	var raw []struct {
		Name  string `json:"name"`
		State string `json:"state"`
	}
	if err := json.Unmarshal(output, &raw); err != nil {
		return nil, fmt.Errorf("parse workflow list: %w", err)
	}

	workflows := make([]Workflow, len(raw))
	for i, w := range raw {
		workflows[i] = Workflow{Name: w.Name, State: w.State}
	}
	logging.Debug("listed workflows", "repo", c.repo, "count", len(workflows))

	c.listings.Set(key, workflows, gocache.DefaultExpiration)
	return workflows, nil
}

// Runs lists recent runs of a workflow, newest first. An empty status
// lists runs in every state.
func (c *Client) Runs(ctx context.Context, workflow string, limit int, status string) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	key := fmt.Sprintf("runs\x00%s\x00%d\x00%s", workflow, limit, status)
	if cached, ok := c.listings.Get(key); ok {
		return cached.([]Run), nil
	}

	args := []string{"run", "list",
		"--repo", c.repo,
		"--workflow", workflow,
		"--limit", strconv.Itoa(limit),
		"--json", "databaseId,number,displayTitle,headBranch,headSha,status,conclusion,createdAt,url"}
	if status != "" {
		args = append(args, "--status", status)
	}
	cmd := exec.CommandContext(ctx, "gh", args...)
	output, err := cmd.Output()
	if err != nil {
		logging.Error("gh run list failed", "error", err, "repo", c.repo, "workflow", workflow)
		return nil, fmt.Errorf("gh run list failed: %w", err)
	}

	runs, err := decodeRuns(output)
	if err != nil {
		return nil, err
	}
	logging.Debug("listed runs", "workflow", workflow, "count", len(runs))

	c.listings.Set(key, runs, gocache.DefaultExpiration)
	return runs, nil
}

// Run fetches a single run by id.
func (c *Client) Run(ctx context.Context, runID int64) (*Run, error) {
	cmd := exec.CommandContext(ctx, "gh", "run", "view", strconv.FormatInt(runID, 10),
		"--repo", c.repo,
		"--json", "databaseId,number,displayTitle,headBranch,headSha,status,conclusion,createdAt,url")
	output, err := cmd.Output()
	if err != nil {
		logging.Error("gh run view failed", "error", err, "runID", runID)
		return nil, fmt.Errorf("gh run view %d failed: %w", runID, err)
	}

	var raw runJSON
	if err := json.Unmarshal(output, &raw); err != nil {
		return nil, fmt.Errorf("parse run: %w", err)
	}
	run := raw.toRun()
	return &run, nil
}

// LatestRun returns the newest listed run of a workflow, honouring the
// status filter.
func (c *Client) LatestRun(ctx context.Context, workflow string, status string) (*Run, error) {
	runs, err := c.Runs(ctx, workflow, 1, status)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, fmt.Errorf("no runs found for workflow %q", workflow)
	}
	return &runs[0], nil
}

// Jobs lists the jobs of a run, longest-running first.
func (c *Client) Jobs(ctx context.Context, runID int64) ([]Job, error) {
	key := fmt.Sprintf("jobs\x00%d", runID)
	if cached, ok := c.listings.Get(key); ok {
		return cached.([]Job), nil
	}

	cmd := exec.CommandContext(ctx, "gh", "run", "view", strconv.FormatInt(runID, 10),
		"--repo", c.repo,
		"--json", "jobs")
	output, err := cmd.Output()
	if err != nil {
		logging.Error("gh run view jobs failed", "error", err, "runID", runID)
		return nil, fmt.Errorf("gh run view %d failed: %w", runID, err)
	}

	var raw struct {
		Jobs []struct {
			DatabaseID  int64     `json:"databaseId"`
			Name        string    `json:"name"`
			Status      string    `json:"status"`
			Conclusion  string    `json:"conclusion"`
			StartedAt   time.Time `json:"startedAt"`
			CompletedAt time.Time `json:"completedAt"`
		} `json:"jobs"`
	}
	if err := json.Unmarshal(output, &raw); err != nil {
		return nil, fmt.Errorf("parse jobs: %w", err)
	}

	jobs := make([]Job, len(raw.Jobs))
	for i, j := range raw.Jobs {
		jobs[i] = Job{
			ID:          j.DatabaseID,
			Name:        j.Name,
			Status:      j.Status,
			Conclusion:  j.Conclusion,
			StartedAt:   j.StartedAt,
			CompletedAt: j.CompletedAt,
		}
	}
	sortJobs(jobs)
	logging.Debug("listed jobs", "runID", runID, "count", len(jobs))

	c.listings.Set(key, jobs, gocache.DefaultExpiration)
	return jobs, nil
}

// JobLog returns the log of a job, from the persistent cache when the job
// is completed and already stored.
func (c *Client) JobLog(ctx context.Context, runID int64, job Job) (string, error) {
	if job.Completed() && c.logs != nil {
		if log, ok, err := c.logs.Get(ctx, c.repo, job.ID); err == nil && ok {
			logging.Debug("job log cache hit", "jobID", job.ID)
			return log, nil
		} else if err != nil {
			logging.Warn("job log cache read failed", "jobID", job.ID, "error", err)
		}
	}
	return c.RefetchJobLog(ctx, runID, job)
}

// RefetchJobLog downloads the log of a job, bypassing any cached copy,
// and stores it when the job is completed.
func (c *Client) RefetchJobLog(ctx context.Context, runID int64, job Job) (string, error) {
	log, err := c.fetchJobLog(ctx, job.ID)
	if err != nil {
		return "", err
	}
	if job.Completed() && c.logs != nil {
		if err := c.logs.Put(ctx, c.repo, runID, job.ID, log); err != nil {
			logging.Warn("job log cache write failed", "jobID", job.ID, "error", err)
		} else if err := c.logs.Prune(ctx, c.maxCachedLogs); err != nil {
			logging.Warn("job log cache prune failed", "error", err)
		}
	}
	return log, nil
}

func (c *Client) fetchJobLog(ctx context.Context, jobID int64) (string, error) {
	cmd := exec.CommandContext(ctx, "gh", "run", "view",
		"--repo", c.repo,
		"--job", strconv.FormatInt(jobID, 10),
		"--log")
	output, err := cmd.Output()
	if err != nil {
		logging.Error("gh job log fetch failed", "error", err, "jobID", jobID)
		return "", fmt.Errorf("gh run view --job %d --log failed: %w", jobID, err)
	}
	logging.Debug("fetched job log", "jobID", jobID, "bytes", len(output))
	return string(output), nil
}

// runJSON is the wire shape of a run in gh --json output.
type runJSON struct {
	DatabaseID   int64     `json:"databaseId"`
	Number       int       `json:"number"`
	DisplayTitle string    `json:"displayTitle"`
	HeadBranch   string    `json:"headBranch"`
	HeadSHA      string    `json:"headSha"`
	Status       string    `json:"status"`
	Conclusion   string    `json:"conclusion"`
	CreatedAt    time.Time `json:"createdAt"`
	URL          string    `json:"url"`
}

func (r runJSON) toRun() Run {
	return Run{
		ID:         r.DatabaseID,
		Number:     r.Number,
		Title:      r.DisplayTitle,
		Branch:     r.HeadBranch,
		SHA:        r.HeadSHA,
		Status:     r.Status,
		Conclusion: r.Conclusion,
		CreatedAt:  r.CreatedAt,
		URL:        r.URL,
	}
}

func decodeRuns(output []byte) ([]Run, error) {
	var raw []runJSON
	if err := json.Unmarshal(output, &raw); err != nil {
		return nil, fmt.Errorf("parse run list: %w", err)
	}
	runs := make([]Run, len(raw))
	for i, r := range raw {
		runs[i] = r.toRun()
	}
	return runs, nil
}

// sortJobs orders jobs longest-running first, which floats the jobs worth
// inspecting; unfinished jobs keep their listed position at the end.
func sortJobs(jobs []Job) {
	sort.SliceStable(jobs, func(i, j int) bool {
		return jobs[i].Duration() > jobs[j].Duration()
	})
}

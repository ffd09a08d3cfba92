package github

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strconv"
	"strings"

	"github.com/runlens/runlens/internal/logging"
)

// repoEnvVars are consulted in order when no repo is given explicitly.
var repoEnvVars = []string{"RUNLENS_REPO", "REPO", "GITHUB_REPOSITORY", "GH_REPOSITORY"}

var (
	repoPattern      = regexp.MustCompile(`^[\w.-]+/[\w.-]+$`)
	remoteURLPattern = regexp.MustCompile(`github\.com[:/]([^/\s]+/[^/\s]+?)(?:\.git)?$`)
	runURLPattern    = regexp.MustCompile(`actions/runs/(\d+)`)
)

// ResolveRepo determines which owner/repo to inspect: the explicit value
// if given, else the first set repo environment variable, else the
// origin remote of the current directory.
func ResolveRepo(ctx context.Context, explicit string) (string, error) {
	if explicit != "" {
		repo, err := normalizeRepo(explicit)
		if err != nil {
			return "", err
		}
		return repo, nil
	}
	for _, name := range repoEnvVars {
		if v := strings.TrimSpace(os.Getenv(name)); v != "" {
			repo, err := normalizeRepo(v)
			if err != nil {
				return "", fmt.Errorf("%s: %w", name, err)
			}
			logging.Debug("resolved repo from environment", "var", name, "repo", repo)
			return repo, nil
		}
	}

	cmd := exec.CommandContext(ctx, "git", "remote", "get-url", "origin")
	output, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("no repository given and no origin remote found; pass owner/repo or set RUNLENS_REPO")
	}
	repo, err := parseRemoteURL(strings.TrimSpace(string(output)))
	if err != nil {
		return "", err
	}
	logging.Debug("resolved repo from origin remote", "repo", repo)
	return repo, nil
}

// normalizeRepo accepts either a bare owner/repo or a GitHub URL and
// returns the owner/repo form.
func normalizeRepo(s string) (string, error) {
	s = strings.TrimSpace(s)
	if repoPattern.MatchString(s) {
		return s, nil
	}
	if strings.Contains(s, "github.com") {
		return parseRemoteURL(s)
	}
	return "", fmt.Errorf("invalid repository %q: want owner/repo", s)
}

// parseRemoteURL extracts owner/repo from an https or ssh GitHub remote.
func parseRemoteURL(url string) (string, error) {
	m := remoteURLPattern.FindStringSubmatch(url)
	if m == nil {
		return "", fmt.Errorf("cannot parse GitHub repository from %q", url)
	}
	return strings.TrimSuffix(m[1], "/"), nil
}

// parseRunURL extracts the run id from a GitHub Actions run URL.
func parseRunURL(url string) (int64, error) {
	m := runURLPattern.FindStringSubmatch(url)
	if m == nil {
		return 0, fmt.Errorf("cannot parse run id from %q", url)
	}
	id, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("cannot parse run id from %q: %w", url, err)
	}
	return id, nil
}

// Validate checks that gh is installed and authenticated.
func Validate(ctx context.Context) error {
	if _, err := exec.LookPath("gh"); err != nil {
		return fmt.Errorf("gh CLI not found; install it from https://cli.github.com")
	}
	cmd := exec.CommandContext(ctx, "gh", "auth", "status")
	if output, err := cmd.CombinedOutput(); err != nil {
		logging.Error("gh auth status failed", "error", err, "output", string(output))
		return fmt.Errorf("gh is not authenticated; run 'gh auth login'")
	}
	return nil
}

// DeriveRun picks the run to open: an explicit id wins, then an id
// parsed from a run URL, then the latest run of the workflow.
func (c *Client) DeriveRun(ctx context.Context, runID int64, runURL, workflow, status string) (*Run, error) {
	if runID == 0 && runURL != "" {
		id, err := parseRunURL(runURL)
		if err != nil {
			return nil, err
		}
		runID = id
	}
	if runID != 0 {
		return c.Run(ctx, runID)
	}
	if workflow == "" {
		return nil, fmt.Errorf("no run id or url given and no workflow to take the latest run from")
	}
	return c.LatestRun(ctx, workflow, status)
}

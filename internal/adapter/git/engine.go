// Package git supplies the two things the core treats as external: opaque
// repository metadata for the document header, and raw unified-diff text
// for the parser.
package git

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	goGit "github.com/go-git/go-git/v5"
)

// PlaceholderBranch and PlaceholderRevision are embedded in the document
// when metadata cannot be resolved (no repository, detached HEAD with no
// commits, lookup timeout). Callers never inspect these values.
const (
	PlaceholderBranch   = "unknown"
	PlaceholderRevision = "unknown"
)

// Engine reads repository state for the provided directory. Metadata goes
// through go-git; diff generation shells out because `git diff` against the
// working tree is the exact byte stream users expect to annotate.
type Engine struct {
	repoDir string
}

// NewEngine constructs an engine for the repository directory.
func NewEngine(repoDir string) *Engine {
	return &Engine{repoDir: repoDir}
}

// Metadata returns the checked-out branch name and HEAD revision, or the
// placeholder pair on any failure. It never returns an error: the document
// must export either way.
func (e *Engine) Metadata(ctx context.Context) (branch, revision string) {
	branch, revision = PlaceholderBranch, PlaceholderRevision

	repo, err := goGit.PlainOpenWithOptions(e.repoDir, &goGit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return branch, revision
	}
	head, err := repo.Head()
	if err != nil {
		return branch, revision
	}

	revision = head.Hash().String()
	if name := head.Name(); name.IsBranch() {
		branch = name.Short()
	}
	return branch, revision
}

// WorkingTreeDiff returns the unified diff of the working tree against
// baseRef (HEAD when empty).
func (e *Engine) WorkingTreeDiff(ctx context.Context, baseRef string) (string, error) {
	if baseRef == "" {
		baseRef = "HEAD"
	}
	out, err := e.runGit(ctx, "diff", baseRef)
	if err != nil {
		return "", fmt.Errorf("working tree diff: %w", err)
	}
	return out, nil
}

// RangeDiff returns the unified diff between two refs.
func (e *Engine) RangeDiff(ctx context.Context, baseRef, targetRef string) (string, error) {
	out, err := e.runGit(ctx, "diff", baseRef, targetRef)
	if err != nil {
		return "", fmt.Errorf("diff %s..%s: %w", baseRef, targetRef, err)
	}
	return out, nil
}

func (e *Engine) runGit(ctx context.Context, args ...string) (string, error) {
	fullArgs := append([]string{"-C", e.repoDir}, args...)
	cmd := exec.CommandContext(ctx, "git", fullArgs...)
	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("git %v: %w", args, ctx.Err())
		}
		if stderr.Len() > 0 {
			err = fmt.Errorf("%w: %s", err, strings.TrimSpace(stderr.String()))
		}
		return "", fmt.Errorf("git %v: %w", args, err)
	}
	return stdout.String(), nil
}

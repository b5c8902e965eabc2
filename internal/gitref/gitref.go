// Package gitref reads branch names out of a git repository by shelling out
// to the git binary.
package gitref

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/Siddarth2230/branchmoji/pkg/idgen"
)

var (
	ErrNotRepository = errors.New("not a git repository")
	ErrDetachedHead  = errors.New("HEAD is detached")
)

// Repo is a git working tree.
type Repo struct {
	Dir string
	git string
}

// Discover finds the repository containing dir.
func Discover(ctx context.Context, dir string) (*Repo, error) {
	git, err := exec.LookPath("git")
	if err != nil {
		return nil, fmt.Errorf("git binary: %w", err)
	}
	r := &Repo{Dir: dir, git: git}
	top, err := r.run(ctx, "rev-parse", "--show-toplevel")
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrNotRepository, dir, err)
	}
	r.Dir = strings.TrimSpace(top)
	return r, nil
}

// RemoteBranches lists the branches tracked under remote, without the
// "<remote>/" prefix. The remote's symbolic HEAD is skipped.
func (r *Repo) RemoteBranches(ctx context.Context, remote string) ([]string, error) {
	remote = strings.TrimSuffix(remote, "/")
	names, err := r.refs(ctx, "refs/remotes/"+remote+"/")
	if err != nil {
		return nil, err
	}
	out := names[:0]
	for _, n := range names {
		if n != "HEAD" {
			out = append(out, n)
		}
	}
	return out, nil
}

// LocalBranches lists refs/heads.
func (r *Repo) LocalBranches(ctx context.Context) ([]string, error) {
	return r.refs(ctx, "refs/heads/")
}

// CurrentBranch returns the short name of the checked out branch.
func (r *Repo) CurrentBranch(ctx context.Context) (string, error) {
	out, err := r.run(ctx, "symbolic-ref", "--quiet", "--short", "HEAD")
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
			return "", ErrDetachedHead
		}
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// IsClean reports whether the working tree has no pending changes.
func (r *Repo) IsClean(ctx context.Context) (bool, error) {
	out, err := r.run(ctx, "status", "--porcelain")
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(out) == "", nil
}

// Source lists the branches of remote, plus local branches when
// includeLocal is set, for identifier allocation.
func (r *Repo) Source(remote string, includeLocal bool) idgen.Source {
	srcs := []idgen.Source{idgen.SourceFunc(func(ctx context.Context) ([]string, error) {
		return r.RemoteBranches(ctx, remote)
	})}
	if includeLocal {
		srcs = append(srcs, idgen.SourceFunc(r.LocalBranches))
	}
	return idgen.Sources(srcs...)
}

// refs returns every ref under prefix with the prefix stripped.
func (r *Repo) refs(ctx context.Context, prefix string) ([]string, error) {
	out, err := r.run(ctx, "for-each-ref", "--format=%(refname)", prefix)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, line := range strings.Split(out, "\n") {
		name, ok := strings.CutPrefix(strings.TrimSpace(line), prefix)
		if ok && name != "" {
			names = append(names, name)
		}
	}
	return names, nil
}

func (r *Repo) run(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, r.git, append([]string{"-C", r.Dir}, args...)...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("git %s: %w: %s", args[0], err, msg)
		}
		return "", fmt.Errorf("git %s: %w", args[0], err)
	}
	return stdout.String(), nil
}

// Package git compares the output document against its committed history.
package git

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/pubtrack/pubtrack/internal/publication"
	"github.com/pubtrack/pubtrack/internal/storage"
)

// ErrNotGitRepo indicates the directory is not a git repository.
var ErrNotGitRepo = errors.New("not a git repository")

// ErrCommitNotFound indicates the specified commit does not exist.
var ErrCommitNotFound = errors.New("commit not found")

// ErrFileNotTracked indicates the output document is not tracked by git.
var ErrFileNotTracked = errors.New("output document not tracked by git")

// FindRepoRoot finds the root of the git repository containing the given path.
// Returns ErrNotGitRepo if not in a git repository.
func FindRepoRoot(path string) (string, error) {
	cmd := exec.Command("git", "-C", path, "rev-parse", "--show-toplevel")
	output, err := cmd.Output()
	if err != nil {
		return "", ErrNotGitRepo
	}
	return strings.TrimSpace(string(output)), nil
}

// ValidateCommit verifies that a commit reference exists.
// Supports SHA, HEAD, HEAD~N, branch names, tags, etc.
// Returns the resolved full SHA or ErrCommitNotFound.
func ValidateCommit(repoRoot, commitRef string) (string, error) {
	cmd := exec.Command("git", "-C", repoRoot, "rev-parse", "--verify", commitRef+"^{commit}")
	output, err := cmd.Output()
	if err != nil {
		return "", ErrCommitNotFound
	}
	return strings.TrimSpace(string(output)), nil
}

// RelPath returns path relative to repoRoot in slash form, as git expects.
func RelPath(repoRoot, path string) (string, error) {
	// rev-parse reports a resolved root; resolve path the same way.
	if resolved, err := filepath.EvalSymlinks(filepath.Dir(path)); err == nil {
		path = filepath.Join(resolved, filepath.Base(path))
	}
	rel, err := filepath.Rel(repoRoot, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("%s is outside repository %s", path, repoRoot)
	}
	return filepath.ToSlash(rel), nil
}

// IsFileTracked checks if relPath is tracked by git.
func IsFileTracked(repoRoot, relPath string) bool {
	cmd := exec.Command("git", "-C", repoRoot, "ls-files", relPath)
	output, err := cmd.Output()
	if err != nil {
		return false
	}
	return strings.TrimSpace(string(output)) != ""
}

// DocumentAtCommit retrieves the output document at a specific commit.
// Returns ErrCommitNotFound if commit doesn't exist, or an empty document if
// the file didn't exist at that commit.
func DocumentAtCommit(repoRoot, commitRef, relPath string) (*publication.Document, error) {
	sha, err := ValidateCommit(repoRoot, commitRef)
	if err != nil {
		return nil, err
	}

	cmd := exec.Command("git", "-C", repoRoot, "show", sha+":"+relPath)
	output, err := cmd.Output()
	if err != nil {
		// File might not exist at that commit
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return &publication.Document{}, nil
		}
		return nil, fmt.Errorf("getting %s at %s: %w", relPath, commitRef, err)
	}

	doc, err := storage.ParseDocument(output)
	if err != nil {
		return nil, fmt.Errorf("%s at %s: %w", relPath, commitRef, err)
	}
	return doc, nil
}

// CurrentDocument reads the output document from the working tree. A missing
// file is an empty document.
func CurrentDocument(path string) (*publication.Document, error) {
	doc, err := storage.ReadDocument(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &publication.Document{}, nil
		}
		return nil, err
	}
	return doc, nil
}

package git

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/pubtrack/pubtrack/internal/crossref"
	"github.com/pubtrack/pubtrack/internal/publication"
	"github.com/pubtrack/pubtrack/internal/storage"
)

func article(doi, title string) publication.Record {
	return publication.Record{DOI: doi, Title: title, Type: crossref.TypeJournalArticle}
}

func preprint(doi, title string) publication.Record {
	return publication.Record{DOI: doi, Title: title, Type: crossref.TypePostedContent}
}

func TestDiffDocuments(t *testing.T) {
	old := publication.Document{
		Articles:  []publication.Record{article("10.1/a", "Kept"), article("10.1/gone", "Gone")},
		Preprints: []publication.Record{preprint("10.1/moved", "Moved"), preprint("", "No DOI")},
	}
	current := publication.Document{
		Articles:  []publication.Record{article("10.1/A", "Kept"), article("10.1/moved", "Moved"), article("10.1/new", "New")},
		Preprints: []publication.Record{preprint("", "no doi")},
	}

	diff := DiffDocuments(old, current)

	if len(diff.Added) != 1 || diff.Added[0].DOI != "10.1/new" {
		t.Errorf("Added = %+v, want only 10.1/new", diff.Added)
	}
	if len(diff.Removed) != 1 || diff.Removed[0].DOI != "10.1/gone" {
		t.Errorf("Removed = %+v, want only 10.1/gone", diff.Removed)
	}
}

func TestDiffDocuments_Empty(t *testing.T) {
	diff := DiffDocuments(publication.Document{}, publication.Document{})
	if diff.Added == nil || diff.Removed == nil {
		t.Error("DiffDocuments should return non-nil slices")
	}
	if len(diff.Added) != 0 || len(diff.Removed) != 0 {
		t.Errorf("expected no changes, got %+v", diff)
	}
}

func TestDiffDocuments_Sorted(t *testing.T) {
	current := publication.Document{
		Articles: []publication.Record{article("10.1/c", "C"), article("10.1/a", "A"), article("10.1/b", "B")},
	}
	diff := DiffDocuments(publication.Document{}, current)
	for i, want := range []string{"10.1/a", "10.1/b", "10.1/c"} {
		if diff.Added[i].DOI != want {
			t.Errorf("Added[%d] = %s, want %s", i, diff.Added[i].DOI, want)
		}
	}
}

func runGit(t *testing.T, dir string, args ...string) {
	t.Helper()
	cmd := exec.Command("git", append([]string{"-C", dir}, args...)...)
	cmd.Env = append(os.Environ(),
		"GIT_AUTHOR_NAME=test", "GIT_AUTHOR_EMAIL=test@example.com",
		"GIT_COMMITTER_NAME=test", "GIT_COMMITTER_EMAIL=test@example.com",
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("git %v: %v\n%s", args, err, out)
	}
}

func TestDiffSince(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}

	dir := t.TempDir()
	runGit(t, dir, "init", "-q")

	path := filepath.Join(dir, "publications.json")
	if err := storage.WriteDocument(path, publication.Document{
		Articles: []publication.Record{article("10.1/a", "A")},
	}); err != nil {
		t.Fatal(err)
	}
	runGit(t, dir, "add", "publications.json")
	runGit(t, dir, "commit", "-q", "-m", "first")

	if err := storage.WriteDocument(path, publication.Document{
		Articles: []publication.Record{article("10.1/b", "B")},
	}); err != nil {
		t.Fatal(err)
	}

	root, err := FindRepoRoot(dir)
	if err != nil {
		t.Fatalf("FindRepoRoot() error = %v", err)
	}
	rel, err := RelPath(root, path)
	if err != nil {
		t.Fatalf("RelPath() error = %v", err)
	}
	if !IsFileTracked(root, rel) {
		t.Errorf("%s should be tracked", rel)
	}

	diff, err := DiffSince(root, "HEAD", path)
	if err != nil {
		t.Fatalf("DiffSince() error = %v", err)
	}
	if len(diff.Added) != 1 || diff.Added[0].DOI != "10.1/b" {
		t.Errorf("Added = %+v", diff.Added)
	}
	if len(diff.Removed) != 1 || diff.Removed[0].DOI != "10.1/a" {
		t.Errorf("Removed = %+v", diff.Removed)
	}

	if _, err := DiffSince(root, "no-such-ref", path); err != ErrCommitNotFound {
		t.Errorf("DiffSince(bad ref) error = %v, want ErrCommitNotFound", err)
	}
}

func TestFindRepoRoot_NotRepo(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}
	dir := t.TempDir()
	// A temp dir may sit under a repository on some machines.
	if _, err := FindRepoRoot(dir); err != nil && err != ErrNotGitRepo {
		t.Errorf("FindRepoRoot() error = %v", err)
	}
}

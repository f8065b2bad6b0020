package storage

import (
	"bytes"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()
	root := t.TempDir()
	s, err := New(
		filepath.Join(root, "docs"),
		filepath.Join(root, "images"),
		filepath.Join(root, "tmp"),
		filepath.Join(root, "redundants.txt"),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func TestNewCreatesDirectories(t *testing.T) {
	s := newTestStorage(t)
	for _, dir := range []string{s.DocDir, s.ImageDir, s.TempDir} {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			t.Errorf("dir %s missing: %v", dir, err)
		}
	}
}

// uploadHeader builds a real multipart.FileHeader the way a request parser
// would.
func uploadHeader(t *testing.T, filename, content string) *multipart.FileHeader {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := part.Write([]byte(content)); err != nil {
		t.Fatal(err)
	}
	w.Close()

	form, err := multipart.NewReader(&buf, w.Boundary()).ReadForm(1 << 20)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { form.RemoveAll() })
	return form.File["file"][0]
}

func TestSaveDocumentRenamesIntoPlace(t *testing.T) {
	s := newTestStorage(t)

	name, err := s.SaveDocument(uploadHeader(t, "report.pdf", "pdf bytes"))
	if err != nil {
		t.Fatalf("SaveDocument: %v", err)
	}
	if !strings.HasSuffix(name, ".pdf") {
		t.Errorf("stored name %q lost the extension", name)
	}
	if name == "report.pdf" {
		t.Errorf("stored name %q not anonymized", name)
	}

	data, err := os.ReadFile(s.DocPath(name))
	if err != nil {
		t.Fatalf("stored file unreadable: %v", err)
	}
	if string(data) != "pdf bytes" {
		t.Errorf("content = %q", data)
	}

	// nothing left behind in the staging dir
	entries, err := os.ReadDir(s.TempDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("temp dir not empty: %d entries", len(entries))
	}
}

func TestDocPathStripsTraversal(t *testing.T) {
	s := newTestStorage(t)

	got := s.DocPath("../../etc/passwd")
	want := filepath.Join(s.DocDir, "passwd")
	if got != want {
		t.Errorf("DocPath = %q, want %q", got, want)
	}
}

func TestSweepRemovesMarkedFiles(t *testing.T) {
	s := newTestStorage(t)

	doomed := filepath.Join(s.DocDir, "doomed.pdf")
	kept := filepath.Join(s.DocDir, "kept.pdf")
	for _, p := range []string{doomed, kept} {
		if err := os.WriteFile(p, []byte("content"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	if err := s.MarkRedundant(doomed); err != nil {
		t.Fatalf("MarkRedundant: %v", err)
	}

	// marked files survive until the sweep runs
	if _, err := os.Stat(doomed); err != nil {
		t.Fatalf("file removed before sweep: %v", err)
	}

	s.SweepOnce()

	if _, err := os.Stat(doomed); !os.IsNotExist(err) {
		t.Errorf("marked file still present: %v", err)
	}
	if _, err := os.Stat(kept); err != nil {
		t.Errorf("unmarked file removed: %v", err)
	}
}

func TestSweepMissingFileIsDropped(t *testing.T) {
	s := newTestStorage(t)

	gone := filepath.Join(s.DocDir, "never-existed.pdf")
	if err := s.MarkRedundant(gone); err != nil {
		t.Fatal(err)
	}
	s.SweepOnce()

	data, err := os.ReadFile(s.ledgerPath)
	if err != nil && !os.IsNotExist(err) {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "never-existed") {
		t.Errorf("missing file requeued: %q", data)
	}
}

func TestMarkRedundantSkipsEmptyPaths(t *testing.T) {
	s := newTestStorage(t)

	if err := s.MarkRedundant("", ""); err != nil {
		t.Fatal(err)
	}
	// nothing to do is fine
	s.SweepOnce()
}

func TestSweepOnceEmptyLedger(t *testing.T) {
	s := newTestStorage(t)
	// no ledger written yet; must not create one or log errors
	s.SweepOnce()
}

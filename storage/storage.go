package storage

import (
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Storage keeps uploaded files on the local filesystem. Uploads are written
// to a temp path first and renamed into place, so a stored name never points
// at a half-written file. Files that stop being referenced are appended to a
// redundancy ledger and unlinked later by the sweeper; failed unlinks are
// re-queued for the next pass.
type Storage struct {
	DocDir   string
	ImageDir string
	TempDir  string

	ledgerPath string
	ledgerMu   sync.Mutex
}

func New(docDir, imageDir, tempDir, ledgerPath string) (*Storage, error) {
	for _, dir := range []string{docDir, imageDir, tempDir, filepath.Dir(ledgerPath)} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage dir %s: %w", dir, err)
		}
	}
	return &Storage{
		DocDir:     docDir,
		ImageDir:   imageDir,
		TempDir:    tempDir,
		ledgerPath: ledgerPath,
	}, nil
}

// SaveDocument stores an uploaded document and returns its stored name.
func (s *Storage) SaveDocument(fh *multipart.FileHeader) (string, error) {
	return s.save(fh, s.DocDir)
}

// SaveImage stores an uploaded image and returns its stored name.
func (s *Storage) SaveImage(fh *multipart.FileHeader) (string, error) {
	return s.save(fh, s.ImageDir)
}

func (s *Storage) save(fh *multipart.FileHeader, destDir string) (string, error) {
	src, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	tmp, err := os.CreateTemp(s.TempDir, "upload-*")
	if err != nil {
		return "", err
	}
	tmpPath := tmp.Name()
	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return "", err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return "", err
	}

	// random stored name, original extension kept
	name := uuid.New().String() + strings.ToLower(filepath.Ext(fh.Filename))
	if err := os.Rename(tmpPath, filepath.Join(destDir, name)); err != nil {
		os.Remove(tmpPath)
		return "", err
	}
	return name, nil
}

// SaveRemoteImage downloads an image (a Google profile picture at sign-up)
// through the same temp-then-rename path as uploads and returns its stored
// name.
func (s *Storage) SaveRemoteImage(url string) (string, error) {
	resp, err := http.Get(url)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch image: status %d", resp.StatusCode)
	}

	tmp, err := os.CreateTemp(s.TempDir, "upload-*")
	if err != nil {
		return "", err
	}
	tmpPath := tmp.Name()
	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return "", err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return "", err
	}

	ext := strings.ToLower(filepath.Ext(url))
	if ext == "" || len(ext) > 5 {
		ext = ".jpg"
	}
	name := uuid.New().String() + ext
	if err := os.Rename(tmpPath, filepath.Join(s.ImageDir, name)); err != nil {
		os.Remove(tmpPath)
		return "", err
	}
	return name, nil
}

func (s *Storage) DocPath(name string) string {
	return filepath.Join(s.DocDir, filepath.Base(name))
}

func (s *Storage) ImagePath(name string) string {
	return filepath.Join(s.ImageDir, filepath.Base(name))
}

// MarkRedundant appends file paths to the pending-deletion ledger. The files
// stay on disk until the next sweep.
func (s *Storage) MarkRedundant(paths ...string) error {
	if len(paths) == 0 {
		return nil
	}
	s.ledgerMu.Lock()
	defer s.ledgerMu.Unlock()

	f, err := os.OpenFile(s.ledgerPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	for _, p := range paths {
		if p == "" {
			continue
		}
		if _, err := f.WriteString(p + ","); err != nil {
			return err
		}
	}
	return nil
}

// SweepOnce drains the ledger and unlinks every listed file. Unlink failures
// are written back to the ledger for the next pass; cleanup never fails the
// caller.
func (s *Storage) SweepOnce() {
	s.ledgerMu.Lock()
	defer s.ledgerMu.Unlock()

	data, err := os.ReadFile(s.ledgerPath)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("storage sweep: read ledger: %v", err)
		}
		return
	}
	if err := os.WriteFile(s.ledgerPath, nil, 0o644); err != nil {
		log.Printf("storage sweep: truncate ledger: %v", err)
		return
	}

	var failed []string
	for _, entry := range strings.Split(string(data), ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if err := os.Remove(entry); err != nil && !os.IsNotExist(err) {
			failed = append(failed, entry)
		}
	}

	if len(failed) == 0 {
		return
	}
	f, err := os.OpenFile(s.ledgerPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		log.Printf("storage sweep: requeue: %v", err)
		return
	}
	defer f.Close()
	for _, entry := range failed {
		if _, err := f.WriteString(entry + ","); err != nil {
			log.Printf("storage sweep: requeue: %v", err)
			return
		}
	}
}

// StartSweeper runs SweepOnce on a fixed interval until the process exits.
func (s *Storage) StartSweeper(interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for range ticker.C {
			s.SweepOnce()
		}
	}()
}

package client

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

var (
	// ErrNotPreviewable rejects a preview locally, before any network call.
	ErrNotPreviewable = errors.New("this file type cannot be previewed, download it instead")
	// ErrBusy rejects a second preview while one fetch is still in flight.
	ErrBusy = errors.New("a preview request is already in flight")
	// ErrMissingFileID rejects a file payload with no usable identifier.
	ErrMissingFileID = errors.New("file is missing an identifier")
)

// Preview is an open transient reference to fetched file content, rendered
// by category. It stays valid until released.
type Preview struct {
	FileID      int64
	FileName    string
	ContentType string
	Path        string

	IsImage bool
	IsVideo bool
	IsAudio bool
	IsPDF   bool

	released bool
}

// PreviewManager owns the single transient-reference slot. At most one
// preview is open at a time; opening a new one releases the old one first,
// and every exit path releases exactly once.
type PreviewManager struct {
	mu          sync.Mutex
	submissions *SubmissionService
	tmpDir      string
	current     *Preview
	fetching    bool
}

func NewPreviewManager(submissions *SubmissionService, tmpDir string) *PreviewManager {
	if tmpDir == "" {
		tmpDir = os.TempDir()
	}
	return &PreviewManager{submissions: submissions, tmpDir: tmpDir}
}

// Open classifies the file and, when previewable, fetches its content into
// a transient local file. Non-previewable files and files without an id are
// rejected with no network call. A previously open preview is released
// before the new one takes the slot.
func (m *PreviewManager) Open(ctx context.Context, file map[string]any) (*Preview, error) {
	classification := ClassifyFile(file)
	if !classification.Previewable {
		return nil, ErrNotPreviewable
	}

	fileID := FileID(file)
	if fileID == 0 {
		return nil, ErrMissingFileID
	}

	m.mu.Lock()
	if m.fetching {
		m.mu.Unlock()
		return nil, ErrBusy
	}
	m.fetching = true
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		m.fetching = false
		m.mu.Unlock()
	}()

	data, _, err := m.submissions.DownloadFile(ctx, fileID)
	if err != nil {
		return nil, err
	}

	tmp, err := os.CreateTemp(m.tmpDir, "preview-*")
	if err != nil {
		return nil, err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return nil, err
	}
	tmp.Close()

	contentType := classification.ContentType
	preview := &Preview{
		FileID:      fileID,
		FileName:    FileName(file),
		ContentType: contentType,
		Path:        tmp.Name(),
		IsImage:     strings.HasPrefix(contentType, "image/"),
		IsVideo:     strings.HasPrefix(contentType, "video/"),
		IsAudio:     strings.HasPrefix(contentType, "audio/"),
		IsPDF:       contentType == "application/pdf",
	}

	m.mu.Lock()
	m.releaseLocked()
	m.current = preview
	m.mu.Unlock()

	return preview, nil
}

// Current returns the open preview, or nil.
func (m *PreviewManager) Current() *Preview {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Close releases the open preview. Safe to call on every exit path;
// releasing happens exactly once.
func (m *PreviewManager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.releaseLocked()
	m.current = nil
}

func (m *PreviewManager) releaseLocked() {
	if m.current == nil || m.current.released {
		return
	}
	os.Remove(m.current.Path)
	m.current.released = true
}

// Download fetches the file content and saves it under the suggested name
// in dstDir. The transient staging file is removed immediately after the
// save is attempted, whether or not it succeeded.
func (m *PreviewManager) Download(ctx context.Context, fileID int64, fileName, dstDir string) (string, error) {
	if fileID == 0 {
		return "", ErrMissingFileID
	}
	if fileName == "" {
		fileName = "download"
	}

	data, _, err := m.submissions.DownloadFile(ctx, fileID)
	if err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp(m.tmpDir, "download-*")
	if err != nil {
		return "", err
	}
	staging := tmp.Name()
	defer os.Remove(staging)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}

	dst := filepath.Join(dstDir, filepath.Base(fileName))
	if err := os.Rename(staging, dst); err != nil {
		// Cross-device rename can fail; fall back to a plain copy.
		if err := os.WriteFile(dst, data, 0o644); err != nil {
			return "", err
		}
	}
	return dst, nil
}

// Package session owns the transient per-upload workspace: a uniquely named
// temp directory whose deletion is scheduled the moment it is created, so
// cleanup fires regardless of processing outcome.
package session

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Session is the transient state scoped to one upload.
type Session struct {
	ID        string
	Dir       string
	CreatedAt time.Time

	mu              sync.Mutex
	spreadsheetPath string
	orderPath       string
	quotationPath   string
}

func (s *Session) SetSpreadsheet(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.spreadsheetPath = path
}

func (s *Session) Spreadsheet() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.spreadsheetPath
}

// SetArtifacts records the emitted workbook paths for later download.
func (s *Session) SetArtifacts(orderPath, quotationPath string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orderPath = orderPath
	s.quotationPath = quotationPath
}

func (s *Session) Artifacts() (orderPath, quotationPath string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.orderPath, s.quotationPath
}

// Registry tracks live sessions and enforces their deadline.
type Registry struct {
	workDir string
	ttl     time.Duration
	log     *slog.Logger

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewRegistry(workDir string, ttl time.Duration, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		workDir:  workDir,
		ttl:      ttl,
		log:      logger,
		sessions: make(map[string]*Session),
	}
}

// Create allocates a session directory under the work dir and schedules its
// unconditional deletion after the TTL. The id combines a timestamp with a
// random suffix to keep concurrent uploads collision-free.
func (r *Registry) Create() (*Session, error) {
	now := time.Now().UTC()
	id := now.Format("20060102T150405") + "-" + strings.Split(uuid.New().String(), "-")[0]
	dir := filepath.Join(r.workDir, "estimate-"+id)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create session dir: %w", err)
	}

	s := &Session{ID: id, Dir: dir, CreatedAt: now}
	r.mu.Lock()
	r.sessions[id] = s
	r.mu.Unlock()

	time.AfterFunc(r.ttl, func() { r.expire(id) })

	r.log.Info("session.created", "session_id", id, "dir", dir, "ttl", r.ttl)
	return s, nil
}

// Get returns a live (unexpired) session.
func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	return s, ok
}

func (r *Registry) expire(id string) {
	r.mu.Lock()
	s, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()
	if !ok {
		return
	}
	if err := os.RemoveAll(s.Dir); err != nil {
		r.log.Warn("session.cleanup_failed", "session_id", id, "error", err)
		return
	}
	r.log.Info("session.expired", "session_id", id)
}

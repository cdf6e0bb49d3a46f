package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/jmehdipour/enroll-gateway/internal/model"
)

// FileEnrollmentsRepository keeps all enrollments as a JSON array in a single file.
// Every read-modify-write runs under an exclusive lock held on <path>.lock, so
// concurrent inserts (in-process or from cooperating processes) never lose updates.
type FileEnrollmentsRepository struct {
	path string
	mu   sync.Mutex
}

func NewFileEnrollmentsRepository(path string) *FileEnrollmentsRepository {
	return &FileEnrollmentsRepository{path: path}
}

var _ EnrollmentsRepository = (*FileEnrollmentsRepository)(nil)

func (r *FileEnrollmentsRepository) List(ctx context.Context) ([]model.Enrollment, error) {
	var out []model.Enrollment
	err := r.locked(ctx, func() error {
		all, err := r.read()
		if err != nil {
			return err
		}
		out = all
		return nil
	})
	if err != nil {
		return nil, err
	}

	// file order is append order
	sort.SliceStable(out, func(i, j int) bool { return out[i].EnrolledAt.After(out[j].EnrolledAt) })
	return out, nil
}

func (r *FileEnrollmentsRepository) GetByEmail(ctx context.Context, email string) (*model.Enrollment, error) {
	var found *model.Enrollment
	err := r.locked(ctx, func() error {
		all, err := r.read()
		if err != nil {
			return err
		}
		for i := range all {
			if all[i].Email == email {
				found = &all[i]
				return nil
			}
		}
		return nil
	})
	return found, err
}

func (r *FileEnrollmentsRepository) InsertIfAbsent(ctx context.Context, e model.Enrollment) (bool, error) {
	inserted := false
	err := r.locked(ctx, func() error {
		all, err := r.read()
		if err != nil {
			return err
		}
		for _, x := range all {
			if x.Email == e.Email || x.ID == e.ID {
				return nil
			}
		}
		e.EnrolledAt = e.EnrolledAt.UTC()
		if err := r.write(append(all, e)); err != nil {
			return err
		}
		inserted = true
		return nil
	})
	return inserted, err
}

func (r *FileEnrollmentsRepository) Count(ctx context.Context) (int, error) {
	n := 0
	err := r.locked(ctx, func() error {
		all, err := r.read()
		n = len(all)
		return err
	})
	return n, err
}

// locked runs fn while holding both the in-process mutex and the file lock.
// Both are released on every return path.
func (r *FileEnrollmentsRepository) locked(ctx context.Context, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return fmt.Errorf("create store directory: %w", err)
	}
	lock, err := acquireFileLock(r.path + ".lock")
	if err != nil {
		return err
	}
	defer lock.release()

	return fn()
}

// read returns an empty collection when the file does not exist yet.
func (r *FileEnrollmentsRepository) read() ([]model.Enrollment, error) {
	b, err := os.ReadFile(r.path)
	if errors.Is(err, fs.ErrNotExist) || (err == nil && len(b) == 0) {
		return []model.Enrollment{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read enrollments file: %w", err)
	}

	var all []model.Enrollment
	if err := json.Unmarshal(b, &all); err != nil {
		return nil, fmt.Errorf("decode enrollments file %s: %w", r.path, err)
	}
	if all == nil {
		all = []model.Enrollment{}
	}
	return all, nil
}

// write replaces the file atomically (temp file + rename).
func (r *FileEnrollmentsRepository) write(all []model.Enrollment) error {
	b, err := json.MarshalIndent(all, "", "  ")
	if err != nil {
		return fmt.Errorf("encode enrollments: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(r.path), filepath.Base(r.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), r.path); err != nil {
		return fmt.Errorf("replace enrollments file: %w", err)
	}
	return nil
}

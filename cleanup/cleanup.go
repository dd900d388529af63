// Package cleanup removes the transient audio files the relay generates.
package cleanup

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	logger "github.com/EasterCompany/dex-telephony-service/log"
)

// Result holds the outcome of a cleanup task.
type Result struct {
	Name        string
	Count       int
	Description string
}

type entry struct {
	timer *time.Timer
}

// Janitor owns every scheduled artifact deletion. Each registered file is removed exactly once.
type Janitor struct {
	mu      sync.Mutex
	pending map[string]*entry
	remove  func(string) error
}

// NewJanitor returns an idle janitor.
func NewJanitor() *Janitor {
	return &Janitor{pending: make(map[string]*entry), remove: os.Remove}
}

// Schedule deletes path after delay. Rescheduling a path replaces its previous timer.
func (j *Janitor) Schedule(path string, delay time.Duration) {
	e := &entry{}

	j.mu.Lock()
	if prev, ok := j.pending[path]; ok {
		prev.timer.Stop()
	}
	j.pending[path] = e
	e.timer = time.AfterFunc(delay, func() { j.fire(path, e) })
	j.mu.Unlock()
}

func (j *Janitor) fire(path string, e *entry) {
	j.mu.Lock()
	if j.pending[path] != e {
		// Cancelled or replaced after the timer started.
		j.mu.Unlock()
		return
	}
	delete(j.pending, path)
	j.mu.Unlock()

	if err := j.removeFile(path); err != nil {
		logger.Error(fmt.Sprintf("Could not delete audio file %s", path), err)
	}
}

func (j *Janitor) removeFile(path string) error {
	if err := j.remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// Delete cancels any pending timer and removes path. A missing file is not an error.
func (j *Janitor) Delete(path string) error {
	j.mu.Lock()
	if e, ok := j.pending[path]; ok {
		e.timer.Stop()
		delete(j.pending, path)
	}
	j.mu.Unlock()

	return j.removeFile(path)
}

// FlushAll stops every timer and deletes every registered file.
func (j *Janitor) FlushAll() Result {
	res := Result{Name: "FlushAll"}

	j.mu.Lock()
	paths := make([]string, 0, len(j.pending))
	for path, e := range j.pending {
		e.timer.Stop()
		paths = append(paths, path)
	}
	j.pending = make(map[string]*entry)
	j.mu.Unlock()

	for _, path := range paths {
		if err := j.removeFile(path); err != nil {
			logger.Error(fmt.Sprintf("Could not delete audio file %s", path), err)
			continue
		}
		res.Count++
	}
	res.Description = fmt.Sprintf("%d of %d pending", res.Count, len(paths))
	return res
}

// Pending reports how many deletions are scheduled.
func (j *Janitor) Pending() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return len(j.pending)
}

// SweepOrphans removes artifacts left in dir by a previous run.
func SweepOrphans(dir string) Result {
	res := Result{Name: "SweepOrphans", Description: dir}

	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return res
	}
	if err != nil {
		logger.Error(fmt.Sprintf("Could not read audio directory %s", dir), err)
		return res
	}

	for _, e := range entries {
		if !e.Type().IsRegular() || !strings.EqualFold(filepath.Ext(e.Name()), ".wav") {
			continue
		}
		if err := os.Remove(filepath.Join(dir, e.Name())); err != nil && !errors.Is(err, fs.ErrNotExist) {
			logger.Error(fmt.Sprintf("Could not delete orphaned audio file %s", e.Name()), err)
			continue
		}
		res.Count++
	}
	if res.Count > 0 {
		log.Printf("[JANITOR] Removed %d orphaned audio files from %s", res.Count, dir)
	}
	return res
}

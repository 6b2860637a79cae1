// Package ledger keeps the append-only log of URLs the crawler has accepted.
package ledger

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Ledger is a line-per-URL text file. Membership is all that matters: a URL recorded
// twice appears twice in the file and once in the set.
type Ledger struct {
	path string
	mu   sync.Mutex
}

// New returns a Ledger backed by path. The file is created on the first Record.
func New(path string) *Ledger {
	return &Ledger{path: path}
}

// Path returns the ledger file location.
func (l *Ledger) Path() string { return l.path }

// Load reads the set of recorded URLs. A missing file is an empty set.
func (l *Ledger) Load() (map[string]struct{}, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	set := make(map[string]struct{})
	f, err := os.Open(l.path)
	if errors.Is(err, os.ErrNotExist) {
		return set, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		if url := strings.TrimSpace(scanner.Text()); url != "" {
			set[url] = struct{}{}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read ledger: %w", err)
	}
	return set, nil
}

// Contains reports whether url was recorded.
func (l *Ledger) Contains(url string) (bool, error) {
	set, err := l.Load()
	if err != nil {
		return false, err
	}
	_, ok := set[url]
	return ok, nil
}

// Record appends url. In dry-run mode nothing is written.
func (l *Ledger) Record(url string, dryRun bool) error {
	if dryRun {
		return nil
	}
	url = strings.TrimSpace(url)
	if url == "" {
		return errors.New("ledger: empty url")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if dir := filepath.Dir(l.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create ledger directory: %w", err)
		}
	}
	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open ledger: %w", err)
	}
	if _, err := f.WriteString(url + "\n"); err != nil {
		f.Close()
		return fmt.Errorf("failed to append to ledger: %w", err)
	}
	return f.Close()
}

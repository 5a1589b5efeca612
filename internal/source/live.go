package source

import (
	"sync"

	"github.com/toyz/metamodel/pkg/meta/descriptor"
)

// Live is a descriptor source backed by a scan that can be repeated.
// Refresh swaps the table only when the new scan succeeds, so a metamodel
// rebuilt over a Live source never sees a half-edited package.
type Live struct {
	scanner *Scanner
	dirs    []string

	mu     sync.RWMutex
	result *Result
}

// NewLive scans dirs once and returns the source. The error of the first scan
// is returned along with the source, which then holds what was described.
func NewLive(scanner *Scanner, dirs ...string) (*Live, error) {
	l := &Live{scanner: scanner, dirs: dirs}
	res, err := scanner.Scan(dirs...)
	l.result = res
	return l, err
}

// Refresh rescans the directories and keeps the previous table on error
func (l *Live) Refresh() (*Result, error) {
	res, err := l.scanner.Scan(l.dirs...)
	if err != nil {
		return res, err
	}
	l.mu.Lock()
	l.result = res
	l.mu.Unlock()
	return res, nil
}

// Result returns the scan currently served
func (l *Live) Result() *Result {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.result
}

// Dirs returns the scanned directories
func (l *Live) Dirs() []string { return l.dirs }

func (l *Live) Lookup(name string) (*descriptor.Type, bool) {
	return l.Result().Table.Lookup(name)
}

func (l *Live) Names() []string {
	return l.Result().Table.Names()
}

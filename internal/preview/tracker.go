package preview

import (
	"os"
	"sync"
)

// Tracker owns the preview currently on screen and discards results that
// arrive for content that has since changed.
type Tracker struct {
	mu      sync.Mutex
	want    string
	current *Result
}

// Want records the key of the newest request.
func (t *Tracker) Want(key string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.want = key
}

// Accept installs res if it matches the wanted key. A stale result is
// deleted and false is returned.
func (t *Tracker) Accept(res Result) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if res.Key == "" || res.Key != t.want {
		removeResult(&res)
		return false
	}
	if t.current != nil && t.current.Dir != res.Dir {
		removeResult(t.current)
	}
	t.current = &res
	return true
}

// Current returns the accepted preview, if any.
func (t *Tracker) Current() (Result, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.current == nil {
		return Result{}, false
	}
	return *t.current, true
}

// Invalidate drops the current preview and any pending request.
func (t *Tracker) Invalidate() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.want = ""
	if t.current != nil {
		removeResult(t.current)
		t.current = nil
	}
}

func removeResult(r *Result) {
	if r.Dir != "" {
		os.RemoveAll(r.Dir)
		return
	}
	if r.PNGPath != "" {
		os.Remove(r.PNGPath)
	}
}

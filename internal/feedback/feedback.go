// Package feedback records why a teacher rejected a generated question.
package feedback

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"gopkg.in/ini.v1"

	"github.com/aerladis/eflwizard/internal/store"
)

const (
	section     = "feedback"
	keyPrefix   = "entry_"
	keyLayout   = "20060102_150405"
	noReason    = "n/a"
	fieldSep    = "|"
	questionKey = "question="
	reasonKey   = "reason="
)

// Entry is one logged rejection.
type Entry struct {
	Key      string
	Question string
	Reason   string
}

// Log is an ini file of feedback entries.
type Log struct {
	mu   sync.Mutex
	path string
}

func NewLog(path string) *Log {
	return &Log{path: path}
}

func (l *Log) Path() string { return l.path }

func (l *Log) load() (*ini.File, error) {
	f, err := ini.LoadSources(ini.LoadOptions{Loose: true, IgnoreInlineComment: true}, l.path)
	if err != nil {
		return nil, fmt.Errorf("read feedback log: %w", err)
	}
	return f, nil
}

// Append adds an entry keyed by time. Keys that already exist get a
// numeric suffix. It returns the key used.
func (l *Log) Append(question, reason string, at time.Time) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := l.load()
	if err != nil {
		return "", err
	}
	sec := f.Section(section)

	base := keyPrefix + at.Format(keyLayout)
	key := base
	for n := 2; sec.HasKey(key); n++ {
		key = fmt.Sprintf("%s_%d", base, n)
	}

	reason = oneLine(reason)
	if reason == "" {
		reason = noReason
	}
	if _, err := sec.NewKey(key, questionKey+oneLine(question)+fieldSep+reasonKey+reason); err != nil {
		return "", fmt.Errorf("add feedback entry: %w", err)
	}

	if err := store.EnsureDir(l.path); err != nil {
		return "", err
	}
	tmp := l.path + ".tmp"
	if err := f.SaveTo(tmp); err != nil {
		return "", fmt.Errorf("write feedback log: %w", err)
	}
	if err := os.Rename(tmp, l.path); err != nil {
		return "", fmt.Errorf("write feedback log: %w", err)
	}
	return key, nil
}

// Entries returns all entries in chronological order: by timestamp, then by
// collision suffix.
func (l *Log) Entries() ([]Entry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := l.load()
	if err != nil {
		return nil, err
	}
	if !f.HasSection(section) {
		return nil, nil
	}
	keys := f.Section(section).Keys()
	out := make([]Entry, 0, len(keys))
	for _, k := range keys {
		e := Entry{Key: k.Name()}
		e.Question, e.Reason = splitValue(k.String())
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool {
		bi, ni := keyOrder(out[i].Key)
		bj, nj := keyOrder(out[j].Key)
		if bi != bj {
			return bi < bj
		}
		return ni < nj
	})
	return out, nil
}

// keyOrder splits a key into its timestamp part and collision number. The
// first entry of a second has no suffix and counts as 1.
func keyOrder(key string) (string, int) {
	n := len(keyPrefix) + len(keyLayout)
	if len(key) <= n+1 || key[n] != '_' {
		return key, 1
	}
	seq, err := strconv.Atoi(key[n+1:])
	if err != nil {
		return key, 1
	}
	return key[:n], seq
}

func splitValue(v string) (question, reason string) {
	i := strings.LastIndex(v, fieldSep+reasonKey)
	if i < 0 {
		return strings.TrimPrefix(v, questionKey), ""
	}
	return strings.TrimPrefix(v[:i], questionKey), v[i+len(fieldSep+reasonKey):]
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Recorder writes feedback to the ini log and the event store.
type Recorder struct {
	log    *Log
	repo   store.FeedbackRepo
	logger *zap.Logger
	now    func() time.Time
}

// NewRecorder builds a Recorder. Either sink may be nil.
func NewRecorder(log *Log, repo store.FeedbackRepo, logger *zap.Logger) *Recorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recorder{log: log, repo: repo, logger: logger.Named("feedback"), now: time.Now}
}

// Record logs one rejection. A failure in one sink does not skip the other.
func (r *Recorder) Record(ctx context.Context, sessionID string, index int, question, reason string) error {
	var errs []error
	if r.log != nil {
		if _, err := r.log.Append(question, reason, r.now()); err != nil {
			errs = append(errs, err)
		}
	}
	if r.repo != nil {
		if strings.TrimSpace(reason) == "" {
			reason = noReason
		}
		err := r.repo.AppendFeedback(ctx, store.FeedbackData{
			SessionID:     sessionID,
			QuestionIndex: index,
			Question:      question,
			Reason:        reason,
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("store feedback: %w", err))
		}
	}
	err := errors.Join(errs...)
	if err != nil {
		r.logger.Warn("record feedback", zap.Error(err))
	}
	return err
}

package feedback

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aerladis/eflwizard/internal/store"
)

func TestLogAppendAndEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "feedback.ini")
	log := NewLog(path)
	at := time.Date(2026, 5, 1, 9, 30, 15, 0, time.UTC)

	k1, err := log.Append("What is your job?", "too easy", at)
	require.NoError(t, err)
	assert.Equal(t, "entry_20260501_093015", k1)

	k2, err := log.Append("Where do you\nlive?", "", at)
	require.NoError(t, err)
	assert.Equal(t, "entry_20260501_093015_2", k2)

	k3, err := log.Append("Q3?", "grammar; wrong", at)
	require.NoError(t, err)
	assert.Equal(t, "entry_20260501_093015_3", k3)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[feedback]")
	assert.Contains(t, string(data), "question=What is your job?|reason=too easy")

	entries, err := log.Entries()
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, Entry{Key: k1, Question: "What is your job?", Reason: "too easy"}, entries[0])
	assert.Equal(t, Entry{Key: k2, Question: "Where do you live?", Reason: "n/a"}, entries[1])
	assert.Equal(t, "grammar; wrong", entries[2].Reason)
}

func TestEntriesOrderCollisionSuffixNumerically(t *testing.T) {
	log := NewLog(filepath.Join(t.TempDir(), "feedback.ini"))
	at := time.Date(2026, 5, 1, 9, 30, 15, 0, time.UTC)
	for i := 1; i <= 11; i++ {
		_, err := log.Append(fmt.Sprintf("Question %d?", i), "", at)
		require.NoError(t, err)
	}
	_, err := log.Append("Later?", "", at.Add(time.Second))
	require.NoError(t, err)

	entries, err := log.Entries()
	require.NoError(t, err)
	require.Len(t, entries, 12)
	for i := 0; i < 11; i++ {
		assert.Equal(t, fmt.Sprintf("Question %d?", i+1), entries[i].Question)
	}
	assert.Equal(t, "entry_20260501_093015_10", entries[9].Key)
	assert.Equal(t, "Later?", entries[11].Question)
}

func TestKeyOrder(t *testing.T) {
	base, n := keyOrder("entry_20260501_093015")
	assert.Equal(t, "entry_20260501_093015", base)
	assert.Equal(t, 1, n)

	base, n = keyOrder("entry_20260501_093015_12")
	assert.Equal(t, "entry_20260501_093015", base)
	assert.Equal(t, 12, n)

	base, n = keyOrder("custom")
	assert.Equal(t, "custom", base)
	assert.Equal(t, 1, n)
}

func TestEntriesMissingFile(t *testing.T) {
	entries, err := NewLog(filepath.Join(t.TempDir(), "none.ini")).Entries()
	require.NoError(t, err)
	assert.Empty(t, entries)
}

type fakeRepo struct {
	got []store.FeedbackData
	err error
}

func (f *fakeRepo) AppendFeedback(_ context.Context, d store.FeedbackData) error {
	f.got = append(f.got, d)
	return f.err
}

func (f *fakeRepo) ListFeedback(context.Context, store.QueryOpts) ([]store.Feedback, error) {
	return nil, nil
}

func TestRecorderWritesBothSinks(t *testing.T) {
	log := NewLog(filepath.Join(t.TempDir(), "feedback.ini"))
	repo := &fakeRepo{}
	r := NewRecorder(log, repo, nil)

	require.NoError(t, r.Record(context.Background(), "sess-1", 4, "Old question?", ""))

	require.Len(t, repo.got, 1)
	assert.Equal(t, store.FeedbackData{SessionID: "sess-1", QuestionIndex: 4, Question: "Old question?", Reason: "n/a"}, repo.got[0])

	entries, err := log.Entries()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Old question?", entries[0].Question)
}

func TestRecorderKeepsGoingOnStoreError(t *testing.T) {
	log := NewLog(filepath.Join(t.TempDir(), "feedback.ini"))
	repo := &fakeRepo{err: errors.New("disk full")}
	r := NewRecorder(log, repo, nil)

	err := r.Record(context.Background(), "s", 0, "Q?", "why")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "disk full"))

	entries, err := log.Entries()
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

// Package resolver tests date inference and pull-request number lookup with fake sources.
// Related: internal/resolver/resolver.go
// Tags: resolver, pull-request, history, inference

package resolver

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dragonshield/changelog-sync/internal/changelog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRemote returns canned search results and records the ids searched.
type fakeRemote struct {
	results  map[string]changelog.PullRequestInfo
	failures map[string]error
	searched []string
}

func (f *fakeRemote) SearchPullRequest(_ context.Context, refID string) (changelog.PullRequestInfo, bool, error) {
	f.searched = append(f.searched, refID)
	if err := f.failures[refID]; err != nil {
		return changelog.PullRequestInfo{}, false, err
	}
	info, ok := f.results[refID]
	return info, ok, nil
}

// fakeHistory returns canned commit data.
type fakeHistory struct {
	times    map[string]time.Time
	subjects map[string][]string
	err      error
}

func (f *fakeHistory) LatestCommitTime(refID string) (time.Time, bool, error) {
	if f.err != nil {
		return time.Time{}, false, f.err
	}
	t, ok := f.times[refID]
	return t, ok, nil
}

func (f *fakeHistory) RecentSubjects(refID string, limit int) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	subjects := f.subjects[refID]
	if len(subjects) > limit {
		subjects = subjects[:limit]
	}
	return subjects, nil
}

func date(s string) time.Time {
	d, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return d
}

func noSleep(opts Options) Options {
	opts.sleep = func(time.Duration) {}
	return opts
}

func TestReferenceIDs(t *testing.T) {
	entries := []changelog.Entry{
		{ReferenceID: "DS-010"},
		{ReferenceID: ""},
		{ReferenceID: "DS-002"},
		{ReferenceID: "DS-010"},
	}
	assert.Equal(t, []string{"DS-002", "DS-010"}, ReferenceIDs(entries))
}

func TestSearch_SequentialWithDelay(t *testing.T) {
	remote := &fakeRemote{
		results: map[string]changelog.PullRequestInfo{"DS-001": {Number: 5}},
	}

	var slept []time.Duration
	var progress []int
	opts := Options{
		SearchDelay: 200 * time.Millisecond,
		OnSearch:    func(_ string, n, _ int) { progress = append(progress, n) },
		sleep:       func(d time.Duration) { slept = append(slept, d) },
	}

	r := New(remote, nil, opts)
	r.Search(context.Background(), []string{"DS-001", "DS-002", "DS-003"})

	assert.Equal(t, []string{"DS-001", "DS-002", "DS-003"}, remote.searched)
	assert.Len(t, slept, 3, "one delay per remote call")
	assert.Equal(t, []int{1, 2, 3}, progress)

	info, ok := r.PullRequest("DS-001")
	require.True(t, ok)
	assert.Equal(t, 5, info.Number)

	_, ok = r.PullRequest("DS-002")
	assert.False(t, ok)
}

func TestSearch_ErrorsAreSwallowed(t *testing.T) {
	remote := &fakeRemote{
		failures: map[string]error{"DS-001": errors.New("network down")},
		results:  map[string]changelog.PullRequestInfo{"DS-002": {Number: 9}},
	}

	r := New(remote, nil, noSleep(Options{}))
	r.Search(context.Background(), []string{"DS-001", "DS-002"})

	_, ok := r.PullRequest("DS-001")
	assert.False(t, ok)
	_, ok = r.PullRequest("DS-002")
	assert.True(t, ok, "a failed search does not stop later ones")
}

func TestSearch_NilRemote(t *testing.T) {
	r := New(nil, nil, noSleep(Options{}))
	r.Search(context.Background(), []string{"DS-001"})
	_, ok := r.PullRequest("DS-001")
	assert.False(t, ok)
}

func TestSearch_CancelledContext(t *testing.T) {
	remote := &fakeRemote{}
	r := New(remote, nil, noSleep(Options{}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r.Search(ctx, []string{"DS-001"})
	assert.Empty(t, remote.searched)
}

func TestInferDates(t *testing.T) {
	explicit := changelog.Entry{ReferenceID: "DS-001"}
	explicit.SetDate(date("2025-01-01T00:00:00Z"), changelog.DateExplicitEntry)

	tests := map[string]struct {
		remote     *fakeRemote
		history    *fakeHistory
		entry      changelog.Entry
		wantDate   string
		wantSource changelog.DateSource
	}{
		"explicit date untouched": {
			remote:     &fakeRemote{results: map[string]changelog.PullRequestInfo{"DS-001": {ClosedAt: date("2025-03-01T00:00:00Z")}}},
			history:    &fakeHistory{},
			entry:      explicit,
			wantDate:   "2025-01-01",
			wantSource: changelog.DateExplicitEntry,
		},
		"closed date preferred": {
			remote: &fakeRemote{results: map[string]changelog.PullRequestInfo{"DS-002": {
				ClosedAt:  date("2025-02-10T15:00:00Z"),
				CreatedAt: date("2025-02-01T15:00:00Z"),
			}}},
			history:    &fakeHistory{times: map[string]time.Time{"DS-002": date("2025-01-05T00:00:00Z")}},
			entry:      changelog.Entry{ReferenceID: "DS-002", DateSource: changelog.DateNone},
			wantDate:   "2025-02-10",
			wantSource: changelog.DateInferredPR,
		},
		"created date when not closed": {
			remote:     &fakeRemote{results: map[string]changelog.PullRequestInfo{"DS-003": {CreatedAt: date("2025-02-01T15:00:00Z")}}},
			history:    &fakeHistory{},
			entry:      changelog.Entry{ReferenceID: "DS-003", DateSource: changelog.DateNone},
			wantDate:   "2025-02-01",
			wantSource: changelog.DateInferredPR,
		},
		"history fallback": {
			remote:     &fakeRemote{},
			history:    &fakeHistory{times: map[string]time.Time{"DS-004": date("2025-01-05T23:30:00+02:00")}},
			entry:      changelog.Entry{ReferenceID: "DS-004", DateSource: changelog.DateNone},
			wantDate:   "2025-01-05",
			wantSource: changelog.DateInferredHistory,
		},
		"history failure leaves no date": {
			remote:     &fakeRemote{},
			history:    &fakeHistory{err: errors.New("no HEAD")},
			entry:      changelog.Entry{ReferenceID: "DS-005", DateSource: changelog.DateNone},
			wantDate:   "",
			wantSource: changelog.DateNone,
		},
		"no reference id": {
			remote:     &fakeRemote{},
			history:    &fakeHistory{times: map[string]time.Time{"": date("2025-01-05T00:00:00Z")}},
			entry:      changelog.Entry{DateSource: changelog.DateNone},
			wantDate:   "",
			wantSource: changelog.DateNone,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			r := New(tt.remote, tt.history, noSleep(Options{}))
			r.Search(context.Background(), []string{"DS-001", "DS-002", "DS-003", "DS-004", "DS-005"})

			entries := []changelog.Entry{tt.entry}
			r.InferDates(entries)

			assert.Equal(t, tt.wantDate, entries[0].DateText)
			assert.Equal(t, tt.wantSource, entries[0].DateSource)
		})
	}
}

func TestPullRequestNumbers(t *testing.T) {
	remote := &fakeRemote{results: map[string]changelog.PullRequestInfo{
		"DS-001": {Number: 101},
		"DS-002": {Number: 0, CreatedAt: date("2025-01-01T00:00:00Z")},
	}}
	history := &fakeHistory{subjects: map[string][]string{
		"DS-001": {"DS-001 tweak (#7)"},
		"DS-002": {"DS-002 wip", "Merge pull request #55 from x/ds-002"},
		"DS-003": {"Finish DS-003 (#12)", "Merge pull request #11 from x/ds-003"},
		"DS-004": {"DS-004 no number"},
	}}

	r := New(remote, history, noSleep(Options{}))
	ids := []string{"DS-001", "DS-002", "DS-003", "DS-004"}
	r.Search(context.Background(), ids)

	got := r.PullRequestNumbers(ids)
	assert.Equal(t, map[string]int{
		"DS-001": 101,
		"DS-002": 55,
		"DS-003": 12,
	}, got)
}

func TestPullRequestNumbers_HistoryDepth(t *testing.T) {
	history := &fakeHistory{subjects: map[string][]string{
		"DS-009": {"DS-009 one", "DS-009 two", "DS-009 three (#3)"},
	}}

	r := New(nil, history, noSleep(Options{HistoryDepth: 2}))
	assert.Empty(t, r.PullRequestNumbers([]string{"DS-009"}))

	r = New(nil, history, noSleep(Options{HistoryDepth: 3}))
	assert.Equal(t, map[string]int{"DS-009": 3}, r.PullRequestNumbers([]string{"DS-009"}))
}

func TestParsePRNumber(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		input string
		want  int
	}{
		"merge commit":         {input: "Merge pull request #123 from feature/branch", want: 123},
		"squash suffix":        {input: "Refactor code (#456)", want: 456},
		"no reference":         {input: "No PR reference here", want: 0},
		"first match wins":     {input: "Multiple #10 and #20", want: 10},
		"hash only":            {input: "hash symbol only #", want: 0},
		"lowercase merge text": {input: "merge pull request #77 from fork", want: 77},
	}

	for name, tc := range tests {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, ParsePRNumber(tc.input))
		})
	}
}

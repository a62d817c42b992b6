// Package resolver infers missing implementation dates and pull-request
// numbers for feature log entries from a remote pull-request search and the
// local commit history. Every lookup is best-effort: a failing source is
// treated as having no data.
package resolver

import (
	"context"
	"regexp"
	"sort"
	"strconv"
	"time"

	"github.com/dragonshield/changelog-sync/internal/changelog"
)

// DefaultSearchDelay is the pause after each remote search.
const DefaultSearchDelay = 200 * time.Millisecond

// DefaultHistoryDepth is how many matching commits are scanned for a
// pull-request number.
const DefaultHistoryDepth = 20

// PullRequestSearcher finds the top pull request mentioning a reference id.
type PullRequestSearcher interface {
	SearchPullRequest(ctx context.Context, refID string) (changelog.PullRequestInfo, bool, error)
}

// HistorySearcher queries local commit history.
type HistorySearcher interface {
	// LatestCommitTime returns the timestamp of the most recent commit whose
	// message mentions refID.
	LatestCommitTime(refID string) (time.Time, bool, error)
	// RecentSubjects returns subjects of up to limit of the most recent
	// commits mentioning refID, newest first.
	RecentSubjects(refID string, limit int) ([]string, error)
}

// Options configures a Resolver.
type Options struct {
	// SearchDelay is slept after every remote search. Zero disables it.
	SearchDelay time.Duration
	// HistoryDepth bounds the commits scanned for a PR number.
	HistoryDepth int
	// OnSearch is called before each remote search with its 1-based position.
	OnSearch func(refID string, n, total int)
	// sleep is replaced in tests.
	sleep func(time.Duration)
}

// debugLogger is a no-op unless SetDebugLogger installs one.
var debugLogger func(format string, args ...any)

// SetDebugLogger configures the debug logger for resolution.
func SetDebugLogger(logger func(format string, args ...any)) {
	debugLogger = logger
}

func logDebug(format string, args ...any) {
	if debugLogger != nil {
		debugLogger(format, args...)
	}
}

// Resolver holds pull-request search results for one run.
type Resolver struct {
	remote  PullRequestSearcher
	history HistorySearcher
	opts    Options
	found   map[string]changelog.PullRequestInfo
}

// New creates a resolver. Either source may be nil to disable it.
func New(remote PullRequestSearcher, history HistorySearcher, opts Options) *Resolver {
	if opts.HistoryDepth <= 0 {
		opts.HistoryDepth = DefaultHistoryDepth
	}
	if opts.sleep == nil {
		opts.sleep = time.Sleep
	}
	return &Resolver{
		remote:  remote,
		history: history,
		opts:    opts,
		found:   make(map[string]changelog.PullRequestInfo),
	}
}

// ReferenceIDs returns the distinct reference ids of entries, sorted.
func ReferenceIDs(entries []changelog.Entry) []string {
	seen := make(map[string]bool)
	var ids []string
	for _, e := range entries {
		if e.ReferenceID == "" || seen[e.ReferenceID] {
			continue
		}
		seen[e.ReferenceID] = true
		ids = append(ids, e.ReferenceID)
	}
	sort.Strings(ids)
	return ids
}

// Search runs one remote search per reference id, sequentially, pausing
// SearchDelay after each call. Errors and empty results are recorded as
// "no pull request".
func (r *Resolver) Search(ctx context.Context, refIDs []string) {
	if r.remote == nil {
		return
	}

	for i, id := range refIDs {
		if ctx.Err() != nil {
			logDebug("[resolver] search cancelled after %d of %d", i, len(refIDs))
			return
		}
		if r.opts.OnSearch != nil {
			r.opts.OnSearch(id, i+1, len(refIDs))
		}

		info, ok, err := r.remote.SearchPullRequest(ctx, id)
		switch {
		case err != nil:
			logDebug("[resolver] remote search for %s failed: %v", id, err)
		case ok:
			r.found[id] = info
		}

		if r.opts.SearchDelay > 0 {
			r.opts.sleep(r.opts.SearchDelay)
		}
	}
}

// PullRequest returns the remote search result for refID, if any.
func (r *Resolver) PullRequest(refID string) (changelog.PullRequestInfo, bool) {
	info, ok := r.found[refID]
	return info, ok
}

// InferDates fills missing dates on entries that carry a reference id:
// first from the pull request's close (else creation) date, then from the
// most recent commit mentioning the id. Entries are updated in place.
func (r *Resolver) InferDates(entries []changelog.Entry) {
	for i := range entries {
		e := &entries[i]
		if e.HasDate() || e.ReferenceID == "" {
			continue
		}

		if info, ok := r.found[e.ReferenceID]; ok {
			if d, ok := info.BestDate(); ok {
				e.SetDate(d, changelog.DateInferredPR)
				continue
			}
		}

		if d, ok := r.historyDate(e.ReferenceID); ok {
			e.SetDate(d, changelog.DateInferredHistory)
		}
	}
}

func (r *Resolver) historyDate(refID string) (time.Time, bool) {
	if r.history == nil {
		return time.Time{}, false
	}
	d, ok, err := r.history.LatestCommitTime(refID)
	if err != nil {
		logDebug("[resolver] history lookup for %s failed: %v", refID, err)
		return time.Time{}, false
	}
	return d, ok
}

// PullRequestNumbers maps each reference id to a pull-request number,
// preferring the remote search result and falling back to "#<n>" tokens in
// recent commit subjects. Ids with no number are absent from the map.
func (r *Resolver) PullRequestNumbers(refIDs []string) map[string]int {
	numbers := make(map[string]int)
	for id, info := range r.found {
		if info.Number != 0 {
			numbers[id] = info.Number
		}
	}

	for _, id := range refIDs {
		if _, ok := numbers[id]; ok {
			continue
		}
		if n := r.historyPRNumber(id); n != 0 {
			numbers[id] = n
		}
	}
	return numbers
}

func (r *Resolver) historyPRNumber(refID string) int {
	if r.history == nil {
		return 0
	}
	subjects, err := r.history.RecentSubjects(refID, r.opts.HistoryDepth)
	if err != nil {
		logDebug("[resolver] history subjects for %s failed: %v", refID, err)
		return 0
	}
	for _, s := range subjects {
		if n := ParsePRNumber(s); n != 0 {
			return n
		}
	}
	return 0
}

var (
	prNumberPattern     = regexp.MustCompile(`#(\d+)`)
	mergeSubjectPattern = regexp.MustCompile(`(?i)Merge pull request #(\d+)`)
)

// ParsePRNumber extracts the first "#<n>" (or "Merge pull request #<n>")
// from a commit subject. Returns 0 when there is none.
func ParsePRNumber(subject string) int {
	for _, p := range []*regexp.Regexp{prNumberPattern, mergeSubjectPattern} {
		match := p.FindStringSubmatch(subject)
		if len(match) < 2 {
			continue
		}
		if n, err := strconv.Atoi(match[1]); err == nil {
			return n
		}
	}
	return 0
}

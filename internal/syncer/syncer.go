// Package syncer runs one changelog regeneration: it loads tags and
// releases, parses the feature log, resolves missing dates and pull-request
// numbers, assigns entries to releases and renders both documents.
// Nothing is written until every step has succeeded.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/dragonshield/changelog-sync/internal/changelog"
	"github.com/dragonshield/changelog-sync/internal/config"
	"github.com/dragonshield/changelog-sync/internal/progress"
	"github.com/dragonshield/changelog-sync/internal/resolver"
	"github.com/dragonshield/changelog-sync/internal/version"
)

var (
	// ErrMissingFeatureLog is returned when the feature log does not exist.
	ErrMissingFeatureLog = errors.New("feature log not found")
	// ErrLoadTags wraps failures to read repository tags.
	ErrLoadTags = errors.New("loading tags")
)

// TagSource lists repository tags with their creation timestamps.
type TagSource interface {
	LoadTags() ([]changelog.Tag, error)
}

// ReleaseSource lists remote releases keyed by tag name.
type ReleaseSource interface {
	FetchReleases(ctx context.Context) (map[string]changelog.Release, error)
}

// debugLogger is a no-op unless SetDebugLogger installs one.
var debugLogger func(format string, args ...any)

// SetDebugLogger configures the debug logger for the pipeline.
func SetDebugLogger(logger func(format string, args ...any)) {
	debugLogger = logger
}

func logDebug(format string, args ...any) {
	if debugLogger != nil {
		debugLogger(format, args...)
	}
}

// Sources bundles the external collaborators of a run. Releases and
// PullRequests are nil when remote access is disabled; History may be nil
// outside a repository.
type Sources struct {
	Tags         TagSource
	Releases     ReleaseSource
	PullRequests resolver.PullRequestSearcher
	History      resolver.HistorySearcher
}

// Options configures a run.
type Options struct {
	Paths           config.Paths
	CarryForward    bool
	ReferencePrefix string
	Router          changelog.TagRouter
	// ReleaseNotes adds each release body under a Notes category.
	ReleaseNotes bool
	SearchDelay  time.Duration
	HistoryDepth int
	// Display reports stage progress; nil is silent.
	Display *progress.Display
}

// Document is one rendered output file.
type Document struct {
	Path    string
	Content string
}

// Result is everything a run produced, ready to be written or compared.
type Result struct {
	Entries    []changelog.Entry
	Tags       []changelog.Tag
	Assignment changelog.Assignment
	Documents  []Document
	Summary    []changelog.SummaryLine
	// Version is set when a VERSION file and a main tag both exist.
	Version *version.Result
}

// Syncer regenerates the changelog documents.
type Syncer struct {
	src  Sources
	opts Options
}

// New creates a syncer.
func New(src Sources, opts Options) *Syncer {
	if opts.Router.Prefix == "" {
		opts.Router = changelog.DefaultTagRouter()
	}
	return &Syncer{src: src, opts: opts}
}

// Run builds both documents in memory. It fails on a missing feature log,
// an invalid date in it, or unreadable tags; remote and history failures
// only reduce the data available.
func (s *Syncer) Run(ctx context.Context) (*Result, error) {
	display := s.opts.Display

	if _, err := os.Stat(s.opts.Paths.NewFeatures); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrMissingFeatureLog, s.opts.Paths.NewFeatures)
		}
		return nil, fmt.Errorf("checking feature log: %w", err)
	}

	display.StartStage("Loading tags")
	tags, err := s.src.Tags.LoadTags()
	if err != nil {
		display.FailStage(err)
		return nil, fmt.Errorf("%w: %w", ErrLoadTags, err)
	}
	display.CompleteStage(fmt.Sprintf("%d tags", len(tags)))

	releases := s.fetchReleases(ctx)

	display.StartStage("Parsing feature log")
	entries, err := changelog.LoadFeatureLog(s.opts.Paths.NewFeatures, changelog.ParseOptions{
		CarryForward:    s.opts.CarryForward,
		ReferencePrefix: s.opts.ReferencePrefix,
	})
	if err != nil {
		display.FailStage(err)
		return nil, err
	}
	display.CompleteStage(fmt.Sprintf("%d entries", len(entries)))

	prNumbers := s.resolve(ctx, entries)

	mainTags, archiveTags := s.opts.Router.Partition(tags)
	assignment := changelog.Assign(entries, tags, releases)

	renderer := changelog.Renderer{
		Releases:     releases,
		PullRequests: prNumbers,
		ReleaseNotes: s.opts.ReleaseNotes,
	}
	blocks := renderer.Build(mainTags, archiveTags, assignment)

	result := &Result{
		Entries:    entries,
		Tags:       tags,
		Assignment: assignment,
		Summary:    changelog.Summarize(tags, releases, assignment),
		Documents: []Document{
			{
				Path: s.opts.Paths.Changelog,
				Content: changelog.ChangelogString(blocks, changelog.DocumentOptions{
					ArchiveRef:      s.opts.Paths.ArchiveLink(),
					ReferencePrefix: s.opts.ReferencePrefix,
				}),
			},
			{Path: s.opts.Paths.Archive, Content: changelog.ArchiveString(blocks)},
		},
	}

	if latest, ok := s.opts.Router.Latest(tags); ok {
		v, found, err := version.Check(s.opts.Paths.VersionFile, latest.Name)
		if err != nil {
			logDebug("[syncer] version check: %v", err)
		} else if found {
			result.Version = &v
		}
	}

	return result, nil
}

// fetchReleases returns remote releases, or an empty map when remote access
// is disabled or fails.
func (s *Syncer) fetchReleases(ctx context.Context) map[string]changelog.Release {
	if s.src.Releases == nil {
		return map[string]changelog.Release{}
	}

	display := s.opts.Display
	display.StartStage("Fetching releases")
	releases, err := s.src.Releases.FetchReleases(ctx)
	if err != nil {
		logDebug("[syncer] fetching releases: %v", err)
		display.FailStage(errors.New("continuing without release data"))
		return map[string]changelog.Release{}
	}
	display.CompleteStage(fmt.Sprintf("%d releases", len(releases)))
	return releases
}

// resolve fills missing dates in place and returns pull-request numbers by
// reference id.
func (s *Syncer) resolve(ctx context.Context, entries []changelog.Entry) map[string]int {
	display := s.opts.Display
	ids := resolver.ReferenceIDs(entries)

	r := resolver.New(s.src.PullRequests, s.src.History, resolver.Options{
		SearchDelay:  s.opts.SearchDelay,
		HistoryDepth: s.opts.HistoryDepth,
		OnSearch: func(refID string, n, total int) {
			display.Update(fmt.Sprintf("Searching pull requests %d/%d (%s)", n, total, refID))
		},
	})

	if s.src.PullRequests != nil && len(ids) > 0 {
		display.StartStage("Searching pull requests")
		r.Search(ctx, ids)
		display.CompleteStage(fmt.Sprintf("%d references", len(ids)))
	}

	r.InferDates(entries)
	return r.PullRequestNumbers(ids)
}

// Changed returns the paths of documents whose content differs from the
// file on disk. A missing file counts as changed.
func Changed(docs []Document) ([]string, error) {
	var changed []string
	for _, doc := range docs {
		current, err := os.ReadFile(doc.Path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				changed = append(changed, doc.Path)
				continue
			}
			return nil, fmt.Errorf("reading %s: %w", doc.Path, err)
		}
		if string(current) != doc.Content {
			changed = append(changed, doc.Path)
		}
	}
	sort.Strings(changed)
	return changed, nil
}

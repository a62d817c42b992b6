package cli

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/dragonshield/changelog-sync/internal/changelog"
	"github.com/dragonshield/changelog-sync/internal/cli/shared"
	clierrors "github.com/dragonshield/changelog-sync/internal/errors"
	"github.com/dragonshield/changelog-sync/internal/github"
	"github.com/dragonshield/changelog-sync/internal/output"
	"github.com/dragonshield/changelog-sync/internal/progress"
	"github.com/dragonshield/changelog-sync/internal/syncer"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var dryRunFlag bool

// runSync regenerates both documents and writes them, or prints them with
// --dry-run.
func runSync(cmd *cobra.Command, _ []string) error {
	session, result, err := regenerate(cmd)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if dryRunFlag {
		if err := syncer.PrintDocuments(out, result.Documents); err != nil {
			return err
		}
		printVersionWarnings(cmd, result)
		return nil
	}

	if err := syncer.WriteDocuments(result.Documents); err != nil {
		var pathErr *syncer.PathError
		if errors.As(err, &pathErr) {
			return clierrors.FileNotWritable(pathErr.Path, pathErr.Err)
		}
		return err
	}

	for _, doc := range result.Documents {
		output.PrintSuccess(out, "Wrote "+relativeTo(session.Root, doc.Path))
	}
	if err := changelog.FormatSummary(result.Summary, out, changelog.FormatOptions{Plain: color.NoColor}); err != nil {
		return err
	}

	printVersionWarnings(cmd, result)
	return nil
}

// regenerate loads the session and runs the pipeline without writing.
func regenerate(cmd *cobra.Command) (*shared.Session, *syncer.Result, error) {
	session, err := shared.LoadSession(cmd)
	if err != nil {
		return nil, nil, err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	s, err := newSyncer(ctx, cmd, session)
	if err != nil {
		return nil, nil, err
	}

	result, err := s.Run(ctx)
	if err != nil {
		return nil, nil, mapSyncError(session, err)
	}
	return session, result, nil
}

// newSyncer wires the sources enabled by the session's configuration.
func newSyncer(ctx context.Context, cmd *cobra.Command, session *shared.Session) (*syncer.Syncer, error) {
	cfg := session.Config
	var src syncer.Sources

	if session.Repo != nil {
		if cfg.FetchTags && !session.Repo.FetchTags(ctx, cfg.GitHub.Token) {
			output.PrintWarning(cmd.ErrOrStderr(), "Warning: fetching tags failed for some remotes; using local tags.")
		}
		src.Tags = session.Repo
		src.History = session.Repo
	} else {
		if cfg.FetchTags {
			output.PrintWarning(cmd.ErrOrStderr(), "Warning: not inside a git repository; --fetch-tags ignored.")
		}
		debugf("[cli] %s is not inside a git repository; no tags or history", session.Root)
		src.Tags = noTags{}
	}

	if !cfg.NoGitHub {
		client, err := github.NewClient(github.Options{
			Owner:   cfg.GitHub.Owner,
			Repo:    cfg.GitHub.Repo,
			Token:   cfg.GitHub.Token,
			BaseURL: cfg.GitHub.APIURL,
			Timeout: cfg.GitHub.Timeout,
		})
		if err != nil {
			return nil, clierrors.InvalidConfig(err)
		}
		src.Releases = client
		src.PullRequests = client
	}

	return syncer.New(src, syncer.Options{
		Paths:           session.Paths,
		CarryForward:    !cfg.StrictDates,
		ReferencePrefix: cfg.ReferencePrefix,
		Router:          changelog.TagRouter{Prefix: cfg.MainTagPrefix, Markers: cfg.ArchiveMarkers},
		ReleaseNotes:    !cfg.NoGitHub,
		SearchDelay:     cfg.GitHub.SearchDelay,
		HistoryDepth:    cfg.HistoryDepth,
		Display:         newDisplay(cmd),
	}), nil
}

// newDisplay returns a progress display on stderr when it is a terminal or
// --verbose is set, and nil otherwise.
func newDisplay(cmd *cobra.Command) *progress.Display {
	caps := progress.DetectTerminalCapabilities(os.Stderr)
	verbose, _ := cmd.Flags().GetBool("verbose")
	if !caps.IsTTY && !verbose {
		return nil
	}
	return progress.NewDisplay(cmd.ErrOrStderr(), caps)
}

// mapSyncError turns pipeline errors into CLIErrors.
func mapSyncError(session *shared.Session, err error) error {
	var dateErr *changelog.DateError
	switch {
	case errors.Is(err, syncer.ErrMissingFeatureLog):
		return clierrors.MissingFeatureLog(session.Paths.NewFeatures)
	case errors.As(err, &dateErr):
		return clierrors.InvalidFeatureDate(relativeTo(session.Root, session.Paths.NewFeatures), dateErr.Line, dateErr.Value, err)
	case errors.Is(err, syncer.ErrLoadTags):
		return clierrors.TagLoadFailed(err)
	}
	return err
}

// printVersionWarnings reports a VERSION file that disagrees with the
// latest main tag. It never fails the command.
func printVersionWarnings(cmd *cobra.Command, result *syncer.Result) {
	if result.Version == nil {
		return
	}
	for _, line := range result.Version.Warnings() {
		output.PrintWarning(cmd.ErrOrStderr(), line)
	}
}

// relativeTo shortens path for display when it lies under root.
func relativeTo(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return path
	}
	return rel
}

// noTags stands in for the tag source outside a repository.
type noTags struct{}

func (noTags) LoadTags() ([]changelog.Tag, error) { return nil, nil }

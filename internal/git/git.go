// Package git provides repository access for changelog-sync: locating the
// repository root, listing tags with their creation dates and searching
// commit history for feature reference ids. It uses the go-git library so
// no git CLI is required.
package git

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/dragonshield/changelog-sync/internal/changelog"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/go-git/go-git/v5/plumbing/transport/ssh"
)

// debugLogger is a function that logs debug messages when debug mode is enabled.
// By default, it's a no-op. Set it via SetDebugLogger to enable debug output.
var debugLogger func(format string, args ...any)

// SetDebugLogger configures the debug logger for git operations.
// Pass nil to disable debug logging. The logger function should format
// and output the message (similar to log.Printf signature).
func SetDebugLogger(logger func(format string, args ...any)) {
	debugLogger = logger
}

// logDebug logs a debug message if the debug logger is set.
func logDebug(format string, args ...any) {
	if debugLogger != nil {
		debugLogger(format, args...)
	}
}

// openRepo opens a git repository at the specified path or current working directory.
// It uses go-git's PlainOpenWithOptions with DetectDotGit enabled to traverse
// up the directory tree to find the repository root.
// If path is empty, the current working directory is used.
func openRepo(path string) (*git.Repository, error) {
	if path == "" {
		var err error
		path, err = os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getting current directory: %w", err)
		}
	}

	logDebug("[git] opening repository at %s", path)

	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{
		DetectDotGit: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening repository at %s: %w", path, err)
	}

	logDebug("[git] repository opened successfully")
	return repo, nil
}

// Repo is an opened repository.
type Repo struct {
	repo *git.Repository
	root string
}

// Open opens the repository containing path (or the working directory when
// path is empty).
func Open(path string) (*Repo, error) {
	repo, err := openRepo(path)
	if err != nil {
		return nil, err
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("getting worktree: %w", err)
	}

	return &Repo{repo: repo, root: worktree.Filesystem.Root()}, nil
}

// Root returns the absolute path to the repository root.
func (r *Repo) Root() string {
	return r.root
}

// GetRepositoryRoot returns the absolute path to the repository root.
func GetRepositoryRoot() (string, error) {
	r, err := Open("")
	if err != nil {
		return "", err
	}
	logDebug("[git] GetRepositoryRoot: %s", r.root)
	return r.root, nil
}

// LoadTags returns every tag with its creator date, oldest first.
// Annotated tags use the tagger date; lightweight tags use the committer
// date of the tagged commit. Tags pointing at neither are skipped.
func (r *Repo) LoadTags() ([]changelog.Tag, error) {
	iter, err := r.repo.Tags()
	if err != nil {
		return nil, fmt.Errorf("listing tags: %w", err)
	}

	var tags []changelog.Tag
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		name := ref.Name().Short()
		when, ok := r.creatorDate(ref)
		if !ok {
			logDebug("[git] skipping tag %s: no tag or commit object", name)
			return nil
		}
		tags = append(tags, changelog.Tag{Name: name, Timestamp: when})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("iterating tags: %w", err)
	}

	sort.SliceStable(tags, func(i, j int) bool {
		return tags[i].Timestamp.Before(tags[j].Timestamp)
	})

	logDebug("[git] LoadTags: found %d tags", len(tags))
	return tags, nil
}

// creatorDate mirrors git's %(creatordate) for a tag reference.
func (r *Repo) creatorDate(ref *plumbing.Reference) (time.Time, bool) {
	if tagObj, err := r.repo.TagObject(ref.Hash()); err == nil {
		return tagObj.Tagger.When, true
	}
	if commit, err := r.repo.CommitObject(ref.Hash()); err == nil {
		return commit.Committer.When, true
	}
	return time.Time{}, false
}

// walkMatching visits commits reachable from HEAD, newest committer time
// first, whose message contains needle. Returning false from visit stops
// the walk.
func (r *Repo) walkMatching(needle string, visit func(c *object.Commit) bool) error {
	iter, err := r.repo.Log(&git.LogOptions{Order: git.LogOrderCommitterTime})
	if err != nil {
		return fmt.Errorf("reading history: %w", err)
	}
	defer iter.Close()

	err = iter.ForEach(func(c *object.Commit) error {
		if !strings.Contains(c.Message, needle) {
			return nil
		}
		if !visit(c) {
			return storer.ErrStop
		}
		return nil
	})
	if err != nil && !errors.Is(err, storer.ErrStop) {
		return fmt.Errorf("walking history: %w", err)
	}
	return nil
}

// LatestCommitTime returns the committer timestamp of the most recent commit
// whose message mentions refID. The boolean is false when none does.
func (r *Repo) LatestCommitTime(refID string) (time.Time, bool, error) {
	var found time.Time
	err := r.walkMatching(refID, func(c *object.Commit) bool {
		found = c.Committer.When
		return false
	})
	if err != nil {
		return time.Time{}, false, err
	}
	logDebug("[git] LatestCommitTime(%s): %v", refID, found)
	return found, !found.IsZero(), nil
}

// RecentSubjects returns the subject lines of up to limit of the most recent
// commits whose message mentions refID, newest first.
func (r *Repo) RecentSubjects(refID string, limit int) ([]string, error) {
	if limit <= 0 {
		return nil, nil
	}

	var subjects []string
	err := r.walkMatching(refID, func(c *object.Commit) bool {
		subject, _, _ := strings.Cut(c.Message, "\n")
		subjects = append(subjects, strings.TrimSpace(subject))
		return len(subjects) < limit
	})
	if err != nil {
		return nil, err
	}
	return subjects, nil
}

// getAuthForURL returns the appropriate authentication method for a remote URL.
// SSH URLs use SSH agent auth, HTTPS URLs use the token when one is given.
func getAuthForURL(url, token string) transport.AuthMethod {
	if isSSHURL(url) {
		auth, err := ssh.NewSSHAgentAuth("git")
		if err != nil {
			logDebug("[git] SSH agent auth failed: %v", err)
			return nil
		}
		return auth
	}

	if token != "" {
		// GitHub accepts a token as the username with an empty password.
		return &http.BasicAuth{Username: token}
	}

	return nil
}

// isSSHURL checks if a URL is an SSH URL.
// Detects git@ (SCP-style), ssh://, and git+ssh:// schemes.
func isSSHURL(url string) bool {
	return strings.HasPrefix(url, "git@") ||
		strings.HasPrefix(url, "ssh://") ||
		strings.HasPrefix(url, "git+ssh://")
}

// isSSHAgentAvailable checks if an SSH agent is available.
// Returns true only if SSH_AUTH_SOCK is set and non-empty.
func isSSHAgentAvailable() bool {
	sock := strings.TrimSpace(os.Getenv("SSH_AUTH_SOCK"))
	return sock != ""
}

// DefaultFetchTimeout is the default timeout for tag fetches.
const DefaultFetchTimeout = 60 * time.Second

// FetchTags fetches tags from every configured remote so shallow CI clones
// see the full release history. Failures are reported through the returned
// boolean and the debug logger; they are never fatal.
func (r *Repo) FetchTags(ctx context.Context, token string) bool {
	remotes, err := r.repo.Remotes()
	if err != nil || len(remotes) == 0 {
		logDebug("[git] FetchTags: no remotes configured")
		return true
	}

	allSucceeded := true
	for _, remote := range remotes {
		if ctx.Err() != nil {
			logDebug("[git] FetchTags: context cancelled, stopping fetch")
			return false
		}
		if err := fetchRemoteTags(ctx, r.repo, remote, token); err != nil {
			logDebug("[git] FetchTags: remote '%s' failed: %v", remote.Config().Name, err)
			allSucceeded = false
		}
	}
	return allSucceeded
}

// fetchRemoteTags fetches refs/tags/* from a single remote.
// Skips SSH remotes when no SSH agent is available.
func fetchRemoteTags(ctx context.Context, repo *git.Repository, remote *git.Remote, token string) error {
	remoteConfig := remote.Config()
	if len(remoteConfig.URLs) == 0 {
		return nil
	}

	url := remoteConfig.URLs[0]
	if isSSHURL(url) && !isSSHAgentAvailable() {
		logDebug("[git] skipping fetch from remote '%s': SSH URL without SSH agent available", remoteConfig.Name)
		return nil
	}

	logDebug("[git] fetching tags from remote '%s' (%s)", remoteConfig.Name, url)
	err := repo.FetchContext(ctx, &git.FetchOptions{
		RemoteName: remoteConfig.Name,
		Auth:       getAuthForURL(url, token),
		RefSpecs:   []config.RefSpec{"+refs/tags/*:refs/tags/*"},
		Tags:       git.AllTags,
	})

	if errors.Is(err, git.NoErrAlreadyUpToDate) {
		return nil
	}
	return err
}

// Package git reads commit history with go-git so it can be harvested into
// archive ciphers.
package git

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-git/go-git/v6"
	"github.com/go-git/go-git/v6/plumbing/object"
	"github.com/go-git/go-git/v6/storage/memory"
)

var errMaxCommits = errors.New("max commits reached")

// OpenRepository opens a Git repository from a local path
func OpenRepository(path string) (*git.Repository, error) {
	return git.PlainOpen(path)
}

// CloneRepository clones a Git repository to memory
func CloneRepository(url string) (*git.Repository, error) {
	return git.Clone(memory.NewStorage(), nil, &git.CloneOptions{
		URL: url,
	})
}

// OpenSource opens source as a local repository, or clones it into memory
// when it looks like a remote URL.
func OpenSource(source string) (*git.Repository, error) {
	if IsRemote(source) {
		repo, err := CloneRepository(source)
		if err != nil {
			return nil, fmt.Errorf("failed to clone %s: %w", source, err)
		}
		return repo, nil
	}

	repo, err := OpenRepository(source)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", source, err)
	}
	return repo, nil
}

// IsRemote reports whether source is a clone URL rather than a local path.
func IsRemote(source string) bool {
	for _, prefix := range []string{"https://", "http://", "ssh://", "git://", "git@"} {
		if strings.HasPrefix(source, prefix) {
			return true
		}
	}
	return false
}

// RepoName extracts the repository name from a path or URL
func RepoName(source string) string {
	source = strings.TrimSuffix(source, "/")

	name := source
	if i := strings.LastIndexAny(source, "/:"); i >= 0 && i < len(source)-1 {
		name = source[i+1:]
	}

	return strings.TrimSuffix(name, ".git")
}

// ParseAuthor converts go-git Signature to Author
func ParseAuthor(sig object.Signature) Author {
	return Author{
		Name:  sig.Name,
		Email: sig.Email,
		When:  sig.When,
	}
}

// parseCommitMessage splits commit message into subject and body
func parseCommitMessage(message string) (subject, body string) {
	lines := strings.SplitN(message, "\n", 2)
	subject = strings.TrimSpace(lines[0])
	if len(lines) > 1 {
		body = strings.TrimSpace(lines[1])
	}
	return
}

// ParseCommit converts a go-git Commit to our Commit struct
func ParseCommit(commit *object.Commit) Commit {
	subject, body := parseCommitMessage(commit.Message)
	hash := commit.Hash.String()

	return Commit{
		Hash:           hash,
		ShortHash:      hash[:8],
		Author:         ParseAuthor(commit.Author),
		MessageSubject: subject,
		MessageBody:    body,
		IsMerge:        commit.NumParents() > 1,
	}
}

// ParseCommits walks history from HEAD, newest first.
// maxCommits: 0 for unlimited, >0 to limit
func ParseCommits(repo *git.Repository, maxCommits int) ([]Commit, error) {
	ref, err := repo.Head()
	if err != nil {
		return nil, fmt.Errorf("failed to get HEAD: %w", err)
	}

	commitIter, err := repo.Log(&git.LogOptions{
		From: ref.Hash(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get log: %w", err)
	}

	commits := make([]Commit, 0)

	err = commitIter.ForEach(func(c *object.Commit) error {
		if maxCommits > 0 && len(commits) >= maxCommits {
			return errMaxCommits
		}
		commits = append(commits, ParseCommit(c))
		return nil
	})

	if err != nil && !errors.Is(err, errMaxCommits) {
		return nil, fmt.Errorf("failed to iterate commits: %w", err)
	}

	return commits, nil
}

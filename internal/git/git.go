// Package git reads and records release state in the plugin's repository.
package git

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/go-git/go-git/v5/plumbing/transport/ssh"
	"go.uber.org/zap"
)

// DefaultRemoteName is the remote releases are pushed to.
const DefaultRemoteName = "origin"

const (
	detachedHeadName = "HEAD"

	errorOpenRepositoryFormat = "open repository at %s: %w"
	errorResolveHeadFormat    = "resolve HEAD in %s: %w"
	errorWorktreeFormat       = "open worktree of %s: %w"
	errorStatusFormat         = "read status of %s: %w"
	errorStageFormat          = "stage %s: %w"
	errorCommitFormat         = "commit %s: %w"
	errorTagFormat            = "tag %s: %w"
	errorPushFormat           = "push %s to %s: %w"
	errorOutsideWorktree      = "%s lies outside the worktree %s"
)

var (
	// ErrNotRepository is returned when no repository encloses the directory.
	ErrNotRepository = errors.New("not a git repository")
	// ErrDirtyWorkingTree is returned when tracked files carry uncommitted changes.
	ErrDirtyWorkingTree = errors.New("working tree has uncommitted changes")
)

// Info identifies the checked out revision.
type Info struct {
	Branch string
	Commit string
}

// Repository wraps the repository enclosing a plugin directory.
type Repository struct {
	repository *gogit.Repository
	root       string
}

// Open finds the repository at or above directory.
func Open(directory string) (*Repository, error) {
	absoluteDirectory, absoluteError := filepath.Abs(directory)
	if absoluteError != nil {
		return nil, fmt.Errorf(errorOpenRepositoryFormat, directory, absoluteError)
	}
	repository, openError := gogit.PlainOpenWithOptions(absoluteDirectory, &gogit.PlainOpenOptions{DetectDotGit: true})
	if openError != nil {
		if errors.Is(openError, gogit.ErrRepositoryNotExists) {
			return nil, fmt.Errorf(errorOpenRepositoryFormat, absoluteDirectory, ErrNotRepository)
		}
		return nil, fmt.Errorf(errorOpenRepositoryFormat, absoluteDirectory, openError)
	}
	root := absoluteDirectory
	if worktree, worktreeError := repository.Worktree(); worktreeError == nil {
		root = worktree.Filesystem.Root()
	}
	return &Repository{repository: repository, root: root}, nil
}

// Root returns the worktree root.
func (repository *Repository) Root() string {
	return repository.root
}

// Info reports the current branch and commit. A detached HEAD reports the branch "HEAD".
func (repository *Repository) Info() (Info, error) {
	head, headError := repository.repository.Head()
	if headError != nil {
		return Info{}, fmt.Errorf(errorResolveHeadFormat, repository.root, headError)
	}
	branch := detachedHeadName
	if head.Name().IsBranch() {
		branch = head.Name().Short()
	}
	return Info{Branch: branch, Commit: head.Hash().String()}, nil
}

// ChangedFiles lists tracked files with staged or unstaged modifications. Untracked
// files are not reported.
func (repository *Repository) ChangedFiles() ([]string, error) {
	worktree, worktreeError := repository.repository.Worktree()
	if worktreeError != nil {
		return nil, fmt.Errorf(errorWorktreeFormat, repository.root, worktreeError)
	}
	status, statusError := worktree.Status()
	if statusError != nil {
		return nil, fmt.Errorf(errorStatusFormat, repository.root, statusError)
	}
	var changed []string
	for filePath, fileStatus := range status {
		untracked := fileStatus.Staging == gogit.Untracked && fileStatus.Worktree == gogit.Untracked
		if untracked {
			continue
		}
		if fileStatus.Staging != gogit.Unmodified || fileStatus.Worktree != gogit.Unmodified {
			changed = append(changed, filepath.ToSlash(filePath))
		}
	}
	sort.Strings(changed)
	return changed, nil
}

// RequireClean returns ErrDirtyWorkingTree naming the changed files when the
// working tree is not clean.
func (repository *Repository) RequireClean() error {
	changed, changedError := repository.ChangedFiles()
	if changedError != nil {
		return changedError
	}
	if len(changed) > 0 {
		return fmt.Errorf("%w: %s", ErrDirtyWorkingTree, strings.Join(changed, ", "))
	}
	return nil
}

// CommitAndTag stages filePath, commits it with message and points a lightweight
// tag named tagName at the new commit. The author comes from the repository's
// git configuration.
func (repository *Repository) CommitAndTag(filePath string, tagName string, message string) (string, error) {
	worktree, worktreeError := repository.repository.Worktree()
	if worktreeError != nil {
		return "", fmt.Errorf(errorWorktreeFormat, repository.root, worktreeError)
	}
	relativePath, relativeError := repository.relativeToRoot(filePath)
	if relativeError != nil {
		return "", relativeError
	}
	if _, addError := worktree.Add(relativePath); addError != nil {
		return "", fmt.Errorf(errorStageFormat, relativePath, addError)
	}
	commitHash, commitError := worktree.Commit(message, &gogit.CommitOptions{})
	if commitError != nil {
		return "", fmt.Errorf(errorCommitFormat, relativePath, commitError)
	}
	if _, tagError := repository.repository.CreateTag(tagName, commitHash, nil); tagError != nil {
		return "", fmt.Errorf(errorTagFormat, tagName, tagError)
	}
	return commitHash.String(), nil
}

func (repository *Repository) relativeToRoot(filePath string) (string, error) {
	absolutePath, absoluteError := filepath.Abs(filePath)
	if absoluteError != nil {
		return "", fmt.Errorf(errorStageFormat, filePath, absoluteError)
	}
	// The worktree root may be reported through a symlink-free path.
	if resolved, resolveError := filepath.EvalSymlinks(absolutePath); resolveError == nil {
		absolutePath = resolved
	}
	root := repository.root
	if resolvedRoot, resolveError := filepath.EvalSymlinks(root); resolveError == nil {
		root = resolvedRoot
	}
	relativePath, relativeError := filepath.Rel(root, absolutePath)
	if relativeError != nil || relativePath == ".." || strings.HasPrefix(relativePath, ".."+string(os.PathSeparator)) {
		return "", fmt.Errorf(errorOutsideWorktree, filePath, repository.root)
	}
	return filepath.ToSlash(relativePath), nil
}

// Push sends branch and tag to the default remote. An up-to-date remote is not an error.
func (repository *Repository) Push(ctx context.Context, branch string, tagName string, logger *zap.Logger) error {
	remote, remoteError := repository.repository.Remote(DefaultRemoteName)
	if remoteError != nil {
		return fmt.Errorf(errorPushFormat, branch, DefaultRemoteName, remoteError)
	}
	refSpecs := []config.RefSpec{
		config.RefSpec(fmt.Sprintf("%s:%s", plumbing.NewBranchReferenceName(branch), plumbing.NewBranchReferenceName(branch))),
		config.RefSpec(fmt.Sprintf("%s:%s", plumbing.NewTagReferenceName(tagName), plumbing.NewTagReferenceName(tagName))),
	}
	var auth transport.AuthMethod
	if urls := remote.Config().URLs; len(urls) > 0 {
		auth = resolveAuth(urls[0], logger)
	}
	pushError := repository.repository.PushContext(ctx, &gogit.PushOptions{
		RemoteName: DefaultRemoteName,
		RefSpecs:   refSpecs,
		Auth:       auth,
	})
	if pushError != nil && !errors.Is(pushError, gogit.NoErrAlreadyUpToDate) {
		return fmt.Errorf(errorPushFormat, branch, DefaultRemoteName, pushError)
	}
	logger.Info("pushed release", zap.String("branch", branch), zap.String("tag", tagName))
	return nil
}

// resolveAuth picks credentials for remoteURL: the SSH agent or a default key for
// SSH remotes, a token from the environment for HTTP remotes. Local remotes need none.
func resolveAuth(remoteURL string, logger *zap.Logger) transport.AuthMethod {
	endpoint, endpointError := transport.NewEndpoint(remoteURL)
	if endpointError != nil {
		return nil
	}
	switch endpoint.Protocol {
	case "ssh":
		user := endpoint.User
		if user == "" {
			user = "git"
		}
		if os.Getenv("SSH_AUTH_SOCK") != "" {
			if agentAuth, agentError := ssh.NewSSHAgentAuth(user); agentError == nil {
				return agentAuth
			}
		}
		homeDirectory, homeError := os.UserHomeDir()
		if homeError != nil {
			return nil
		}
		for _, keyName := range []string{"id_ed25519", "id_rsa", "id_ecdsa"} {
			keyPath := filepath.Join(homeDirectory, ".ssh", keyName)
			if _, statError := os.Stat(keyPath); statError != nil {
				continue
			}
			keyAuth, keyError := ssh.NewPublicKeysFromFile(user, keyPath, "")
			if keyError != nil {
				logger.Debug("unusable ssh key", zap.String("key", keyPath), zap.Error(keyError))
				continue
			}
			return keyAuth
		}
	case "http", "https":
		for _, variable := range []string{"GIT_TOKEN", "GITHUB_TOKEN", "GITLAB_TOKEN"} {
			if token := os.Getenv(variable); token != "" {
				return &http.BasicAuth{Username: "git", Password: token}
			}
		}
	}
	return nil
}

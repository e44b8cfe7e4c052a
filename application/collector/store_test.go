package collector

import (
	"context"
	"time"

	"github.com/reporag/reporag/domain/document"
)

// fakeStore is an in-memory Store for collector tests.
type fakeStore struct {
	repositories map[string]document.Repository
	commits      map[string]document.Commit
	files        map[string]document.ChangedFile
	lfsPointers  map[string]document.LFSPointer
	pullRequests map[string]document.PullRequest
	issues       map[string]document.Issue
	comments     map[string]map[string]document.Comment
	treeFiles    map[string]map[string]document.TreeFile
	contributors map[string]document.Contributor
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		repositories: make(map[string]document.Repository),
		commits:      make(map[string]document.Commit),
		files:        make(map[string]document.ChangedFile),
		lfsPointers:  make(map[string]document.LFSPointer),
		pullRequests: make(map[string]document.PullRequest),
		issues:       make(map[string]document.Issue),
		comments: map[string]map[string]document.Comment{
			document.CollectionIssueComments: {},
			document.CollectionPRComments:    {},
		},
		treeFiles: map[string]map[string]document.TreeFile{
			document.CollectionMainFiles:        {},
			document.CollectionLastReleaseFiles: {},
		},
		contributors: make(map[string]document.Contributor),
	}
}

func (f *fakeStore) UpsertRepository(_ context.Context, repo document.Repository) error {
	f.repositories[repo.ID] = repo
	return nil
}

func (f *fakeStore) LatestCommitDate(_ context.Context, repo string) (time.Time, bool, error) {
	var latest time.Time
	var found bool
	for _, c := range f.commits {
		if c.Repo == repo && c.Date.After(latest) {
			latest = c.Date
			found = true
		}
	}
	return latest, found, nil
}

func (f *fakeStore) CommitExists(_ context.Context, sha string) (bool, error) {
	_, ok := f.commits[sha]
	return ok, nil
}

func (f *fakeStore) ExistingCommitIDs(_ context.Context, shas []string) (map[string]bool, error) {
	out := make(map[string]bool)
	for _, sha := range shas {
		if _, ok := f.commits[sha]; ok {
			out[sha] = true
		}
	}
	return out, nil
}

func (f *fakeStore) InsertCommits(_ context.Context, commits []document.Commit) error {
	for _, c := range commits {
		f.commits[c.ID] = c
	}
	return nil
}

func (f *fakeStore) AllCommits(_ context.Context) ([]document.Commit, error) {
	out := make([]document.Commit, 0, len(f.commits))
	for _, c := range f.commits {
		out = append(out, c)
	}
	return out, nil
}

func (f *fakeStore) FileExists(_ context.Context, id string) (bool, error) {
	_, ok := f.files[id]
	return ok, nil
}

func (f *fakeStore) InsertFiles(_ context.Context, files []document.ChangedFile) error {
	for _, file := range files {
		f.files[file.ID] = file
	}
	return nil
}

func (f *fakeStore) UpsertLFSPointer(_ context.Context, ptr document.LFSPointer) error {
	f.lfsPointers[ptr.ID] = ptr
	return nil
}

func (f *fakeStore) PullRequest(_ context.Context, id string) (document.PullRequest, bool, error) {
	pr, ok := f.pullRequests[id]
	return pr, ok, nil
}

func (f *fakeStore) UpsertPullRequests(_ context.Context, prs []document.PullRequest) error {
	for _, pr := range prs {
		f.pullRequests[pr.ID] = pr
	}
	return nil
}

func (f *fakeStore) Issue(_ context.Context, id string) (document.Issue, bool, error) {
	issue, ok := f.issues[id]
	return issue, ok, nil
}

func (f *fakeStore) UpsertIssues(_ context.Context, issues []document.Issue) error {
	for _, issue := range issues {
		f.issues[issue.ID] = issue
	}
	return nil
}

func (f *fakeStore) Comment(_ context.Context, collection, id string) (document.Comment, bool, error) {
	comment, ok := f.comments[collection][id]
	return comment, ok, nil
}

func (f *fakeStore) UpsertComments(_ context.Context, collection string, comments []document.Comment) error {
	for _, c := range comments {
		f.comments[collection][c.ID] = c
	}
	return nil
}

func (f *fakeStore) TreeFilesByRepo(_ context.Context, collection, repo string) ([]document.TreeFile, error) {
	var out []document.TreeFile
	for _, tf := range f.treeFiles[collection] {
		if tf.Repo == repo {
			out = append(out, tf)
		}
	}
	return out, nil
}

func (f *fakeStore) UpsertTreeFiles(_ context.Context, collection string, files []document.TreeFile) error {
	for _, tf := range files {
		f.treeFiles[collection][tf.ID] = tf
	}
	return nil
}

func (f *fakeStore) DeleteTreeFiles(_ context.Context, collection, repo string, filenames []string) error {
	stale := make(map[string]bool, len(filenames))
	for _, name := range filenames {
		stale[name] = true
	}
	for id, tf := range f.treeFiles[collection] {
		if tf.Repo == repo && stale[tf.Filename] {
			delete(f.treeFiles[collection], id)
		}
	}
	return nil
}

func (f *fakeStore) UpsertContributors(_ context.Context, contributors []document.Contributor) error {
	for _, c := range contributors {
		f.contributors[c.ID] = c
	}
	return nil
}

package forge

import (
	"context"
	"fmt"
)

// RepoSummary is one entry of an organization repository listing.
type RepoSummary struct {
	FullName string `json:"full_name"`
}

// RepoInfo is the repository metadata payload.
type RepoInfo struct {
	Description   string `json:"description"`
	Language      string `json:"language"`
	HTMLURL       string `json:"html_url"`
	DefaultBranch string `json:"default_branch"`
	UpdatedAt     string `json:"updated_at"`
}

// Signature is a commit author or committer.
type Signature struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Date  string `json:"date"`
}

// CommitSummary is one entry of the commit listing endpoint.
type CommitSummary struct {
	SHA    string `json:"sha"`
	Commit struct {
		Message   string     `json:"message"`
		Author    *Signature `json:"author"`
		Committer *Signature `json:"committer"`
	} `json:"commit"`
}

// CommitFile is one changed file in a commit detail payload.
type CommitFile struct {
	Filename string `json:"filename"`
	Status   string `json:"status"`
	Patch    string `json:"patch"`
	RawURL   string `json:"raw_url"`
}

// CommitDetail is the single-commit payload including changed files.
type CommitDetail struct {
	SHA   string       `json:"sha"`
	Files []CommitFile `json:"files"`
}

// Label is an issue or PR label.
type Label struct {
	Name string `json:"name"`
}

// User is a forge account reference.
type User struct {
	Login string `json:"login"`
}

// PullRequestItem is one entry of the pull-request listing.
type PullRequestItem struct {
	Number    int     `json:"number"`
	Title     string  `json:"title"`
	State     string  `json:"state"`
	Body      string  `json:"body"`
	CreatedAt string  `json:"created_at"`
	UpdatedAt string  `json:"updated_at"`
	MergedAt  *string `json:"merged_at"`
	User      User    `json:"user"`
	Labels    []Label `json:"labels"`
	Comments  int     `json:"comments"`
	HTMLURL   string  `json:"html_url"`
}

// IssueItem is one entry of the issue listing. PullRequest is non-nil for
// PR-backed entries, which collectors skip.
type IssueItem struct {
	Number      int             `json:"number"`
	Title       string          `json:"title"`
	Body        string          `json:"body"`
	State       string          `json:"state"`
	CreatedAt   string          `json:"created_at"`
	UpdatedAt   string          `json:"updated_at"`
	User        User            `json:"user"`
	Labels      []Label         `json:"labels"`
	Comments    int             `json:"comments"`
	HTMLURL     string          `json:"html_url"`
	PullRequest *map[string]any `json:"pull_request"`
}

// CommentItem is one issue or PR comment.
type CommentItem struct {
	ID        int64  `json:"id"`
	Body      string `json:"body"`
	User      User   `json:"user"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// CommitRef is one entry of a PR commit listing.
type CommitRef struct {
	SHA string `json:"sha"`
}

// TreeEntry is one entry of a recursive git tree listing.
type TreeEntry struct {
	Path string `json:"path"`
	Type string `json:"type"`
	SHA  string `json:"sha"`
}

// Tree is the recursive git tree payload.
type Tree struct {
	Entries []TreeEntry `json:"tree"`
}

// Release is the latest-release payload.
type Release struct {
	TagName string `json:"tag_name"`
}

// OrgRepos lists one page of an organization's repositories.
func (c *Client) OrgRepos(ctx context.Context, org string, page int) []RepoSummary {
	var repos []RepoSummary
	url := joinURL(c.apiBase, fmt.Sprintf("/orgs/%s/repos", org))
	if !c.GetJSON(ctx, url, pageParams(page, nil), &repos) {
		return nil
	}
	return repos
}

// Repo fetches repository metadata.
func (c *Client) Repo(ctx context.Context, repo string) (RepoInfo, bool) {
	var info RepoInfo
	url := joinURL(c.apiBase, "/repos/"+repo)
	ok := c.GetJSON(ctx, url, nil, &info)
	return info, ok
}

// Commits lists one page of repository commits, newest first.
func (c *Client) Commits(ctx context.Context, repo string, page int) []CommitSummary {
	var commits []CommitSummary
	url := joinURL(c.apiBase, fmt.Sprintf("/repos/%s/commits", repo))
	if !c.GetJSON(ctx, url, pageParams(page, nil), &commits) {
		return nil
	}
	return commits
}

// Commit fetches a single commit including its changed files.
func (c *Client) Commit(ctx context.Context, repo, sha string) (CommitDetail, bool) {
	var detail CommitDetail
	url := joinURL(c.apiBase, fmt.Sprintf("/repos/%s/commits/%s", repo, sha))
	ok := c.GetJSON(ctx, url, nil, &detail)
	return detail, ok
}

// PullRequests lists one page of pull requests in all states.
func (c *Client) PullRequests(ctx context.Context, repo string, page int) []PullRequestItem {
	var prs []PullRequestItem
	url := joinURL(c.apiBase, fmt.Sprintf("/repos/%s/pulls", repo))
	if !c.GetJSON(ctx, url, pageParams(page, map[string]string{"state": "all"}), &prs) {
		return nil
	}
	return prs
}

// PullRequestCommits lists the commits reported for a pull request.
func (c *Client) PullRequestCommits(ctx context.Context, repo string, number int) []CommitRef {
	var refs []CommitRef
	url := joinURL(c.apiBase, fmt.Sprintf("/repos/%s/pulls/%d/commits", repo, number))
	if !c.GetJSON(ctx, url, map[string]string{"per_page": "100"}, &refs) {
		return nil
	}
	return refs
}

// PullRequestComments lists the review comments of a pull request.
func (c *Client) PullRequestComments(ctx context.Context, repo string, number int) []CommentItem {
	var comments []CommentItem
	url := joinURL(c.apiBase, fmt.Sprintf("/repos/%s/pulls/%d/comments", repo, number))
	if !c.GetJSON(ctx, url, nil, &comments) {
		return nil
	}
	return comments
}

// Issues lists one page of issues in all states. The listing includes
// PR-backed entries; callers filter on PullRequest.
func (c *Client) Issues(ctx context.Context, repo string, page int) []IssueItem {
	var issues []IssueItem
	url := joinURL(c.apiBase, fmt.Sprintf("/repos/%s/issues", repo))
	if !c.GetJSON(ctx, url, pageParams(page, map[string]string{"state": "all"}), &issues) {
		return nil
	}
	return issues
}

// IssueComments lists the comments of an issue.
func (c *Client) IssueComments(ctx context.Context, repo string, number int) []CommentItem {
	var comments []CommentItem
	url := joinURL(c.apiBase, fmt.Sprintf("/repos/%s/issues/%d/comments", repo, number))
	if !c.GetJSON(ctx, url, nil, &comments) {
		return nil
	}
	return comments
}

// Tree fetches the recursive git tree for a branch or tag.
func (c *Client) Tree(ctx context.Context, repo, ref string) (Tree, bool) {
	var tree Tree
	url := joinURL(c.apiBase, fmt.Sprintf("/repos/%s/git/trees/%s", repo, ref))
	ok := c.GetJSON(ctx, url, map[string]string{"recursive": "1"}, &tree)
	return tree, ok
}

// LatestRelease fetches the latest published release. GitHub excludes
// drafts and pre-releases from this endpoint.
func (c *Client) LatestRelease(ctx context.Context, repo string) (Release, bool) {
	var release Release
	url := joinURL(c.apiBase, fmt.Sprintf("/repos/%s/releases/latest", repo))
	ok := c.GetJSON(ctx, url, nil, &release)
	return release, ok
}

// Raw fetches the content behind an absolute raw URL.
func (c *Client) Raw(ctx context.Context, rawURL string) (string, bool) {
	body := c.Get(ctx, rawURL, nil)
	if body == nil {
		return "", false
	}
	return string(body), true
}

// RawFileURL composes the raw-content URL for a file at a ref.
func (c *Client) RawFileURL(repo, ref, path string) string {
	return joinURL(c.rawBase, fmt.Sprintf("/%s/%s/%s", repo, ref, path))
}

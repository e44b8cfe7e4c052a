// Package document defines the persisted document types and their
// collection names. All identifiers are stable strings designed for
// idempotent upsert; cross-collection references are string ids.
package document

import "time"

// Collection names in the document store.
const (
	CollectionRepositories     = "repositories"
	CollectionCommits          = "commits"
	CollectionFiles            = "files"
	CollectionLFSPointers      = "lfs_pointers"
	CollectionPullRequests     = "pull_requests"
	CollectionPRComments       = "pull_requests_comments"
	CollectionIssues           = "issues"
	CollectionIssueComments    = "issues_comments"
	CollectionMainFiles        = "main_files"
	CollectionLastReleaseFiles = "last_release_files"
	CollectionContributors     = "contributors"
	CollectionMetadata         = "metadata"
	CollectionChunks           = "chunks"
)

// CurrentMetadataVersion is the generator's schema version. Bumping it
// forces regeneration of every metadata document and its chunks.
const CurrentMetadataVersion = 0

// Repository is the per-repo record created by the collector.
type Repository struct {
	ID             string `bson:"_id"`
	Description    string `bson:"description"`
	Language       string `bson:"language"`
	URL            string `bson:"url"`
	LastCommitDate string `bson:"last_commit_date"`
}

// Commit is immutable after insertion.
type Commit struct {
	ID             string    `bson:"_id"`
	Repo           string    `bson:"repo"`
	Message        string    `bson:"message"`
	Author         *string   `bson:"author"`
	AuthorEmail    *string   `bson:"author_email"`
	Committer      *string   `bson:"committer"`
	CommitterEmail *string   `bson:"committer_email"`
	Date           time.Time `bson:"date"`
	MetadataID     string    `bson:"metadata_id"`
	FilesChanged   []string  `bson:"files_changed"`
}

// ChangedFile is one file touched by a commit. Its id is
// "<commit-sha>_<path>".
type ChangedFile struct {
	ID           string `bson:"_id"`
	CommitID     string `bson:"commit_id"`
	Repo         string `bson:"repo"`
	Filename     string `bson:"filename"`
	Status       string `bson:"status"`
	Patch        string `bson:"patch"`
	MetadataID   string `bson:"metadata_id"`
	LFSPointerID string `bson:"lfs_pointer_id"`
	ExternalURL  string `bson:"external_url"`
}

// LFSPointer is the parsed form of a git-lfs pointer file.
type LFSPointer struct {
	ID          string `bson:"_id"`
	FileID      string `bson:"file_id"`
	Version     string `bson:"version"`
	OidType     string `bson:"oid_type"`
	Oid         string `bson:"oid"`
	Size        string `bson:"size"`
	ExternalURL string `bson:"external_url"`
}

// PullRequest id is "<repo>_<number>". Commits holds only SHAs already
// present in the commits collection.
type PullRequest struct {
	ID         string   `bson:"_id"`
	Repo       string   `bson:"repo"`
	Number     int      `bson:"number"`
	Title      string   `bson:"title"`
	State      string   `bson:"state"`
	CreatedAt  string   `bson:"created_at"`
	UpdatedAt  string   `bson:"updated_at"`
	MergedAt   *string  `bson:"merged_at"`
	Author     string   `bson:"author"`
	Commits    []string `bson:"commits"`
	MetadataID string   `bson:"metadata_id"`
	BodyURL    string   `bson:"body_url"`
	Labels     []string `bson:"labels"`
	URL        string   `bson:"url"`
}

// Issue id is "<repo>_<number>". Pull requests surfaced by the issues
// endpoint are filtered out before storage.
type Issue struct {
	ID         string   `bson:"_id"`
	Repo       string   `bson:"repo"`
	Number     int      `bson:"number"`
	MetadataID string   `bson:"metadata_id"`
	Title      string   `bson:"title"`
	Body       string   `bson:"body"`
	State      string   `bson:"state"`
	Labels     []string `bson:"labels"`
	Comments   int      `bson:"comments"`
	CreatedAt  string   `bson:"created_at"`
	UpdatedAt  string   `bson:"updated_at"`
	URL        string   `bson:"url"`
}

// Comment is an issue or pull-request comment; id is
// "<repo>_<parent-number>_<comment-id>". ParentID is the issue or PR
// number as a string.
type Comment struct {
	ID        string `bson:"_id"`
	Repo      string `bson:"repo"`
	ParentID  string `bson:"parent_id"`
	Body      string `bson:"comment_body"`
	Author    string `bson:"author"`
	CreatedAt string `bson:"created_at"`
	UpdatedAt string `bson:"updated_at"`
}

// TreeFile is a snapshot entry of the default branch (main_files) or the
// latest release tag (last_release_files). CommitID carries the forge's
// blob SHA used for change detection.
type TreeFile struct {
	ID          string `bson:"_id"`
	Repo        string `bson:"repo"`
	Filename    string `bson:"filename"`
	CommitID    string `bson:"commit_id"`
	MetadataID  string `bson:"metadata_id"`
	ExternalURL string `bson:"external_url"`
}

// Contributor is rebuilt from the commits collection; id is the email.
type Contributor struct {
	ID           string   `bson:"_id"`
	Name         string   `bson:"name"`
	Email        string   `bson:"email"`
	Repos        []string `bson:"repos"`
	TotalCommits int      `bson:"total_commits"`
	Commits      []string `bson:"commits"`
}

// Metadata ties a source document to its extracted text, chunks, hash,
// and generator version.
type Metadata struct {
	ID              string    `bson:"_id"`
	Repo            string    `bson:"repo"`
	CollectionSrc   string    `bson:"collection_src"`
	CollectionID    string    `bson:"collection_id"`
	Language        string    `bson:"language"`
	Description     string    `bson:"description"`
	Tags            []string  `bson:"tags"`
	ChunkIDs        []string  `bson:"chunk_ids"`
	CreatedAt       time.Time `bson:"created_at"`
	UpdatedAt       time.Time `bson:"updated_at"`
	SourceURL       string    `bson:"source_url"`
	MetadataVersion int       `bson:"metadata_version"`
	FileHash        string    `bson:"file_hash"`
}

// Chunk is the unit of retrieval; id is "<metadata_id>_chunk_<index>".
type Chunk struct {
	ID         string    `bson:"_id"`
	MetadataID string    `bson:"metadata_id"`
	ChunkIndex int       `bson:"chunk_index"`
	ChunkSrc   string    `bson:"chunk_src"`
	Embedding  []float32 `bson:"embedding"`
}

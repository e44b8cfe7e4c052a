package document

import "fmt"

// FileID builds the ChangedFile identifier for a commit and path.
func FileID(commitSHA, path string) string {
	return fmt.Sprintf("%s_%s", commitSHA, path)
}

// LFSPointerIDFor builds the LFSPointer identifier for a commit and path.
func LFSPointerIDFor(commitSHA, path string) string {
	return fmt.Sprintf("%s_%s_lfs", commitSHA, path)
}

// PullRequestID builds the PullRequest identifier.
func PullRequestID(repo string, number int) string {
	return fmt.Sprintf("%s_%d", repo, number)
}

// IssueID builds the Issue identifier.
func IssueID(repo string, number int) string {
	return fmt.Sprintf("%s_%d", repo, number)
}

// CommentID builds the Comment identifier for an issue or PR comment.
func CommentID(repo string, parentNumber int, commentID int64) string {
	return fmt.Sprintf("%s_%d_%d", repo, parentNumber, commentID)
}

// TreeFileID builds the TreeFile identifier. Scope is "main" for the
// default branch snapshot and "last_release" for the release snapshot.
func TreeFileID(repo, scope, path string) string {
	return fmt.Sprintf("%s_%s_%s", repo, scope, path)
}

// MetadataID builds the Metadata identifier for a source document.
func MetadataID(repo, collectionSrc, sourceID string) string {
	return fmt.Sprintf("meta_%s_%s_%s", repo, collectionSrc, sourceID)
}

// ChunkID builds the Chunk identifier for a metadata document and index.
func ChunkID(metadataID string, index int) string {
	return fmt.Sprintf("%s_chunk_%d", metadataID, index)
}

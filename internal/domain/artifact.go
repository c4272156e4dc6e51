package domain

import "time"

// Artifact ids are stable per type so re-running a stage overwrites the
// same storage path instead of accumulating copies.
const (
	ArtifactSpecJSON      = "spec_json"
	ArtifactPlanSVG       = "plan_svg"
	ArtifactExteriorImage = "exterior_image"
)

// Artifact is an immutable output blob owned by exactly one job. The
// checksum always reflects the latest bytes at the storage path.
type Artifact struct {
	ID             string    `json:"id"`
	Type           string    `json:"type"`
	MimeType       string    `json:"mime_type"`
	StoragePath    string    `json:"storage_path"`
	ChecksumSHA256 string    `json:"checksum_sha256"`
	SizeBytes      int64     `json:"size_bytes"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

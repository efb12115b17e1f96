package model

import (
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ImportBatch carries the provenance metadata attached to every
// transaction committed from one statement upload. Created once per
// file, never mutated.
type ImportBatch struct {
	ImportedAt time.Time
	Reference  string
	FileHash   string
	Source     string
	FileName   string
}

// NewImportBatch creates batch metadata for an uploaded file.
func NewImportBatch(fileName, source string, content []byte) ImportBatch {
	hash := sha256.Sum256(content)
	return ImportBatch{
		ImportedAt: time.Now().UTC(),
		Reference:  uuid.New().String(),
		FileHash:   fmt.Sprintf("%x", hash),
		Source:     source,
		FileName:   fileName,
	}
}

// ImportRun is the persisted record of one completed import batch.
type ImportRun struct {
	CreatedAt    time.Time
	Reference    string
	AccountID    string
	FileHash     string
	FileName     string
	Source       string
	CreatedCount int
	UpdatedCount int
	SkippedCount int
	FailedCount  int
}

package storage

import (
	"context"
	"time"

	"github.com/Dosada05/bracket-engine/models"
)

// BracketSnapshot is the full state of a bracket captured just before a
// destructive rebuild discards it. Archived snapshots exist for audit only;
// the engine never reads them back.
type BracketSnapshot struct {
	Bracket    models.Bracket        `json:"bracket"`
	Entries    []models.BracketEntry `json:"entries"`
	Matches    []models.Match        `json:"matches"`
	ArchivedAt time.Time             `json:"archived_at"`
}

type SnapshotArchiver interface {
	Archive(ctx context.Context, snapshot *BracketSnapshot) (key string, err error)
}

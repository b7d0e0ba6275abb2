package services

import (
	"fmt"
	"sync"

	"github.com/Dosada05/bracket-engine/models"
)

// keyedMutex serializes work per string key. Rebuilds take the per-key
// Postgres advisory lock as well; this in-process layer keeps overlapping
// rebuild requests for the same key from each occupying a DB connection
// just to queue on that lock.
type keyedMutex struct {
	locks sync.Map // key -> *sync.Mutex
}

// Lock blocks until the key is free and returns the unlock func.
func (k *keyedMutex) Lock(key string) func() {
	v, _ := k.locks.LoadOrStore(key, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

func rebuildKey(competitionID int, categoryKey string) string {
	return fmt.Sprintf("%d:%s", competitionID, categoryKey)
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func matchesToValues(slice []*models.Match) []models.Match {
	if slice == nil {
		return []models.Match{}
	}
	result := make([]models.Match, len(slice))
	for i, ptr := range slice {
		if ptr != nil {
			result[i] = *ptr
		}
	}
	return result
}

func entriesToValues(slice []*models.BracketEntry) []models.BracketEntry {
	if slice == nil {
		return []models.BracketEntry{}
	}
	result := make([]models.BracketEntry, len(slice))
	for i, ptr := range slice {
		if ptr != nil {
			result[i] = *ptr
		}
	}
	return result
}

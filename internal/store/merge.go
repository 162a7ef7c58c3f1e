package store

import (
	"sort"

	"github.com/google/uuid"
	"github.com/mirrorday/mirrorday/internal/models"
)

// merge reconciles the local collection against a freshly fetched remote
// snapshot using last-write-wins on ModifiedAt.
//
// Conflicts where the remote copy is strictly newer take the remote copy.
// A strictly newer local copy wins and is scheduled for upload so the remote
// converges. Equal timestamps keep the local copy without re-uploading it,
// which keeps repeated merges against the same snapshot idempotent. Local ids
// absent from the remote are treated as never-yet-synced and scheduled for
// upload. Last-write-wins can drop concurrent field-level edits made on two
// devices between syncs; that is an accepted limitation of the policy.
//
// The merged collection is sorted by target date ascending.
func merge(local, fetched []models.Reminder) (merged, uploads []models.Reminder) {
	byID := make(map[uuid.UUID]models.Reminder, len(local))
	for _, l := range local {
		byID[l.ID] = l
	}

	seen := make(map[uuid.UUID]bool, len(fetched))
	for _, r := range fetched {
		seen[r.ID] = true
		l, conflict := byID[r.ID]
		if !conflict {
			// New on another device
			byID[r.ID] = r
			continue
		}
		if r.ModifiedAt.After(l.ModifiedAt) {
			byID[r.ID] = r
			continue
		}
		// Local wins; adopt the remote reference so later pushes
		// overwrite the right record.
		if l.RemoteRef == "" {
			l.RemoteRef = r.RemoteRef
			byID[r.ID] = l
		}
		if l.ModifiedAt.After(r.ModifiedAt) {
			uploads = append(uploads, byID[r.ID])
		}
	}

	for _, l := range local {
		if !seen[l.ID] {
			uploads = append(uploads, l)
		}
	}

	merged = make([]models.Reminder, 0, len(byID))
	for _, r := range byID {
		merged = append(merged, r)
	}
	sort.Slice(merged, func(i, j int) bool {
		if merged[i].Date.Equal(merged[j].Date) {
			return merged[i].ID.String() < merged[j].ID.String()
		}
		return merged[i].Date.Before(merged[j].Date)
	})
	return merged, uploads
}

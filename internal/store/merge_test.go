package store

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mirrorday/mirrorday/internal/models"
)

func mkReminder(title string, date, modified time.Time) models.Reminder {
	return models.Reminder{
		ID:         uuid.New(),
		Title:      title,
		Date:       date,
		ModifiedAt: modified,
	}
}

func TestMerge_ConflictResolution(t *testing.T) {
	t.Parallel()

	base := time.Date(2025, 11, 1, 12, 0, 0, 0, time.UTC)
	date := time.Date(2025, 12, 25, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		localMod    time.Time
		remoteMod   time.Time
		wantTitle   string // which copy survives
		wantUploads int
	}{
		{"remote strictly newer wins", base, base.Add(time.Minute), "remote", 0},
		{"local strictly newer wins and re-asserts", base.Add(time.Minute), base, "local", 1},
		{"equal timestamps favor local without re-upload", base, base, "local", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			id := uuid.New()
			local := models.Reminder{ID: id, Title: "local", Date: date, ModifiedAt: tt.localMod}
			remote := models.Reminder{ID: id, Title: "remote", Date: date, ModifiedAt: tt.remoteMod, RemoteRef: id.String()}

			merged, uploads := merge([]models.Reminder{local}, []models.Reminder{remote})

			if len(merged) != 1 {
				t.Fatalf("merged length = %d, want 1", len(merged))
			}
			if merged[0].Title != tt.wantTitle {
				t.Errorf("surviving copy = %q, want %q", merged[0].Title, tt.wantTitle)
			}
			if len(uploads) != tt.wantUploads {
				t.Errorf("scheduled uploads = %d, want %d", len(uploads), tt.wantUploads)
			}
			// A surviving local copy must adopt the remote reference so
			// the re-assert overwrites the right record.
			if merged[0].RemoteRef != id.String() {
				t.Errorf("RemoteRef = %q, want remote reference", merged[0].RemoteRef)
			}
		})
	}
}

func TestMerge_InsertsRemoteOnlyAndUploadsLocalOnly(t *testing.T) {
	t.Parallel()

	now := time.Now()
	localOnly := mkReminder("local only", now.AddDate(0, 0, 5), now)
	remoteOnly := mkReminder("from another device", now.AddDate(0, 0, 2), now)
	remoteOnly.RemoteRef = remoteOnly.ID.String()

	merged, uploads := merge([]models.Reminder{localOnly}, []models.Reminder{remoteOnly})

	if len(merged) != 2 {
		t.Fatalf("merged length = %d, want 2", len(merged))
	}
	if len(uploads) != 1 || uploads[0].ID != localOnly.ID {
		t.Fatalf("expected exactly the local-only reminder scheduled for upload, got %v", uploads)
	}
	// Sorted by target date ascending
	if !merged[0].Date.Before(merged[1].Date) {
		t.Error("merged collection not sorted by date ascending")
	}
}

func TestMerge_Idempotence(t *testing.T) {
	t.Parallel()

	now := time.Now()
	snapshot := []models.Reminder{
		mkReminder("trip", now.AddDate(0, 0, 10), now),
		mkReminder("dentist", now.AddDate(0, 0, 3), now.Add(-time.Hour)),
		mkReminder("anniversary", now.AddDate(0, 1, 0), now.Add(-2*time.Hour)),
	}
	for i := range snapshot {
		snapshot[i].RemoteRef = snapshot[i].ID.String()
	}

	merged, _ := merge(nil, snapshot)
	again, uploads := merge(merged, snapshot)

	if len(uploads) != 0 {
		t.Errorf("re-merge scheduled %d spurious uploads", len(uploads))
	}
	if len(again) != len(merged) {
		t.Fatalf("re-merge changed collection size: %d -> %d", len(merged), len(again))
	}
	for i := range merged {
		if again[i].ID != merged[i].ID || again[i].Title != merged[i].Title {
			t.Errorf("re-merge changed entry %d: %v -> %v", i, merged[i], again[i])
		}
	}
}

func TestMerge_NoDuplicates(t *testing.T) {
	t.Parallel()

	now := time.Now()
	r := mkReminder("shared", now.AddDate(0, 0, 1), now)
	withRef := r
	withRef.RemoteRef = r.ID.String()

	merged, _ := merge([]models.Reminder{r}, []models.Reminder{withRef})
	if len(merged) != 1 {
		t.Fatalf("same id on both sides produced %d entries, want 1", len(merged))
	}
}

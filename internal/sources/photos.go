package sources

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/mirrorday/mirrorday/internal/apperr"
	"github.com/mirrorday/mirrorday/internal/models"
)

// photoExtensions are the file types served from the library
var photoExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".heic": true,
	".webp": true,
}

// DirPhotoSource serves photos from a date-partitioned directory layout:
// <root>/YYYY/MM/DD/*.jpg. Synced photo libraries (syncthing, rclone and
// friends) produce exactly this shape.
type DirPhotoSource struct {
	root string
}

// NewDirPhotoSource creates a photo source over the given library root
func NewDirPhotoSource(root string) *DirPhotoSource {
	return &DirPhotoSource{root: root}
}

// RequestAuthorization verifies the library root is readable
func (s *DirPhotoSource) RequestAuthorization(ctx context.Context) error {
	if s.root == "" {
		return apperr.PermissionDenied("Photos")
	}
	if _, err := os.ReadDir(s.root); err != nil {
		if os.IsPermission(err) || os.IsNotExist(err) {
			return apperr.PermissionDenied("Photos")
		}
		return apperr.Unknown(err)
	}
	return nil
}

// FetchPhotos returns up to maxCount photos taken on the given day, oldest
// first
func (s *DirPhotoSource) FetchPhotos(ctx context.Context, date time.Time, maxCount int) ([]models.Photo, error) {
	if err := s.RequestAuthorization(ctx); err != nil {
		return nil, err
	}

	dayDir := filepath.Join(s.root, date.Format("2006"), date.Format("01"), date.Format("02"))
	entries, err := os.ReadDir(dayDir)
	if err != nil {
		if os.IsNotExist(err) {
			// No photos that day
			return nil, nil
		}
		if os.IsPermission(err) {
			return nil, apperr.PermissionDenied("Photos")
		}
		return nil, apperr.Unknown(fmt.Errorf("failed to read photo dir: %w", err))
	}

	var photos []models.Photo
	for _, entry := range entries {
		if entry.IsDir() || !photoExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		photos = append(photos, models.Photo{
			Path:    filepath.Join(dayDir, entry.Name()),
			TakenAt: info.ModTime(),
			Size:    info.Size(),
		})
	}

	sort.Slice(photos, func(i, j int) bool { return photos[i].TakenAt.Before(photos[j].TakenAt) })
	if maxCount > 0 && len(photos) > maxCount {
		photos = photos[:maxCount]
	}
	return photos, nil
}

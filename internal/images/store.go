// Package images stores uploaded room and menu photos on disk, with the
// upload metadata tracked in the database for orphan cleanup.
package images

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jmvoss/hotelier/internal/entities"
)

var (
	ErrTooLarge        = errors.New("image exceeds maximum size")
	ErrUnsupportedType = errors.New("unsupported image type")
	ErrImageNotFound   = errors.New("image not found")
)

// allowedTypes maps accepted content types to file extensions.
var allowedTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// Store saves uploaded images to a directory and records them.
type Store struct {
	dir      string
	maxBytes int64
	db       *gorm.DB
}

// NewStore creates an image store rooted at dir.
func NewStore(dir string, maxBytes int64, db *gorm.DB) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create images dir: %w", err)
	}
	return &Store{dir: dir, maxBytes: maxBytes, db: db}, nil
}

// Save sniffs the content type, enforces the size limit and writes the
// image under a random filename. The write goes through a temp file and
// rename so a failed upload never leaves a partial image behind.
func (s *Store) Save(r io.Reader, ownerType string, ownerID uint, uploadedBy uint) (*entities.ImageAsset, error) {
	// Sniff the first 512 bytes to determine the real content type,
	// ignoring whatever the client claimed.
	header := make([]byte, 512)
	n, err := io.ReadFull(r, header)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, err
	}
	header = header[:n]

	contentType := http.DetectContentType(header)
	ext, ok := allowedTypes[contentType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, contentType)
	}

	filename := uuid.NewString() + ext
	finalPath := filepath.Join(s.dir, filename)

	tmpFile, err := os.CreateTemp(s.dir, "upload_tmp_")
	if err != nil {
		return nil, err
	}
	tmpPath := tmpFile.Name()
	defer func() {
		tmpFile.Close()
		os.Remove(tmpPath)
	}()

	// maxBytes+1 so we can tell "exactly at limit" from "over it".
	limited := io.LimitReader(io.MultiReader(bytes.NewReader(header), r), s.maxBytes+1)
	written, err := io.Copy(tmpFile, limited)
	if err != nil {
		return nil, err
	}
	if written > s.maxBytes {
		return nil, ErrTooLarge
	}
	if err := tmpFile.Close(); err != nil {
		return nil, err
	}

	if err := os.Rename(tmpPath, finalPath); err != nil {
		return nil, err
	}

	asset := &entities.ImageAsset{
		OwnerType:   ownerType,
		OwnerID:     ownerID,
		Filename:    filename,
		ContentType: contentType,
		SizeBytes:   written,
		UploadedBy:  uploadedBy,
	}
	if err := s.db.Create(asset).Error; err != nil {
		os.Remove(finalPath)
		return nil, err
	}

	return asset, nil
}

// Path returns the on-disk path for a stored filename, rejecting names
// that would escape the image directory.
func (s *Store) Path(filename string) (string, error) {
	if filename == "" || filename != filepath.Base(filename) {
		return "", ErrImageNotFound
	}
	path := filepath.Join(s.dir, filename)
	if _, err := os.Stat(path); err != nil {
		return "", ErrImageNotFound
	}
	return path, nil
}

// Delete removes an image from disk and from the registry.
func (s *Store) Delete(filename string) error {
	if filename == "" || filename != filepath.Base(filename) {
		return ErrImageNotFound
	}

	if err := s.db.Where("filename = ?", filename).Delete(&entities.ImageAsset{}).Error; err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(s.dir, filename)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// ownerExists reports whether the asset's owning row is still present.
// Owner types the store does not know about are left alone.
func (s *Store) ownerExists(a entities.ImageAsset) bool {
	var count int64
	switch a.OwnerType {
	case "room":
		s.db.Model(&entities.Room{}).Where("id = ?", a.OwnerID).Count(&count)
	case "menu_item":
		s.db.Model(&entities.MenuItem{}).Where("id = ?", a.OwnerID).Count(&count)
	default:
		return true
	}
	return count > 0
}

// RemoveOrphans deletes files in the image directory that have no
// registry record, registry records whose file is gone, and images whose
// owning room or menu item has been deleted. Returns how many files were
// removed. Called by the cleanup task.
func (s *Store) RemoveOrphans() (int, error) {
	var assets []entities.ImageAsset
	if err := s.db.Find(&assets).Error; err != nil {
		return 0, err
	}

	removed := 0
	live := make([]entities.ImageAsset, 0, len(assets))
	for _, a := range assets {
		if s.ownerExists(a) {
			live = append(live, a)
			continue
		}
		if err := s.Delete(a.Filename); err == nil {
			removed++
		}
	}
	assets = live

	known := make(map[string]struct{}, len(assets))
	for _, a := range assets {
		known[a.Filename] = struct{}{}
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, err
	}

	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), "upload_tmp_") {
			continue
		}
		if _, ok := known[entry.Name()]; ok {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, entry.Name())); err == nil {
			removed++
		}
	}

	// Drop records pointing at files that no longer exist.
	for _, a := range assets {
		if _, err := os.Stat(filepath.Join(s.dir, a.Filename)); os.IsNotExist(err) {
			s.db.Delete(&entities.ImageAsset{}, a.ID)
		}
	}

	return removed, nil
}

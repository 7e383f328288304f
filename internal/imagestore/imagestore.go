package imagestore

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/disintegration/imaging"
	"go.uber.org/zap"

	"inventory-service/internal/store"
)

// Category selects the directory and size ceiling for an attachment owner
type Category string

// Attachment categories; the value is the directory name on disk
const (
	CategoryProduct  Category = "ProductImages"
	CategorySupplier Category = "SupplierImages"
	CategoryContact  Category = "ContactImages"
)

// maxDimension is the per-category ceiling for the larger image dimension
func (c Category) maxDimension() int {
	if c == CategoryContact {
		return 800
	}
	return 1200
}

// FallbackPrefix marks attachment references whose bytes live in the
// side-attribute store instead of the filesystem
const FallbackPrefix = "sidestore:"

// blobNamespace is the side-attribute namespace for fallback image blobs
const blobNamespace = "attachment_blob_"

const jpegQuality = 60

// ErrInvalidImage is returned for images with zero or negative dimensions
var ErrInvalidImage = errors.New("invalid image dimensions")

// ErrEncodeFailed is returned when the image cannot be compressed
var ErrEncodeFailed = errors.New("failed to encode image")

// ImageStore persists binary images associated with an owner identity and a
// category, with bounded dimensions and compressed size. Saves for the same
// owner are serialized so the latest-only retention holds under concurrency.
type ImageStore struct {
	baseDir string
	side    *store.SideAttributeStore
	log     *zap.Logger

	mu     sync.Mutex
	owners map[string]*sync.Mutex
}

// NewImageStore creates the store and its category directories. A directory
// that cannot be created is logged, not fatal: saves into it will take the
// side-store fallback path.
func NewImageStore(baseDir string, side *store.SideAttributeStore, log *zap.Logger) *ImageStore {
	s := &ImageStore{
		baseDir: baseDir,
		side:    side,
		log:     log,
		owners:  make(map[string]*sync.Mutex),
	}
	for _, category := range []Category{CategoryProduct, CategorySupplier, CategoryContact} {
		dir := filepath.Join(baseDir, string(category))
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Error("Failed to create image directory",
				zap.String("dir", dir),
				zap.Error(err))
		}
	}
	return s
}

// SafeOwnerID replaces path-unsafe characters in an owner identity so it can
// be used in a filename
func SafeOwnerID(ownerID string) string {
	safe := strings.ReplaceAll(ownerID, "/", "_")
	return strings.ReplaceAll(safe, ":", "_")
}

// IsFallbackRef reports whether a reference points at the side-store fallback
func IsFallbackRef(ref string) bool {
	return strings.HasPrefix(ref, FallbackPrefix)
}

func (s *ImageStore) ownerLock(safeID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.owners[safeID]
	if !ok {
		lock = &sync.Mutex{}
		s.owners[safeID] = lock
	}
	return lock
}

// Save optimizes and persists an image for an owner, returning the attachment
// reference: a relative "<Category>/<safeOwnerId>_<unixTimestamp>.jpg" path,
// or a sentinel-prefixed side-store key when the filesystem write fails. Older
// files for the same owner in the same category are removed on success.
func (s *ImageStore) Save(img image.Image, ownerID string, category Category) (string, error) {
	if img == nil {
		return "", ErrInvalidImage
	}
	bounds := img.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return "", ErrInvalidImage
	}

	optimized := s.optimize(img, category)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, optimized, imaging.JPEG, imaging.JPEGQuality(jpegQuality)); err != nil {
		s.log.Error("Failed to compress image",
			zap.String("owner_id", ownerID),
			zap.Error(err))
		return "", ErrEncodeFailed
	}
	data := buf.Bytes()

	safeID := SafeOwnerID(ownerID)
	lock := s.ownerLock(safeID)
	lock.Lock()
	defer lock.Unlock()

	timestamp := time.Now().Unix()
	filename := fmt.Sprintf("%s_%d.jpg", safeID, timestamp)
	dir := filepath.Join(s.baseDir, string(category))
	path := filepath.Join(dir, filename)

	if err := os.WriteFile(path, data, 0o600); err != nil {
		s.log.Warn("Filesystem write failed, falling back to side-attribute store",
			zap.String("path", path),
			zap.Error(err))

		blobKey := fmt.Sprintf("%s_%s_%d", category, safeID, timestamp)
		if sideErr := s.side.SetBlob(blobNamespace, blobKey, data); sideErr != nil {
			s.log.Error("Fallback store write also failed",
				zap.String("owner_id", ownerID),
				zap.Error(sideErr))
			return "", sideErr
		}
		return FallbackPrefix + blobKey, nil
	}

	s.cleanupOldImages(safeID, dir, filename)
	return string(category) + "/" + filename, nil
}

// optimize downscales the image to the category ceiling, preserving aspect
// ratio. The scale math is guarded so degenerate inputs fall through with the
// original image rather than producing a corrupt one.
func (s *ImageStore) optimize(img image.Image, category Category) image.Image {
	bounds := img.Bounds()
	width := float64(bounds.Dx())
	height := float64(bounds.Dy())
	ceiling := float64(category.maxDimension())

	if width <= ceiling && height <= ceiling {
		return img
	}

	larger := math.Max(width, height)
	if larger <= 10 {
		return img
	}

	scale := ceiling / larger
	if math.IsNaN(scale) || math.IsInf(scale, 0) || scale <= 0 || scale >= 10 {
		s.log.Error("Invalid scale calculated for image",
			zap.Float64("scale", scale),
			zap.Float64("width", width),
			zap.Float64("height", height))
		return img
	}

	return imaging.Fit(img, category.maxDimension(), category.maxDimension(), imaging.Lanczos)
}

// cleanupOldImages removes every other file in the directory prefixed by the
// same safe owner id, retaining only the file just written
func (s *ImageStore) cleanupOldImages(safeID, dir, currentFilename string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		s.log.Error("Failed to scan directory for old images",
			zap.String("dir", dir),
			zap.Error(err))
		return
	}
	for _, entry := range entries {
		name := entry.Name()
		if name == currentFilename || !strings.HasPrefix(name, safeID+"_") {
			continue
		}
		if err := os.Remove(filepath.Join(dir, name)); err != nil {
			s.log.Error("Failed to clean up old image file",
				zap.String("file", name),
				zap.Error(err))
		}
	}
}

// Load reads an attachment by reference, dispatching on the fallback sentinel.
// A missing or undecodable resource yields (nil, nil): the condition is
// logged and the caller substitutes a placeholder.
func (s *ImageStore) Load(ref string) (image.Image, error) {
	if IsFallbackRef(ref) {
		blobKey := strings.TrimPrefix(ref, FallbackPrefix)
		data := s.side.GetBlob(blobNamespace, blobKey)
		if data == nil {
			s.log.Debug("No fallback image data for reference", zap.String("ref", ref))
			return nil, nil
		}
		img, err := imaging.Decode(bytes.NewReader(data))
		if err != nil {
			s.log.Error("Failed to decode fallback image", zap.String("ref", ref), zap.Error(err))
			return nil, nil
		}
		return img, nil
	}

	path, ok := s.resolve(ref)
	if !ok {
		return nil, nil
	}
	img, err := imaging.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			s.log.Debug("Image file not found", zap.String("path", path))
		} else {
			s.log.Error("Failed to load image", zap.String("path", path), zap.Error(err))
		}
		return nil, nil
	}
	return img, nil
}

// Delete removes an attachment by reference. Deleting a missing resource is
// a success, not a failure.
func (s *ImageStore) Delete(ref string) error {
	if IsFallbackRef(ref) {
		return s.side.Remove(blobNamespace, strings.TrimPrefix(ref, FallbackPrefix))
	}

	path, ok := s.resolve(ref)
	if !ok {
		return nil
	}
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			s.log.Debug("No image to delete", zap.String("path", path))
			return nil
		}
		return err
	}
	return nil
}

// resolve maps a relative reference to an absolute path under the base
// directory, rejecting references that escape it
func (s *ImageStore) resolve(ref string) (string, bool) {
	cleaned := filepath.Clean(filepath.FromSlash(ref))
	if cleaned == "." || strings.HasPrefix(cleaned, "..") || filepath.IsAbs(cleaned) {
		s.log.Warn("Rejecting unsafe attachment reference", zap.String("ref", ref))
		return "", false
	}
	return filepath.Join(s.baseDir, cleaned), true
}

// Placeholder returns the neutral-gray square substituted wherever a real
// image cannot be produced, so consumers never see a nil or zero-sized bitmap
func Placeholder() image.Image {
	return imaging.New(100, 100, color.NRGBA{R: 0xE5, G: 0xE5, B: 0xEA, A: 0xFF})
}

// EncodeJPEG compresses an image at the store's fixed quality factor
func EncodeJPEG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(jpegQuality)); err != nil {
		return nil, ErrEncodeFailed
	}
	return buf.Bytes(), nil
}

package storage

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"
)

// StoredImage is the handle returned by an upload. ID is stable and is all
// that is needed to delete the image later; URL is the public address with
// the display-width directive applied.
type StoredImage struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// ImageHost stores uploaded images on a Disk and hands back CDN-style URLs.
type ImageHost struct {
	disk Disk
}

func NewImageHost(d Disk) *ImageHost {
	return &ImageHost{disk: d}
}

// Upload stores the image under folder and returns its handle. width is a
// display-width hint baked into the public URL; pass 0 for the original size.
func (h *ImageHost) Upload(data []byte, folder string, width int) (*StoredImage, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("images: empty upload")
	}

	ext := extensionFor(data)
	if ext == "" {
		return nil, fmt.Errorf("images: unsupported content type")
	}

	buf := make([]byte, 12)
	if _, err := rand.Read(buf); err != nil {
		return nil, err
	}
	id := strings.Trim(folder, "/") + "/" + hex.EncodeToString(buf) + ext

	if err := h.disk.Put(id, data); err != nil {
		return nil, fmt.Errorf("images: store %s: %w", id, err)
	}

	url := h.disk.URL(id)
	if width > 0 {
		url = fmt.Sprintf("%s?w=%d&fit=scale", url, width)
	}
	return &StoredImage{ID: id, URL: url}, nil
}

// Delete removes a previously uploaded image. Unknown IDs are not an error.
func (h *ImageHost) Delete(id string) error {
	return h.disk.Delete(id)
}

func extensionFor(data []byte) string {
	switch http.DetectContentType(data) {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ""
	}
}

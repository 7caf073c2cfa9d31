package storage

import (
	"strings"
	"testing"
)

type memDisk struct {
	objects map[string][]byte
}

func newMemDisk() *memDisk {
	return &memDisk{objects: map[string][]byte{}}
}

func (d *memDisk) Put(key string, content []byte) error {
	d.objects[key] = content
	return nil
}

func (d *memDisk) Get(key string) ([]byte, error) {
	return d.objects[key], nil
}

func (d *memDisk) Exists(key string) bool {
	_, ok := d.objects[key]
	return ok
}

func (d *memDisk) Delete(key string) error {
	delete(d.objects, key)
	return nil
}

func (d *memDisk) URL(key string) string {
	return "https://cdn.test/" + key
}

var pngBytes = []byte("\x89PNG\r\n\x1a\n" + "rest-of-image")

func TestUploadStoresAndBuildsURL(t *testing.T) {
	disk := newMemDisk()
	host := NewImageHost(disk)

	img, err := host.Upload(pngBytes, "artworks", 800)
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}

	if !strings.HasPrefix(img.ID, "artworks/") || !strings.HasSuffix(img.ID, ".png") {
		t.Errorf("id = %q, want artworks/<hex>.png", img.ID)
	}
	if !disk.Exists(img.ID) {
		t.Error("object missing from disk after upload")
	}
	if !strings.HasPrefix(img.URL, "https://cdn.test/artworks/") {
		t.Errorf("url = %q", img.URL)
	}
	if !strings.HasSuffix(img.URL, "?w=800&fit=scale") {
		t.Errorf("url = %q, want width directive", img.URL)
	}
}

func TestUploadZeroWidthKeepsPlainURL(t *testing.T) {
	host := NewImageHost(newMemDisk())

	img, err := host.Upload([]byte("\xff\xd8\xff" + "jpeg-body"), "avatars", 0)
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if strings.Contains(img.URL, "?") {
		t.Errorf("url = %q, want no query for width 0", img.URL)
	}
	if !strings.HasSuffix(img.ID, ".jpg") {
		t.Errorf("id = %q, want .jpg", img.ID)
	}
}

func TestUploadRejectsBadInput(t *testing.T) {
	host := NewImageHost(newMemDisk())

	if _, err := host.Upload(nil, "artworks", 0); err == nil {
		t.Error("expected an error for an empty upload")
	}
	if _, err := host.Upload([]byte("plain text, not an image"), "artworks", 0); err == nil {
		t.Error("expected an error for a non-image upload")
	}
}

func TestDeleteRemovesObject(t *testing.T) {
	disk := newMemDisk()
	host := NewImageHost(disk)

	img, err := host.Upload(pngBytes, "artworks", 0)
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if err := host.Delete(img.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if disk.Exists(img.ID) {
		t.Error("object still on disk after delete")
	}
}

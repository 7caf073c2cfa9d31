// Package storage provides the object-storage layer behind the image host.
//
// Two drivers are available:
//   - "local"  — local filesystem (default, development)
//   - "s3"     — S3-compatible object storage (AWS S3, MinIO, R2, Spaces)
//
// Boot once (internal/server), then upload through ImageHost:
//
//	storage.Connect()
//	img, err := storage.Images().Upload(data, "artworks", 800)
package storage

import (
	"fmt"
	"sync"

	"github.com/shashiranjanraj/atelier/config"
)

// Disk is the object-storage driver interface.
type Disk interface {
	// Put writes content under key, creating parents as needed.
	Put(key string, content []byte) error

	// Get returns the full content stored under key.
	Get(key string) ([]byte, error)

	// Exists reports whether an object exists under key.
	Exists(key string) bool

	// Delete removes an object. Returns nil if it did not exist.
	Delete(key string) error

	// URL returns the public URL for key.
	URL(key string) string
}

var (
	managerMu   sync.RWMutex
	disks       = map[string]Disk{}
	defaultDisk string
	imageHost   *ImageHost
)

// Connect boots the storage manager. Call once at application startup.
func Connect() {
	managerMu.Lock()
	defer managerMu.Unlock()

	defaultDisk = config.StorageDefault()

	disks["local"] = newLocalDisk()

	// Boot the S3 disk only if a bucket is configured.
	if config.StorageS3Bucket() != "" {
		d, err := newS3Disk()
		if err != nil {
			fmt.Printf("storage/s3: %v (disk disabled)\n", err)
		} else {
			disks["s3"] = d
		}
	}

	if _, ok := disks[defaultDisk]; !ok {
		defaultDisk = "local"
	}
	imageHost = NewImageHost(disks[defaultDisk])
}

// Use returns the named disk ("local" or "s3").
func Use(name string) Disk {
	managerMu.RLock()
	d, ok := disks[name]
	managerMu.RUnlock()
	if !ok {
		panic(fmt.Sprintf("storage: disk %q is not configured", name))
	}
	return d
}

// RegisterDisk lets tests plug in a custom Disk implementation.
func RegisterDisk(name string, d Disk) {
	managerMu.Lock()
	disks[name] = d
	if name == defaultDisk || imageHost == nil {
		imageHost = NewImageHost(d)
	}
	managerMu.Unlock()
}

// Images returns the image host bound to the default disk.
func Images() *ImageHost {
	managerMu.RLock()
	defer managerMu.RUnlock()
	if imageHost == nil {
		panic("storage: Connect was not called")
	}
	return imageHost
}

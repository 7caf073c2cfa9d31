package storage

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/shashiranjanraj/atelier/config"
)

type localDisk struct {
	root    string
	baseURL string
}

func newLocalDisk() *localDisk {
	return &localDisk{
		root:    config.StorageLocalRoot(),
		baseURL: strings.TrimRight(config.StorageURL(), "/"),
	}
}

func (d *localDisk) path(key string) string {
	return filepath.Join(d.root, filepath.FromSlash(key))
}

func (d *localDisk) Put(key string, content []byte) error {
	p := d.path(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	return os.WriteFile(p, content, 0o644)
}

func (d *localDisk) Get(key string) ([]byte, error) {
	return os.ReadFile(d.path(key))
}

func (d *localDisk) Exists(key string) bool {
	_, err := os.Stat(d.path(key))
	return err == nil
}

func (d *localDisk) Delete(key string) error {
	err := os.Remove(d.path(key))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func (d *localDisk) URL(key string) string {
	return d.baseURL + "/" + key
}

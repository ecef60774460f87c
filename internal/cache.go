package internal

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const cacheVersion = "1.0"

// CacheManager keeps the last raw webhook bodies of each vertical on disk
type CacheManager struct {
	cacheDir string
	ttl      time.Duration
	now      func() time.Time
}

// CacheMetadata stores metadata about the cache
type CacheMetadata struct {
	CacheVersion string    `yaml:"cache_version"`
	CreatedAt    time.Time `yaml:"created_at"`
	UpdatedAt    time.Time `yaml:"updated_at"`
}

// PayloadIndexEntry describes one cached response body
type PayloadIndexEntry struct {
	Vertical  string    `yaml:"vertical"`
	Endpoint  string    `yaml:"endpoint"`
	File      string    `yaml:"file"`
	Bytes     int       `yaml:"bytes"`
	FetchedAt time.Time `yaml:"fetched_at"`
}

// PayloadIndex is the YAML index of all cached bodies
type PayloadIndex struct {
	Payloads []PayloadIndexEntry `yaml:"payloads"`
	Metadata CacheMetadata       `yaml:"metadata"`
}

// CachedBody is a raw response body and the endpoint it came from
type CachedBody struct {
	Endpoint string
	Body     []byte
}

// NewCacheManager creates a cache rooted at cacheDir. Entries older than ttl are stale.
func NewCacheManager(cacheDir string, ttl time.Duration) *CacheManager {
	return &CacheManager{
		cacheDir: cacheDir,
		ttl:      ttl,
		now:      time.Now,
	}
}

// EnsureCacheDir ensures the cache directory exists
func (cm *CacheManager) EnsureCacheDir() error {
	if err := os.MkdirAll(cm.cacheDir, 0755); err != nil {
		return &StorageError{Path: cm.cacheDir, Op: "write", Err: err}
	}
	return nil
}

// GetCacheDir returns the cache directory path
func (cm *CacheManager) GetCacheDir() string {
	return cm.cacheDir
}

// GetIndexPath returns the path to the payload index YAML file
func (cm *CacheManager) GetIndexPath() string {
	return filepath.Join(cm.cacheDir, "payloads.yaml")
}

// GetPayloadPath returns the path of the n-th cached body of a vertical
func (cm *CacheManager) GetPayloadPath(vertical string, n int) string {
	return filepath.Join(cm.cacheDir, fmt.Sprintf("payload_%s_%d.json", vertical, n))
}

// IsCacheValid reports whether the vertical has cached bodies younger than the
// TTL that were fetched from exactly endpoints, in that order.
func (cm *CacheManager) IsCacheValid(vertical string, endpoints []string) (bool, error) {
	if cm.ttl <= 0 {
		return false, nil
	}

	if _, err := os.Stat(cm.GetIndexPath()); os.IsNotExist(err) {
		return false, nil
	}

	index, err := cm.LoadIndex()
	if err != nil {
		return false, err
	}

	entries := index.entries(vertical)
	if len(entries) == 0 || len(entries) != len(endpoints) {
		return false, nil
	}
	for i, entry := range entries {
		if entry.Endpoint != endpoints[i] {
			LogDebug("Cached %s payloads came from another endpoint", vertical)
			return false, nil
		}
		if cm.now().Sub(entry.FetchedAt) >= cm.ttl {
			return false, nil
		}
		if _, err := os.Stat(filepath.Join(cm.cacheDir, entry.File)); err != nil {
			return false, nil
		}
	}

	return true, nil
}

// LoadIndex loads the payload index
func (cm *CacheManager) LoadIndex() (*PayloadIndex, error) {
	indexPath := cm.GetIndexPath()
	data, err := os.ReadFile(indexPath)
	if err != nil {
		return nil, &StorageError{Path: indexPath, Op: "read", Err: err}
	}

	var index PayloadIndex
	if err := yaml.Unmarshal(data, &index); err != nil {
		return nil, &StorageError{Path: indexPath, Op: "read", Err: fmt.Errorf("failed to unmarshal index: %w", err)}
	}

	return &index, nil
}

// SaveIndex saves the payload index
func (cm *CacheManager) SaveIndex(index *PayloadIndex) error {
	if err := cm.EnsureCacheDir(); err != nil {
		return err
	}

	indexPath := cm.GetIndexPath()
	data, err := yaml.Marshal(index)
	if err != nil {
		return fmt.Errorf("failed to marshal index: %w", err)
	}

	if err := os.WriteFile(indexPath, data, 0644); err != nil {
		return &StorageError{Path: indexPath, Op: "write", Err: err}
	}
	return nil
}

// SavePayloads replaces the cached bodies of a vertical and updates the index
func (cm *CacheManager) SavePayloads(vertical string, bodies []CachedBody) error {
	if err := cm.EnsureCacheDir(); err != nil {
		return err
	}

	now := cm.now()
	index, err := cm.LoadIndex()
	if err != nil {
		index = &PayloadIndex{Metadata: CacheMetadata{CacheVersion: cacheVersion, CreatedAt: now}}
	}
	index.Metadata.UpdatedAt = now

	// Drop the previous entries of this vertical before writing the new set
	kept := make([]PayloadIndexEntry, 0, len(index.Payloads))
	for _, entry := range index.Payloads {
		if entry.Vertical == vertical {
			_ = os.Remove(filepath.Join(cm.cacheDir, entry.File))
			continue
		}
		kept = append(kept, entry)
	}
	index.Payloads = kept

	for i, body := range bodies {
		path := cm.GetPayloadPath(vertical, i)
		if err := os.WriteFile(path, body.Body, 0644); err != nil {
			return &StorageError{Path: path, Op: "write", Err: err}
		}
		index.Payloads = append(index.Payloads, PayloadIndexEntry{
			Vertical:  vertical,
			Endpoint:  body.Endpoint,
			File:      filepath.Base(path),
			Bytes:     len(body.Body),
			FetchedAt: now,
		})
	}

	return cm.SaveIndex(index)
}

// LoadPayloads returns the cached bodies of a vertical in fetch order
func (cm *CacheManager) LoadPayloads(vertical string) ([]CachedBody, error) {
	index, err := cm.LoadIndex()
	if err != nil {
		return nil, err
	}

	entries := index.entries(vertical)
	if len(entries) == 0 {
		return nil, &StorageError{Path: cm.GetIndexPath(), Op: "read", Err: fmt.Errorf("no cached payload for %s", vertical)}
	}

	bodies := make([]CachedBody, 0, len(entries))
	for _, entry := range entries {
		path := filepath.Join(cm.cacheDir, entry.File)
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, &StorageError{Path: path, Op: "read", Err: err}
		}
		bodies = append(bodies, CachedBody{Endpoint: entry.Endpoint, Body: data})
	}
	return bodies, nil
}

// ClearCache removes every cached body and the index
func (cm *CacheManager) ClearCache() error {
	indexPath := cm.GetIndexPath()

	index, err := cm.LoadIndex()
	if err == nil {
		for _, entry := range index.Payloads {
			_ = os.Remove(filepath.Join(cm.cacheDir, entry.File))
		}
	}

	if err := os.Remove(indexPath); err != nil && !os.IsNotExist(err) {
		return &StorageError{Path: indexPath, Op: "write", Err: err}
	}

	return nil
}

func (idx *PayloadIndex) entries(vertical string) []PayloadIndexEntry {
	var out []PayloadIndexEntry
	for _, entry := range idx.Payloads {
		if entry.Vertical == vertical {
			out = append(out, entry)
		}
	}
	return out
}

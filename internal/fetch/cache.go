package fetch

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/url"
	"os"
	"path/filepath"

	"github.com/midiakiasat/MAILSIEVE/internal/domain"
	"go.uber.org/zap"
)

// DiskCache stores one metadata record and one body blob per fetched URL,
// keyed by a hash of the URL and partitioned into a subdirectory per host.
// All operations are best-effort: a cache failure never fails a fetch.
type DiskCache struct {
	dir    string
	logger *zap.Logger
}

// NewDiskCache returns nil when dir is empty, which disables caching.
func NewDiskCache(dir string, logger *zap.Logger) *DiskCache {
	if dir == "" {
		return nil
	}
	return &DiskCache{dir: dir, logger: logger}
}

// HashURL creates a sha256 hash of a URL, used as the cache key.
func HashURL(rawURL string) string {
	sum := sha256.Sum256([]byte(rawURL))
	return hex.EncodeToString(sum[:])
}

func (c *DiskCache) paths(rawURL string) (metaPath, bodyPath string, ok bool) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return "", "", false
	}
	key := HashURL(rawURL)
	hostDir := filepath.Join(c.dir, sanitizeHost(u.Host))
	return filepath.Join(hostDir, key+".json"), filepath.Join(hostDir, key+".body"), true
}

// Get returns the cached metadata and body for a URL, if present.
func (c *DiskCache) Get(rawURL string) (domain.CacheMeta, []byte, bool) {
	if c == nil {
		return domain.CacheMeta{}, nil, false
	}
	metaPath, bodyPath, ok := c.paths(rawURL)
	if !ok {
		return domain.CacheMeta{}, nil, false
	}
	raw, err := os.ReadFile(metaPath)
	if err != nil {
		return domain.CacheMeta{}, nil, false
	}
	var meta domain.CacheMeta
	if err := json.Unmarshal(raw, &meta); err != nil {
		return domain.CacheMeta{}, nil, false
	}
	body, err := os.ReadFile(bodyPath)
	if err != nil {
		return domain.CacheMeta{}, nil, false
	}
	return meta, body, true
}

// Put persists a body and its validators. Failures are logged and dropped.
func (c *DiskCache) Put(rawURL string, meta domain.CacheMeta, body []byte) {
	if c == nil {
		return
	}
	metaPath, bodyPath, ok := c.paths(rawURL)
	if !ok {
		return
	}
	if err := os.MkdirAll(filepath.Dir(metaPath), 0o755); err != nil {
		c.logger.Debug("cache mkdir failed", zap.Error(err))
		return
	}
	raw, err := json.Marshal(meta)
	if err != nil {
		return
	}
	if err := os.WriteFile(bodyPath, body, 0o644); err != nil {
		c.logger.Debug("cache body write failed", zap.String("url", rawURL), zap.Error(err))
		return
	}
	if err := os.WriteFile(metaPath, raw, 0o644); err != nil {
		c.logger.Debug("cache meta write failed", zap.String("url", rawURL), zap.Error(err))
	}
}

func sanitizeHost(host string) string {
	out := make([]rune, 0, len(host))
	for _, r := range host {
		switch r {
		case ':', '/', '\\':
			out = append(out, '_')
		default:
			out = append(out, r)
		}
	}
	return string(out)
}

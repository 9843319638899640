// Package hub fetches remote evaluation datasets into a local cache.
//
// Files are downloaded once to a temporary path and atomically renamed into
// the cache; a flock-guarded lock file coordinates multiple processes pulling
// the same dataset concurrently.
package hub

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// DefaultCacheDir returns the default dataset cache location under the user
// cache directory, falling back to the system temp dir.
func DefaultCacheDir() string {
	base, err := os.UserCacheDir()
	if err != nil {
		base = os.TempDir()
	}
	return filepath.Join(base, "go-anonymizer", "datasets")
}

// Fetcher downloads dataset files over HTTP into CacheDir.
type Fetcher struct {
	// CacheDir is where downloaded files land; DefaultCacheDir() when empty.
	CacheDir string
	// Client is the HTTP client used for downloads; http.DefaultClient when nil.
	Client *http.Client
}

// Fetch downloads rawURL into the cache, returning the local file path. If
// the file is already cached it returns immediately without network access.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", errors.Wrapf(err, "invalid dataset URL %q", rawURL)
	}
	cacheDir := f.CacheDir
	if cacheDir == "" {
		cacheDir = DefaultCacheDir()
	}
	// Hash prefix keeps distinct URLs with the same base name apart.
	urlHash := sha256.Sum256([]byte(rawURL))
	filePath := filepath.Join(cacheDir,
		fmt.Sprintf("%x-%s", urlHash[:8], path.Base(u.Path)))

	if fileExists(filePath) {
		klog.V(1).Infof("dataset %q already cached at %q", rawURL, filePath)
		return filePath, nil
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return "", errors.Wrapf(err, "failed to create cache dir %q", cacheDir)
	}

	// Lock file to avoid parallel downloads of the same dataset.
	lockPath := filePath + ".lock"
	var mainErr error
	errLock := execOnFileLock(lockPath, func() {
		if fileExists(filePath) {
			// Some concurrent process (or goroutine) already downloaded the file.
			return
		}
		mainErr = f.download(ctx, rawURL, filePath)
		if mainErr != nil {
			return
		}
		if err := os.Remove(lockPath); err != nil {
			klog.Warningf("failed to remove lock file %q: %v", lockPath, err)
		}
	})
	if mainErr != nil {
		return "", mainErr
	}
	if errLock != nil {
		return "", errors.WithMessagef(errLock, "while locking %q to download %q", lockPath, rawURL)
	}
	return filePath, nil
}

// download fetches url to filePath+".downloading" and atomically renames it
// into place, so a cached file is always complete.
func (f *Fetcher) download(ctx context.Context, rawURL, filePath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return errors.Wrapf(err, "failed to build request for %q", rawURL)
	}
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return errors.Wrapf(err, "failed to download %q", rawURL)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("download of %q returned %s", rawURL, resp.Status)
	}

	tmpPath := filePath + ".downloading"
	tmpFile, err := os.Create(tmpPath)
	if err != nil {
		return errors.Wrapf(err, "failed to create temporary download file %q", tmpPath)
	}
	written, err := io.Copy(tmpFile, resp.Body)
	if err != nil {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
		return errors.Wrapf(err, "failed while downloading %q to %q", rawURL, tmpPath)
	}
	if err := tmpFile.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return errors.Wrapf(err, "failed to close temporary download file %q", tmpPath)
	}
	if err := os.Rename(tmpPath, filePath); err != nil {
		_ = os.Remove(tmpPath)
		return errors.Wrapf(err, "failed to move downloaded file %q to %q", tmpPath, filePath)
	}
	klog.V(1).Infof("downloaded %q (%d bytes) to %q", rawURL, written, filePath)
	return nil
}

func fileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}

// execOnFileLock opens the lockPath file (creating it if needed), locks it
// and executes fn. If lockPath is already locked it polls with a 1 to 2
// second period until the lock is acquired.
func execOnFileLock(lockPath string, fn func()) (err error) {
	fileLock := flock.New(lockPath)
	for {
		locked, err := fileLock.TryLock()
		if err != nil {
			return errors.Wrapf(err, "while trying to lock %q", lockPath)
		}
		if locked {
			break
		}
		time.Sleep(time.Millisecond * time.Duration(1000+rand.Intn(1000)))
	}
	defer func() {
		unlockErr := fileLock.Unlock()
		if unlockErr != nil && err == nil {
			err = errors.Wrapf(unlockErr, "unlocking file %q", lockPath)
		}
	}()
	fn()
	return
}

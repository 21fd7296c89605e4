package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Assets serves a directory with Cache-Control, Vary, and ETag handling.
// Mount it behind http.StripPrefix("/assets", ...).
type Assets struct {
	dir   string
	files http.Handler

	mu    sync.RWMutex
	etags map[string]string
}

// NewAssets precomputes ETags for every file under dir.
func NewAssets(dir string) *Assets {
	a := &Assets{dir: dir, files: http.FileServer(http.Dir(dir))}
	a.Refresh()
	return a
}

// AssetsWithCache wraps a file server and applies Cache-Control, Vary, and ETag handling.
func AssetsWithCache(dir string) http.Handler {
	return NewAssets(dir)
}

// Refresh recomputes every ETag.
func (a *Assets) Refresh() {
	etags := map[string]string{}
	_ = filepath.Walk(a.dir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info == nil || info.IsDir() {
			return nil
		}
		et, err := fileETag(path)
		if err != nil {
			return nil
		}
		if rel, err := filepath.Rel(a.dir, path); err == nil {
			// always use '/' separators for URLs
			etags["/"+filepath.ToSlash(rel)] = et
		}
		return nil
	})
	a.mu.Lock()
	a.etags = etags
	a.mu.Unlock()
}

// ETag returns the current ETag for a URL path relative to the mount point.
func (a *Assets) ETag(urlPath string) string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.etags["/"+strings.TrimPrefix(urlPath, "/")]
}

func (a *Assets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Vary", "Accept-Encoding")
	w.Header().Set("Cache-Control", "public, max-age=604800, stale-while-revalidate=86400")
	if et := a.ETag(r.URL.Path); et != "" {
		w.Header().Set("ETag", et)
		if inm := r.Header.Get("If-None-Match"); inm != "" && inm == et {
			w.WriteHeader(http.StatusNotModified)
			return
		}
	}
	a.files.ServeHTTP(w, r)
}

// Watch refreshes ETags whenever something under the directory changes, until
// ctx is done. Used in dev mode so edited assets are not served as 304.
func (a *Assets) Watch(ctx context.Context, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := addDirs(w, a.dir); err != nil {
		_ = w.Close()
		return err
	}
	go func() {
		defer w.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if ev.Op&fsnotify.Create == fsnotify.Create {
					if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
						_ = addDirs(w, ev.Name)
					}
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
					a.Refresh()
					logger.Debug("assets changed", zap.String("file", ev.Name), zap.String("op", ev.Op.String()))
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				logger.Warn("asset watcher", zap.Error(err))
			}
		}
	}()
	return nil
}

func addDirs(w *fsnotify.Watcher, root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return w.Add(path)
		}
		return nil
	})
}

func fileETag(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return `W/"` + hex.EncodeToString(h.Sum(nil)) + `"`, nil
}

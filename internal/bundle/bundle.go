// Package bundle produces the static front-end bundle: hashed assets grouped
// into cache-friendly chunks, the rendered shell and a manifest.
package bundle

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

const (
	ChunkApp           = "app"
	ChunkVendor        = "vendor"
	ChunkFluentIcons   = "fluentui-icons"
	ChunkFluentReact   = "fluentui-react"
	ManifestName       = "manifest.json"
	IndexName          = "index.html"
	hashLen            = 8
	defaultOutDirPerms = 0o755
)

// ChunkFor assigns a module id to a chunk. Icon modules are checked before
// the broader react prefix.
func ChunkFor(id string) string {
	switch {
	case strings.Contains(id, "@fluentui/react-icons"):
		return ChunkFluentIcons
	case strings.Contains(id, "@fluentui/react"):
		return ChunkFluentReact
	case strings.Contains(id, "node_modules"):
		return ChunkVendor
	}
	return ChunkApp
}

// Options control a build.
type Options struct {
	Source      string // directory holding assets/
	OutDir      string
	EmptyOutDir bool
}

// Manifest records what a build emitted.
type Manifest struct {
	Index  string              `json:"index"`
	Chunks map[string][]string `json:"chunks"`
	Files  map[string]string   `json:"files"` // source path -> emitted path
}

// Asset returns the emitted path for a source path, or the source path.
func (m Manifest) Asset(src string) string {
	if out, ok := m.Files[src]; ok {
		return "/" + out
	}
	return "/" + strings.TrimPrefix(src, "/")
}

// IndexRenderer renders the shell given the emitted asset names.
type IndexRenderer func(m Manifest) ([]byte, error)

var ErrUnsafeOutDir = errors.New("bundle: output directory overlaps the source")

// Build copies every file under opts.Source into opts.OutDir under a
// content-hashed name, writes index.html and manifest.json.
func Build(ctx context.Context, opts Options, render IndexRenderer) (Manifest, error) {
	src, err := filepath.Abs(opts.Source)
	if err != nil {
		return Manifest{}, fmt.Errorf("resolve source: %w", err)
	}
	out, err := filepath.Abs(opts.OutDir)
	if err != nil {
		return Manifest{}, fmt.Errorf("resolve out dir: %w", err)
	}
	sep := string(filepath.Separator)
	if out == src || strings.HasPrefix(src, out+sep) || strings.HasPrefix(out, src+sep) || out == filepath.Dir(out) {
		return Manifest{}, fmt.Errorf("%s: %w", out, ErrUnsafeOutDir)
	}
	if opts.EmptyOutDir {
		if err := os.RemoveAll(out); err != nil {
			return Manifest{}, fmt.Errorf("empty out dir: %w", err)
		}
	}
	if err := os.MkdirAll(out, defaultOutDirPerms); err != nil {
		return Manifest{}, fmt.Errorf("create out dir: %w", err)
	}

	m := Manifest{Index: IndexName, Chunks: map[string][]string{}, Files: map[string]string{}}
	err = filepath.WalkDir(src, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || strings.HasSuffix(d.Name(), ".test.js") {
			return nil
		}
		rel, err := filepath.Rel(src, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		emitted, err := copyHashed(p, out, rel)
		if err != nil {
			return err
		}
		chunk := ChunkFor(rel)
		m.Chunks[chunk] = append(m.Chunks[chunk], emitted)
		m.Files[rel] = emitted
		return nil
	})
	if err != nil {
		return Manifest{}, fmt.Errorf("copy assets: %w", err)
	}
	for _, files := range m.Chunks {
		sort.Strings(files)
	}

	if render != nil {
		html, err := render(m)
		if err != nil {
			return Manifest{}, fmt.Errorf("render index: %w", err)
		}
		if err := os.WriteFile(filepath.Join(out, IndexName), html, 0o644); err != nil {
			return Manifest{}, fmt.Errorf("write index: %w", err)
		}
	}
	raw, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return Manifest{}, fmt.Errorf("encode manifest: %w", err)
	}
	if err := os.WriteFile(filepath.Join(out, ManifestName), raw, 0o644); err != nil {
		return Manifest{}, fmt.Errorf("write manifest: %w", err)
	}
	return m, nil
}

func copyHashed(srcPath, outDir, rel string) (string, error) {
	f, err := os.Open(srcPath)
	if err != nil {
		return "", err
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	sum := hex.EncodeToString(h.Sum(nil))[:hashLen]
	ext := path.Ext(rel)
	emitted := strings.TrimSuffix(rel, ext) + "." + sum + ext

	dst := filepath.Join(outDir, filepath.FromSlash(emitted))
	if err := os.MkdirAll(filepath.Dir(dst), defaultOutDirPerms); err != nil {
		return "", err
	}
	w, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(w, f); err != nil {
		w.Close()
		return "", err
	}
	if err := w.Close(); err != nil {
		return "", err
	}
	return emitted, nil
}

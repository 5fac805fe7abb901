// Package history loads migration script bundles. A bundle is an ordered
// list of SQL scripts; order is the lexicographic order of their names, which
// is why script files carry sortable prefixes (0001_init.sql, 0002_...).
//
// Two sources are supported: a local directory and an object store bucket.
package history

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/soumikc/driftline/internal/errs"
	"github.com/soumikc/driftline/internal/filestore"
)

// Script is one migration script from the history.
type Script struct {
	// Name is the script's file or object name, without any directory prefix.
	Name string
	// SQL is the full script content.
	SQL string
}

// LoadDir reads all .sql files in dir, sorted lexicographically by name.
// Subdirectories and non-SQL files are ignored. A missing directory is an
// ErrKindNotFound.
func LoadDir(dir string) ([]Script, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errs.Wrap(errs.ErrKindNotFound, "migrations directory does not exist", err)
		}
		return nil, errs.Wrap(errs.ErrKindInvalidInput, "failed to read migrations directory", err)
	}

	var scripts []Script
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		content, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, errs.Wrap(errs.ErrKindInvalidInput, "failed to read migration script "+entry.Name(), err)
		}
		scripts = append(scripts, Script{Name: entry.Name(), SQL: string(content)})
	}

	// os.ReadDir already sorts by filename, but the ordering is a contract
	// here, not a convenience.
	sort.Slice(scripts, func(i, j int) bool { return scripts[i].Name < scripts[j].Name })

	return scripts, nil
}

// LoadStore reads all .sql objects under cfg.Prefix in cfg.Bucket, sorted
// lexicographically by key. Virtual directory entries are skipped.
func LoadStore(ctx context.Context, store filestore.Store, cfg *filestore.Config) ([]Script, error) {
	objects, err := store.ListObjects(ctx, cfg.Bucket, filestore.ListOptions{
		Prefix:    cfg.Prefix,
		Recursive: true,
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(objects, func(i, j int) bool { return objects[i].Key < objects[j].Key })

	var scripts []Script
	for _, info := range objects {
		if info.IsDir || !strings.HasSuffix(info.Key, ".sql") {
			continue
		}
		sql, err := readObject(ctx, store, cfg.Bucket, info.Key)
		if err != nil {
			return nil, err
		}
		name := info.Key
		if i := strings.LastIndexByte(name, '/'); i >= 0 {
			name = name[i+1:]
		}
		scripts = append(scripts, Script{Name: name, SQL: sql})
	}

	return scripts, nil
}

func readObject(ctx context.Context, store filestore.Store, bucket, key string) (string, error) {
	obj, err := store.GetObject(ctx, bucket, key)
	if err != nil {
		return "", err
	}
	defer obj.Close()

	content, err := io.ReadAll(obj)
	if err != nil {
		return "", errs.Wrap(errs.ErrKindConnectionFailed, "failed to read object "+key, err)
	}
	return string(content), nil
}

// Package walker enumerates files under a directory tree.
//
// Exclusion is a plain substring test against the full path, not a path
// segment match: an exclude token "/site/modules" also drops
// "/site/modules_extra/x.php". Callers rely on this loose behavior.
package walker

import (
	"io/fs"
	"path/filepath"
	"strings"
)

// Target describes one enumeration. Extension is compared without the dot.
type Target struct {
	Root      string
	Extension string
	Exclude   string
}

type FileRecord struct {
	Path      string
	Extension string
	Lines     int
}

// ListFiles returns the files under target.Root whose extension matches
// exactly and whose path does not contain target.Exclude. A missing root
// yields no files.
func ListFiles(target Target) []string {
	files := make([]string, 0)
	walkFiles(target.Root, target.Exclude, func(path string) {
		if extension(path) != target.Extension {
			return
		}
		files = append(files, resolvePath(path))
	})
	return files
}

// Extensions returns the lower-cased extensions present under root in
// first-seen order. Files without an extension are skipped.
func Extensions(root, exclude string) []string {
	seen := make(map[string]struct{})
	extensions := make([]string, 0)
	walkFiles(root, exclude, func(path string) {
		ext := strings.ToLower(extension(path))
		if ext == "" {
			return
		}
		if _, ok := seen[ext]; ok {
			return
		}
		seen[ext] = struct{}{}
		extensions = append(extensions, ext)
	})
	return extensions
}

// Records pairs each path with its extension and line count.
func Records(paths []string) []FileRecord {
	records := make([]FileRecord, 0, len(paths))
	for _, path := range paths {
		records = append(records, FileRecord{
			Path:      path,
			Extension: extension(path),
			Lines:     CountLines(path),
		})
	}
	return records
}

func walkFiles(root, exclude string, visit func(path string)) {
	if strings.TrimSpace(root) == "" {
		return
	}
	// WalkDir does not follow a symlinked root, so walk its target and
	// test exclusion against the path as seen through root.
	walkRoot := root
	if resolved, err := filepath.EvalSymlinks(root); err == nil {
		walkRoot = resolved
	}
	_ = filepath.WalkDir(walkRoot, func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if entry != nil && entry.IsDir() && path != walkRoot {
				return filepath.SkipDir
			}
			return nil
		}
		if !entry.Type().IsRegular() && !isSymlinkToFile(path, entry) {
			return nil
		}
		if exclude != "" && strings.Contains(underRoot(root, walkRoot, path), exclude) {
			return nil
		}
		visit(path)
		return nil
	})
}

func underRoot(root, walkRoot, path string) string {
	if walkRoot == root {
		return path
	}
	rel, err := filepath.Rel(walkRoot, path)
	if err != nil {
		return path
	}
	return filepath.Join(root, rel)
}

func isSymlinkToFile(path string, entry fs.DirEntry) bool {
	if entry.Type()&fs.ModeSymlink == 0 {
		return false
	}
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return false
	}
	info, err := statPath(resolved)
	return err == nil && info.Mode().IsRegular()
}

func extension(path string) string {
	return strings.TrimPrefix(filepath.Ext(path), ".")
}

func resolvePath(path string) string {
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		path = resolved
	}
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}

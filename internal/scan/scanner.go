package scan

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

type FileInfo struct {
	Path  string
	Mtime int64
	Size  int64
}

// ScanInputs expands each input into archive files. Plain files are kept
// as given (whatever their extension) so that bad inputs are reported by the
// extractor instead of vanishing; directories are walked for *.zip files.
// Missing inputs are kept as well, with zero mtime and size.
func ScanInputs(inputs []string) ([]FileInfo, error) {
	var files []FileInfo
	seen := make(map[string]struct{})

	add := func(fi FileInfo) {
		if _, ok := seen[fi.Path]; ok {
			return
		}
		seen[fi.Path] = struct{}{}
		files = append(files, fi)
	}

	for _, in := range inputs {
		info, err := os.Stat(in)
		if err != nil {
			if os.IsNotExist(err) {
				add(FileInfo{Path: in})
				continue
			}
			return nil, err
		}
		if !info.IsDir() {
			add(FileInfo{Path: in, Mtime: info.ModTime().Unix(), Size: info.Size()})
			continue
		}
		dirFiles, err := scanDir(in)
		if err != nil {
			return nil, err
		}
		for _, f := range dirFiles {
			add(f)
		}
	}

	return files, nil
}

func scanDir(root string) ([]FileInfo, error) {
	var files []FileInfo
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // skip unreadable dirs
		}
		if info.IsDir() {
			if path != root && strings.HasPrefix(info.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.EqualFold(filepath.Ext(path), ".zip") {
			return nil
		}
		files = append(files, FileInfo{
			Path:  path,
			Mtime: info.ModTime().Unix(),
			Size:  info.Size(),
		})
		return nil
	})
	// Walk is lexical already; keep the order explicit for callers relying on it.
	sort.SliceStable(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, err
}

// Paths returns the file paths in order.
func Paths(files []FileInfo) []string {
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = f.Path
	}
	return out
}

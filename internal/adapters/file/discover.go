package file

import (
	"bufio"
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DefaultExtensions are the file types scanned when none are configured.
var DefaultExtensions = []string{".puml", ".plantuml", ".pu"}

var startMarker = []byte("@startuml")

// Discover returns the files under root whose extension is in exts, sorted.
// A root that names a file is returned as is, whatever its extension.
// Hidden directories are skipped.
func Discover(root string, exts []string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", root, err)
	}
	if !info.IsDir() {
		return []string{root}, nil
	}
	want := extensionSet(exts)

	var paths []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if want[strings.ToLower(filepath.Ext(path))] {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", root, err)
	}

	sort.Strings(paths)
	return paths, nil
}

// HasExtension reports whether path ends in one of exts (DefaultExtensions when empty).
func HasExtension(path string, exts []string) bool {
	return extensionSet(exts)[strings.ToLower(filepath.Ext(path))]
}

func extensionSet(exts []string) map[string]bool {
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	want := make(map[string]bool, len(exts))
	for _, e := range exts {
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		want[strings.ToLower(e)] = true
	}
	return want
}

// ContainsDiagram reports whether the file mentions a diagram start marker.
// It is a cheap filter applied before a full parse.
func ContainsDiagram(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		if bytes.Contains(sc.Bytes(), startMarker) {
			return true, nil
		}
	}
	return false, sc.Err()
}

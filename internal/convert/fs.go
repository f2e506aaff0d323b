// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// maxLineLen bounds a single source line.
const maxLineLen = 1 << 20

// DirSource reads sources from a directory. With an empty Dir, names are
// used as paths directly.
type DirSource struct {
	Dir string

	// Extension selects the files List returns (e.g. ".pla"). Matching is
	// case-insensitive; empty matches every file.
	Extension string
}

func (s DirSource) path(name string) string {
	if s.Dir == "" || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(s.Dir, name)
}

// List returns the names of the regular source files in Dir, sorted.
// Dotfiles (.DS_Store and similar) and subdirectories are skipped.
func (s DirSource) List() ([]string, error) {
	dir := s.Dir
	if dir == "" {
		dir = "."
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading source directory %s: %w", dir, err)
	}
	var names []string
	for _, e := range entries {
		name := e.Name()
		if strings.HasPrefix(name, ".") || !e.Type().IsRegular() {
			continue
		}
		if s.Extension != "" && !strings.EqualFold(filepath.Ext(name), s.Extension) {
			continue
		}
		names = append(names, name)
	}
	return names, nil
}

// ReadLines reads the named source and splits it into lines.
func (s DirSource) ReadLines(name string) ([]string, error) {
	f, err := os.Open(s.path(name))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineLen)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", s.path(name), err)
	}
	return lines, nil
}

// ModTime returns the modification time of the named source.
func (s DirSource) ModTime(name string) (time.Time, error) {
	info, err := os.Stat(s.path(name))
	if err != nil {
		return time.Time{}, err
	}
	return info.ModTime(), nil
}

// DirDestination writes BLIF files into a directory, creating it on demand.
type DirDestination struct {
	Dir string
}

// WriteLines writes lines, each terminated by a newline, to Dir/name. The
// text goes to a temporary file first and is renamed into place, so a failed
// write never leaves a truncated file under name.
func (d DirDestination) WriteLines(name string, lines []string) (err error) {
	if err := os.MkdirAll(d.Dir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	tmp, err := os.CreateTemp(d.Dir, "."+name+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temporary file: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	bw := bufio.NewWriter(tmp)
	for _, l := range lines {
		if _, err = bw.WriteString(l + "\n"); err != nil {
			return err
		}
	}
	if err = bw.Flush(); err != nil {
		return err
	}
	if err = tmp.Chmod(0o644); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), filepath.Join(d.Dir, name))
}

// ModTime returns the modification time of Dir/name.
func (d DirDestination) ModTime(name string) (time.Time, error) {
	info, err := os.Stat(filepath.Join(d.Dir, name))
	if err != nil {
		return time.Time{}, err
	}
	return info.ModTime(), nil
}

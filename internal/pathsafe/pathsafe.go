// Package pathsafe resolves and validates file paths against a project
// root before any read or write, and provides an atomic, crash-safe
// write primitive, adding traversal and symlink rejection on top of
// plain root containment.
package pathsafe

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Resolve validates file against root (defaulting to the process working
// directory when root is ""), rejecting ".." traversal, absolute paths
// outside root, and symlinks at the resolved target. It returns the
// resolved absolute path.
func Resolve(file, root string) (string, error) {
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to get working directory: %w", err)
		}
		root = wd
	}

	rootAbs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("invalid root path: %w", err)
	}

	if containsDotDot(file) {
		return "", fmt.Errorf("Path traversal blocked: %q contains '..' segments", file)
	}

	var absPath string
	if filepath.IsAbs(file) {
		absPath = file
	} else {
		absPath = filepath.Join(rootAbs, file)
	}
	absPath, err = filepath.Abs(absPath)
	if err != nil {
		return "", fmt.Errorf("invalid file path: %w", err)
	}

	relPath, err := filepath.Rel(rootAbs, absPath)
	if err != nil || strings.HasPrefix(relPath, "..") || filepath.IsAbs(relPath) {
		return "", fmt.Errorf("Path traversal blocked: %q resolves outside project root %q", file, rootAbs)
	}

	if info, err := os.Lstat(absPath); err == nil && info.Mode()&os.ModeSymlink != 0 {
		return "", fmt.Errorf("Refusing to operate on symlink: %q", file)
	}

	return absPath, nil
}

func containsDotDot(file string) bool {
	for _, part := range strings.Split(filepath.ToSlash(file), "/") {
		if part == ".." {
			return true
		}
	}
	return false
}

// AtomicWrite writes content to a sibling temp file named with a
// cryptographically random suffix, opened O_CREAT|O_EXCL|O_WRONLY, then
// renames it onto path. The temp file is unlinked if any step fails.
// rename is POSIX-atomic and does not follow a symlink at the target.
func AtomicWrite(path string, content []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	tmpPath, err := createTempExclusive(dir, filepath.Base(path), perm)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	if err := writeAndClose(tmpPath, content); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temp file onto target: %w", err)
	}
	return nil
}

func createTempExclusive(dir, base string, perm os.FileMode) (string, error) {
	suffix := make([]byte, 8)
	if _, err := rand.Read(suffix); err != nil {
		return "", err
	}
	name := filepath.Join(dir, fmt.Sprintf(".%s.%s.tmp", base, hex.EncodeToString(suffix)))
	f, err := os.OpenFile(name, os.O_CREATE|os.O_EXCL|os.O_WRONLY, perm)
	if err != nil {
		return "", err
	}
	f.Close()
	return name, nil
}

func writeAndClose(path string, content []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_TRUNC, 0)
	if err != nil {
		return err
	}
	if _, err := f.Write(content); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

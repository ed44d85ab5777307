package pathsafe

import (
	"os"
	"path/filepath"
	"testing"
)

func TestResolveAcceptsPathWithinRoot(t *testing.T) {
	dir := t.TempDir()
	abs, err := Resolve("sub/file.txt", dir)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	want := filepath.Join(dir, "sub", "file.txt")
	if abs != want {
		t.Errorf("got %q, want %q", abs, want)
	}
}

func TestResolveRejectsDotDot(t *testing.T) {
	dir := t.TempDir()
	_, err := Resolve("../escape.txt", dir)
	if err == nil {
		t.Fatal("expected traversal rejection")
	}
}

func TestResolveRejectsOutsideRoot(t *testing.T) {
	dir := t.TempDir()
	other := t.TempDir()
	_, err := Resolve(filepath.Join(other, "file.txt"), dir)
	if err == nil {
		t.Fatal("expected rejection of absolute path outside root")
	}
}

func TestResolveRejectsSymlink(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "real.txt")
	if err := os.WriteFile(target, []byte("hi"), 0644); err != nil {
		t.Fatal(err)
	}
	link := filepath.Join(dir, "link.txt")
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}
	_, err := Resolve("link.txt", dir)
	if err == nil {
		t.Fatal("expected symlink rejection")
	}
}

func TestAtomicWriteCreatesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.txt")
	if err := AtomicWrite(path, []byte("hello"), 0644); err != nil {
		t.Fatalf("AtomicWrite: %v", err)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "hello" {
		t.Errorf("got %q", got)
	}
}

func TestAtomicWriteOverwritesExisting(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.txt")
	if err := os.WriteFile(path, []byte("old"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := AtomicWrite(path, []byte("new"), 0644); err != nil {
		t.Fatalf("AtomicWrite: %v", err)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "new" {
		t.Errorf("got %q", got)
	}
}

func TestAtomicWriteLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.txt")
	if err := AtomicWrite(path, []byte("hello"), 0644); err != nil {
		t.Fatalf("AtomicWrite: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("expected exactly 1 file in dir, found %d", len(entries))
	}
}

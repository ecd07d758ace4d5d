package fileutil

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCopyFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.txt")
	dst := filepath.Join(dir, "dst.txt")
	if err := os.WriteFile(src, []byte("payload"), 0o644); err != nil {
		t.Fatalf("write src: %v", err)
	}

	if err := CopyFile(src, dst); err != nil {
		t.Fatalf("CopyFile: %v", err)
	}
	data, err := os.ReadFile(dst)
	if err != nil {
		t.Fatalf("read dst: %v", err)
	}
	if string(data) != "payload" {
		t.Fatalf("unexpected dst contents: %q", data)
	}
}

func TestBackupOnceDoesNotClobberExistingBackup(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "words.tsv")
	if err := os.WriteFile(path, []byte("original"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	backup, created, err := BackupOnce(path, ".bak")
	if err != nil {
		t.Fatalf("BackupOnce: %v", err)
	}
	if !created {
		t.Fatal("expected first backup to be created")
	}

	if err := os.WriteFile(path, []byte("patched"), 0o644); err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	_, created, err = BackupOnce(path, ".bak")
	if err != nil {
		t.Fatalf("BackupOnce second call: %v", err)
	}
	if created {
		t.Fatal("expected second backup to be skipped")
	}

	data, err := os.ReadFile(backup)
	if err != nil {
		t.Fatalf("read backup: %v", err)
	}
	if string(data) != "original" {
		t.Fatalf("backup should hold original contents, got %q", data)
	}
}

package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// 最小のPNGヘッダーを持つ画像データを生成
func pngData(size int) []byte {
	data := make([]byte, size)
	copy(data, []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A})
	return data
}

// ObjectNameがタイムスタンプと拡張子から名前を導出することを検証
func TestObjectName(t *testing.T) {
	now := time.UnixMilli(1700000000000)

	tests := []struct {
		original string
		want     string
	}{
		{"logo.png", "1700000000000.png"},
		{"shop.JPEG", "1700000000000.jpeg"},
		{"noext", "1700000000000.png"},
		{"../../etc/passwd", "1700000000000.png"},
	}
	for _, tt := range tests {
		if got := ObjectName(now, tt.original); got != tt.want {
			t.Errorf("ObjectName(%q) = %q, want %q", tt.original, got, tt.want)
		}
	}
}

// Saveが画像を保存して公開URLを返すことを検証
func TestDiskLogoStore_SaveAndPublicURL(t *testing.T) {
	dir := t.TempDir()
	store, err := NewDiskLogoStore(dir, "https://example.com/", 1024)
	if err != nil {
		t.Fatalf("NewDiskLogoStore failed: %v", err)
	}

	url, err := store.Save("1700000000000.png", pngData(100))
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if url != "https://example.com/logos/1700000000000.png" {
		t.Errorf("unexpected public URL: %q", url)
	}

	if _, err := os.Stat(filepath.Join(dir, "1700000000000.png")); err != nil {
		t.Errorf("saved file not found: %v", err)
	}
}

// サイズ上限を超えるデータが拒否されることを検証
func TestDiskLogoStore_SaveRejectsOversized(t *testing.T) {
	store, err := NewDiskLogoStore(t.TempDir(), "https://example.com", 64)
	if err != nil {
		t.Fatalf("NewDiskLogoStore failed: %v", err)
	}

	if _, err := store.Save("x.png", pngData(128)); err == nil {
		t.Error("expected error for oversized data")
	}
}

// 画像でないデータが拒否されることを検証
func TestDiskLogoStore_SaveRejectsNonImage(t *testing.T) {
	store, err := NewDiskLogoStore(t.TempDir(), "https://example.com", 1024)
	if err != nil {
		t.Fatalf("NewDiskLogoStore failed: %v", err)
	}

	if _, err := store.Save("x.png", []byte("<html><body>not an image</body></html>")); err == nil {
		t.Error("expected error for non-image data")
	}
	if _, err := store.Save("x.png", nil); err == nil {
		t.Error("expected error for empty data")
	}
}

// パス区切りを含むオブジェクト名が拒否されることを検証
func TestDiskLogoStore_RejectsPathTraversal(t *testing.T) {
	store, err := NewDiskLogoStore(t.TempDir(), "https://example.com", 1024)
	if err != nil {
		t.Fatalf("NewDiskLogoStore failed: %v", err)
	}

	for _, name := range []string{"../escape.png", "a/b.png", "", strings.Repeat("x", 200) + ".png"} {
		if _, err := store.Save(name, pngData(16)); err == nil {
			t.Errorf("Save(%q) = nil, want error", name)
		}
	}
}

// Deleteが保存済みオブジェクトを削除し、未存在でもエラーにしないことを検証
func TestDiskLogoStore_Delete(t *testing.T) {
	dir := t.TempDir()
	store, err := NewDiskLogoStore(dir, "https://example.com", 1024)
	if err != nil {
		t.Fatalf("NewDiskLogoStore failed: %v", err)
	}

	if _, err := store.Save("del.png", pngData(16)); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := store.Delete("del.png"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "del.png")); !os.IsNotExist(err) {
		t.Error("file still exists after Delete")
	}

	// 冪等: 2回目の削除もエラーにならない
	if err := store.Delete("del.png"); err != nil {
		t.Errorf("second Delete returned error: %v", err)
	}
}

package clipboard

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestTempImageFile_WritesBytes(t *testing.T) {
	data := []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a, 1, 2, 3}
	path, err := TempImageFile(data, "png")
	if err != nil {
		t.Fatalf("TempImageFile: %v", err)
	}
	defer os.Remove(path)

	if !filepath.IsAbs(path) {
		t.Errorf("expected absolute path, got %q", path)
	}
	if !strings.HasPrefix(filepath.Base(path), "opencode-paste-") {
		t.Errorf("unexpected file name: %q", filepath.Base(path))
	}
	if !strings.HasSuffix(path, ".png") {
		t.Errorf("expected .png suffix, got %q", path)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Errorf("file contents differ from input")
	}
}

func TestTempImageFile_DefaultSubtype(t *testing.T) {
	path, err := TempImageFile([]byte{1}, "")
	if err != nil {
		t.Fatalf("TempImageFile: %v", err)
	}
	defer os.Remove(path)

	if !strings.HasSuffix(path, ".png") {
		t.Errorf("expected default .png suffix, got %q", path)
	}
}

func TestTempImageFile_EmptyData(t *testing.T) {
	if _, err := TempImageFile(nil, "png"); err == nil {
		t.Fatal("expected error for empty data")
	}
}

func TestDecodeBase64_ToleratesCRLF(t *testing.T) {
	data, err := decodeBase64([]byte("aGVsbG8=\r\n"))
	if err != nil {
		t.Fatalf("decodeBase64: %v", err)
	}
	if string(data) != "hello" {
		t.Errorf("expected %q, got %q", "hello", string(data))
	}
}

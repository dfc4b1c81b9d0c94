package sketch

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func setupSketch(t *testing.T, name string, files map[string]string) string {
	t.Helper()

	dir := filepath.Join(t.TempDir(), name)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("Failed to create sketch dir: %v", err)
	}
	for n, content := range files {
		if err := os.WriteFile(filepath.Join(dir, n), []byte(content), 0644); err != nil {
			t.Fatalf("Failed to write %s: %v", n, err)
		}
	}
	return dir
}

func fileNames(s *Sketch) []string {
	var names []string
	for _, f := range s.Files {
		names = append(names, f.Name)
	}
	return names
}

func TestLoadOrdersPrimaryFirst(t *testing.T) {
	dir := setupSketch(t, "Blink", map[string]string{
		"Blink.ino":   "void setup() {}\n",
		"motor.ino":   "void spin() {}\n",
		"Alpha.pde":   "void a() {}\n",
		"notes.txt":   "ignored",
		"helpers.h":   "ignored",
		".hidden.ino": "ignored",
	})

	sk, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if sk.Name != "Blink" {
		t.Errorf("Expected sketch name 'Blink', got '%s'", sk.Name)
	}

	names := fileNames(sk)
	want := []string{"Blink.ino", "Alpha.pde", "motor.ino"}
	if len(names) != len(want) {
		t.Fatalf("Expected files %v, got %v", want, names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("Expected files %v, got %v", want, names)
			break
		}
	}
}

func TestLoadFromFilePath(t *testing.T) {
	dir := setupSketch(t, "Servo", map[string]string{
		"Servo.ino": "void setup() {}\n",
	})

	sk, err := Load(filepath.Join(dir, "Servo.ino"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(sk.Files) != 1 || sk.Files[0].Name != "Servo.ino" {
		t.Errorf("Unexpected files %v", fileNames(sk))
	}
}

func TestLoadEmptyFolder(t *testing.T) {
	dir := setupSketch(t, "Empty", map[string]string{"readme.md": "x"})

	if _, err := Load(dir); !errors.Is(err, ErrNoSketchFiles) {
		t.Errorf("Expected ErrNoSketchFiles, got %v", err)
	}
}

func TestLoadRejectsOtherFiles(t *testing.T) {
	dir := setupSketch(t, "Other", map[string]string{"main.c": "int main() {}"})

	if _, err := Load(filepath.Join(dir, "main.c")); err == nil {
		t.Error("Expected error for a non-sketch file")
	}
}

func TestSourceAndLocate(t *testing.T) {
	dir := setupSketch(t, "Combo", map[string]string{
		"Combo.ino": "void setup() {}\nvoid loop() {}\n",
		"extra.ino": "void extra() {}",
	})

	sk, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	want := "void setup() {}\nvoid loop() {}\n\nvoid extra() {}\n"
	if got := sk.Source(); got != want {
		t.Errorf("Source = %q, want %q", got, want)
	}

	tests := []struct {
		line     int
		file     string
		fileLine int
	}{
		{1, "Combo.ino", 1},
		{2, "Combo.ino", 2},
		{3, "Combo.ino", 3},
		{4, "extra.ino", 1},
	}
	for _, tt := range tests {
		file, fileLine, ok := sk.Locate(tt.line)
		if !ok || file != tt.file || fileLine != tt.fileLine {
			t.Errorf("Locate(%d) = %s:%d (%v), want %s:%d", tt.line, file, fileLine, ok, tt.file, tt.fileLine)
		}
	}
	if _, _, ok := sk.Locate(5); ok {
		t.Error("Locate past the last file should fail")
	}
}

func TestHashChangesWithContent(t *testing.T) {
	dir := setupSketch(t, "Hash", map[string]string{"Hash.ino": "void setup() {}\n"})

	first, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "Hash.ino"), []byte("void loop() {}\n"), 0644); err != nil {
		t.Fatalf("Failed to rewrite sketch: %v", err)
	}
	second, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if first.Hash() == second.Hash() {
		t.Error("Hash should change when the content changes")
	}
	if len(first.Hash()) != 64 {
		t.Errorf("Expected 64 hex chars, got %d", len(first.Hash()))
	}
}

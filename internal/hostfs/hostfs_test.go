package hostfs

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNormalize83(t *testing.T) {
	cases := []struct{ in, want string }{
		{"hello.txt", "HELLO.TXT"},
		{"readme", "README"},
		{"verylongname.extension", "VERYLONG.EXT"},
		{"weird name!@#.c", "WEIRDNAM.C"},
		{".hidden", "_.HID"},
		{"a.b.c", "AB.C"},
		{"!!!.txt", "_.TXT"},
	}
	for _, c := range cases {
		if got := Normalize83(c.in); got != c.want {
			t.Errorf("Normalize83(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestBuildTreeReadsFilesAndDirs(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "hello.txt"), []byte("hi"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	sub := filepath.Join(root, "sub")
	if err := os.Mkdir(sub, 0755); err != nil {
		t.Fatalf("Mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(sub, "nested.dat"), []byte("abc"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	node, err := BuildTree(root)
	if err != nil {
		t.Fatalf("BuildTree: %v", err)
	}
	if !node.IsDir {
		t.Fatal("root node is not a directory")
	}
	if len(node.Children) != 2 {
		t.Fatalf("len(Children) = %d, want 2", len(node.Children))
	}

	byName := map[string]int{}
	for i, c := range node.Children {
		byName[c.Name] = i
	}
	file := node.Children[byName["HELLO.TXT"]]
	if string(file.Content) != "hi" || file.Size != 2 {
		t.Errorf("HELLO.TXT content = %q size %d, want \"hi\" 2", file.Content, file.Size)
	}
	dir := node.Children[byName["SUB"]]
	if !dir.IsDir || len(dir.Children) != 1 {
		t.Fatalf("SUB: IsDir=%v Children=%d, want true 1", dir.IsDir, len(dir.Children))
	}
	if dir.Children[0].Name != "NESTED.DAT" {
		t.Errorf("nested name = %q, want NESTED.DAT", dir.Children[0].Name)
	}
}

func TestBuildTreeDetectsNormalizationCollision(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "FILE.TXT"), []byte("a"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, "file.txt"), []byte("b"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	_, err := BuildTree(root)
	if err == nil {
		t.Fatal("expected a collision error, got nil")
	}
}

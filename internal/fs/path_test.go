package fs

import (
	"path/filepath"
	"testing"
)

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "/"},
		{".", "/"},
		{"/", "/"},
		{"a/b", "/a/b"},
		{"/a//b/", "/a/b"},
		{"/a/./b/../c", "/a/c"},
		{"/../a", "/a"},
	}

	for _, tt := range tests {
		if got := NormalizePath(tt.in); got != tt.want {
			t.Errorf("NormalizePath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLogical(t *testing.T) {
	root := filepath.Join("srv", "repo")
	tests := []struct {
		name    string
		want    string
		wantErr bool
	}{
		{filepath.Join(root, "docs", "a.md"), "/docs/a.md", false},
		{root, "/", false},
		{filepath.Join(root, "..", "other"), "", true},
		{filepath.Join(root, "..repo", "x"), "/..repo/x", false},
	}

	for _, tt := range tests {
		got, err := Logical(root, tt.name)
		if (err != nil) != tt.wantErr {
			t.Errorf("Logical(%q) err = %v, wantErr %v", tt.name, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("Logical(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestParentAndBase(t *testing.T) {
	tests := []struct {
		path   string
		parent string
		base   string
	}{
		{"/", "/", "/"},
		{"/a", "/", "a"},
		{"/a/b/c.txt", "/a/b", "c.txt"},
	}

	for _, tt := range tests {
		if got := ParentPath(tt.path); got != tt.parent {
			t.Errorf("ParentPath(%q) = %q, want %q", tt.path, got, tt.parent)
		}
		if got := BaseName(tt.path); got != tt.base {
			t.Errorf("BaseName(%q) = %q, want %q", tt.path, got, tt.base)
		}
	}
	if !IsRoot("") || IsRoot("/a") {
		t.Error("IsRoot misclassified")
	}
}

func TestKeyGen(t *testing.T) {
	k := NewKeyGen("main")
	if got := k.Events(); got != "fs:main:events" {
		t.Errorf("Events() = %q", got)
	}
	if got := k.Queue(); got != "fs:main:watch:queue" {
		t.Errorf("Queue() = %q", got)
	}
}

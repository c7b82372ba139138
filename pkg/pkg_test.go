package pkg

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestName(t *testing.T) {
	expected := "zedup"
	if Name != expected {
		t.Errorf("Expected Name to be %q, got %q", expected, Name)
	}
}

func TestVersion(t *testing.T) {
	// Version is embedded from VERSION file, so it should not be empty.
	buf, err := os.ReadFile("VERSION")
	if err != nil {
		t.Fatalf("Failed to read VERSION file: %v", err)
	}

	if content := strings.TrimSpace(string(buf)); Version != content {
		t.Errorf("Expected Version to be %q, got %q", content, Version)
	}
}

func TestErrorChain(t *testing.T) {
	err := ErrInvalidRecord.Wrapf("pair %d", 2).Wrap(fs.ErrNotExist)

	if !errors.Is(err, ErrInvalidRecord) {
		t.Errorf("expected %v to match ErrInvalidRecord", err)
	}

	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected %v to match fs.ErrNotExist", err)
	}

	if errors.Is(err, ErrInvalidDate) {
		t.Errorf("did not expect %v to match ErrInvalidDate", err)
	}

	if got, want := err.Error(), "invalid record: pair 2: file does not exist"; got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestMakeError_Flattens(t *testing.T) {
	inner := ErrReadInput.Wrap(errors.New("eof"))
	err := MakeError(inner, nil, errors.New("outer"))

	if len(err) != 3 {
		t.Fatalf("expected 3 errors in chain, got %d: %v", len(err), err)
	}

	if MakeError() != nil {
		t.Error("expected nil Error for no arguments")
	}
}

func TestUserDirs(t *testing.T) {
	for name, dir := range map[string]string{
		"config": ConfigDir(),
		"cache":  CacheDir(),
	} {
		if filepath.Base(dir) != Prefix() {
			t.Errorf("%s dir %q does not end in %q", name, dir, Prefix())
		}
	}

	if Prefix() == "" || strings.HasPrefix(Prefix(), ".") {
		t.Errorf("unexpected prefix %q", Prefix())
	}
}

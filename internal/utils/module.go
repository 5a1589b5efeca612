package utils

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"golang.org/x/mod/modfile"
)

// ErrNoModule is returned when no go.mod encloses a directory
var ErrNoModule = errors.New("no enclosing go.mod")

// Module describes the Go module a scanned directory belongs to
type Module struct {
	Root      string
	Path      string
	GoVersion string
}

// FindModule walks up from dir to the nearest go.mod and parses it
func FindModule(dir string) (Module, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return Module{}, err
	}
	for d := abs; ; d = filepath.Dir(d) {
		data, err := os.ReadFile(filepath.Join(d, "go.mod"))
		switch {
		case err == nil:
			return parseModule(d, data)
		case !errors.Is(err, fs.ErrNotExist):
			return Module{}, err
		}
		if filepath.Dir(d) == d {
			return Module{}, fmt.Errorf("%s: %w", dir, ErrNoModule)
		}
	}
}

func parseModule(root string, data []byte) (Module, error) {
	path := filepath.Join(root, "go.mod")
	f, err := modfile.ParseLax(path, data, nil)
	if err != nil {
		return Module{}, err
	}
	if f.Module == nil {
		return Module{}, fmt.Errorf("%s: missing module directive", path)
	}
	m := Module{Root: root, Path: f.Module.Mod.Path}
	if f.Go != nil {
		m.GoVersion = f.Go.Version
	}
	return m, nil
}

package repo

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// DirSource reads report files from folders below a root directory.
type DirSource struct {
	root string
}

// NewDirSource constructs a source rooted at root.
func NewDirSource(root string) (*DirSource, error) {
	if strings.TrimSpace(root) == "" {
		return nil, fmt.Errorf("dir source root not configured")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve root %s: %w", root, err)
	}
	return &DirSource{root: abs}, nil
}

// Fetch reads root/folder/name. Folders are always resolved below the root.
func (s *DirSource) Fetch(ctx context.Context, folder, name string) ([]byte, error) {
	if s == nil {
		return nil, fmt.Errorf("dir source not initialised")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	target, err := s.resolve(folder, name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(target)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", target, ErrReportNotFound)
		}
		return nil, fmt.Errorf("read report %s: %w", target, err)
	}
	return data, nil
}

func (s *DirSource) resolve(folder, name string) (string, error) {
	if name == "" || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("invalid report name %q", name)
	}
	target := filepath.Join(s.root, filepath.FromSlash(strings.TrimLeft(folder, `/\`)), name)
	rel, err := filepath.Rel(s.root, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("folder %q escapes the report root", folder)
	}
	return target, nil
}

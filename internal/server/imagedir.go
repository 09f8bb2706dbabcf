package server

import (
	"errors"
	"path/filepath"
	"strings"
)

var (
	errImageDirDisabled = errors.New("image_dir is not enabled on this server")
	errImageDirOutside  = errors.New("image_dir must be inside the configured image root")
	errImageDirMissing  = errors.New("image_dir not found")
)

// resolveImageDir maps a requested page image directory onto the image root.
// Relative names are taken from the root. The path is checked lexically
// first, so nothing outside the root is ever touched, then again after
// symlinks are resolved.
func resolveImageDir(root, dir string) (string, error) {
	if root == "" {
		return "", errImageDirDisabled
	}
	rootAbs, err := filepath.Abs(root)
	if err != nil {
		return "", errImageDirDisabled
	}

	candidate := dir
	if !filepath.IsAbs(candidate) {
		candidate = filepath.Join(rootAbs, candidate)
	}
	candidate = filepath.Clean(candidate)
	if !within(rootAbs, candidate) {
		return "", errImageDirOutside
	}

	rootReal, err := filepath.EvalSymlinks(rootAbs)
	if err != nil {
		return "", errImageDirDisabled
	}
	real, err := filepath.EvalSymlinks(candidate)
	if err != nil {
		return "", errImageDirMissing
	}
	if !within(rootReal, real) {
		return "", errImageDirOutside
	}
	return real, nil
}

func within(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

package imagetransform

import (
	"path"
	"path/filepath"
	"strings"
)

// resolveOutputPath applies the output configuration to dest:
//
//  1. the date bucket is inserted before the base name
//  2. the root path is prepended when RootRelative is set
//  3. the extension is replaced by ForcedExtension
//
// The result uses the host's path separator.
func resolveOutputPath(cfg OutputConfig, dest string) string {
	p := filepath.ToSlash(dest)

	if cfg.DateBucketing && cfg.DateBucket != "" {
		dir, base := path.Split(p)
		p = dir + strings.Trim(cfg.DateBucket, "/") + "/" + base
	}

	if cfg.RootRelative && cfg.RootPath != "" {
		p = path.Join(filepath.ToSlash(cfg.RootPath), p)
	}

	if cfg.ForcedExtension != "" {
		p = strings.TrimSuffix(p, path.Ext(p)) + "." + cfg.ForcedExtension
	}

	return filepath.Clean(filepath.FromSlash(p))
}

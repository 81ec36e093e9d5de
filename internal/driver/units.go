package driver

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// UnitExt is the extension of resolver trees.
const UnitExt = ".json"

// ListUnits expands paths into a sorted list of unit files. Directories are
// walked recursively for *.json; hidden directories (the cache lives in
// .tuff) are skipped. Explicit file arguments are kept whatever their
// extension.
func ListUnits(paths []string) ([]string, error) {
	var units []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("unit path %q: %w", p, err)
		}
		if !info.IsDir() {
			units = append(units, filepath.Clean(p))
			continue
		}
		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path != p && strings.HasPrefix(d.Name(), ".") {
					return filepath.SkipDir
				}
				return nil
			}
			if strings.HasSuffix(path, UnitExt) {
				units = append(units, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	// Сортируем для детерминированного порядка
	slices.Sort(units)
	return slices.Compact(units), nil
}

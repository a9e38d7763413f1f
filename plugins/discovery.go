package plugins

import (
	"sort"
	"strconv"
	"strings"

	"github.com/kingrea/legion/internal/config"
)

// LoadDir loads YAML and Go definitions from dir, merged in path order. The
// definitions returned by one Go script keep the order the script returned
// them in.
func LoadDir(dir string) ([]DefinitionFile, error) {
	yamlDefs, err := LoadDefinitionDir(dir)
	if err != nil {
		return nil, err
	}
	goDefs, err := LoadGoDefinitionDir(dir)
	if err != nil {
		return nil, err
	}
	defs := append(yamlDefs, goDefs...)
	sort.SliceStable(defs, func(i, j int) bool {
		fi, ni := sourceKey(defs[i].Path)
		fj, nj := sourceKey(defs[j].Path)
		if fi != fj {
			return fi < fj
		}
		return ni < nj
	})
	return defs, nil
}

// sourceKey splits a "<file>#<n>" path into its file and index. Paths without
// a numeric suffix have index 0.
func sourceKey(path string) (string, int) {
	idx := strings.LastIndexByte(path, '#')
	if idx < 0 {
		return path, 0
	}
	n, err := strconv.Atoi(path[idx+1:])
	if err != nil {
		return path, 0
	}
	return path[:idx], n
}

// Discover loads every definition under the project's schedules directory.
func Discover(cfg *config.Config) ([]DefinitionFile, error) {
	if cfg == nil {
		return nil, nil
	}
	return LoadDir(cfg.SchedulesPath())
}

package plugins

import (
	"bytes"
	"fmt"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"
	"gopkg.in/yaml.v3"
)

const goDefinitionFuncName = "ScheduleDefinitions"

// LoadGoDefinitionDir interprets every .go file in dir and collects the
// definitions returned by its ScheduleDefinitions function.
func LoadGoDefinitionDir(dir string) ([]DefinitionFile, error) {
	paths, err := listFiles(dir, func(name string) bool {
		return filepath.Ext(name) == ".go" && !strings.HasSuffix(name, "_test.go")
	})
	if err != nil {
		return nil, err
	}
	var defs []DefinitionFile
	for _, path := range paths {
		fileDefs, err := LoadGoDefinitionFile(path)
		if err != nil {
			return nil, err
		}
		defs = append(defs, fileDefs...)
	}
	return defs, nil
}

// LoadGoDefinitionFile interprets one Go script. The script must declare
//
//	func ScheduleDefinitions() ([]map[string]any, error)
//
// and each returned map is parsed with the YAML schema.
func LoadGoDefinitionFile(path string) ([]DefinitionFile, error) {
	code, err := readRegularFile(path)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(code)) == 0 {
		return nil, fmt.Errorf("plugin: %s is empty", path)
	}
	i := interp.New(interp.Options{})
	if err := i.Use(stdlib.Symbols); err != nil {
		return nil, fmt.Errorf("plugin: load stdlib symbols: %w", err)
	}
	if _, err := i.EvalPath(path); err != nil {
		return nil, fmt.Errorf("plugin: interpret %s: %w", path, err)
	}
	fnValue, err := i.Eval(goDefinitionFuncName)
	if err != nil {
		return nil, fmt.Errorf("plugin: %s must define %s() ([]map[string]any, error): %w", path, goDefinitionFuncName, err)
	}
	raw, err := callDefinitionFunc(fnValue)
	if err != nil {
		return nil, fmt.Errorf("plugin: %s: %w", path, err)
	}
	clean := filepath.Clean(path)
	files := make([]DefinitionFile, 0, len(raw))
	for idx, m := range raw {
		payload, err := yaml.Marshal(m)
		if err != nil {
			return nil, fmt.Errorf("plugin: %s definition[%d]: %w", path, idx, err)
		}
		def, err := ParseDefinitionYAML(payload)
		if err != nil {
			return nil, fmt.Errorf("plugin: %s definition[%d]: %w", path, idx, err)
		}
		files = append(files, DefinitionFile{Definition: def, Path: fmt.Sprintf("%s#%d", clean, idx+1)})
	}
	return files, nil
}

func callDefinitionFunc(fn reflect.Value) ([]map[string]any, error) {
	if !fn.IsValid() || fn.Kind() != reflect.Func {
		return nil, fmt.Errorf("%s is not a function", goDefinitionFuncName)
	}
	if fn.Type().NumIn() != 0 {
		return nil, fmt.Errorf("%s must take no arguments", goDefinitionFuncName)
	}
	results := fn.Call(nil)
	if len(results) == 0 || len(results) > 2 {
		return nil, fmt.Errorf("%s must return ([]map[string]any[, error])", goDefinitionFuncName)
	}
	if len(results) == 2 && !results[1].IsNil() {
		if e, ok := results[1].Interface().(error); ok {
			return nil, e
		}
		return nil, fmt.Errorf("%s returned non-error second value", goDefinitionFuncName)
	}
	out := results[0]
	if defs, ok := out.Interface().([]map[string]any); ok {
		return defs, nil
	}
	if out.Kind() != reflect.Slice {
		return nil, fmt.Errorf("%s must return []map[string]any", goDefinitionFuncName)
	}
	defs := make([]map[string]any, out.Len())
	for i := range defs {
		m, ok := out.Index(i).Interface().(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%s()[%d] is not map[string]any", goDefinitionFuncName, i)
		}
		defs[i] = m
	}
	return defs, nil
}

// Package yaml loads spyder settings from layered YAML files.
//
// Layers are applied in order, later layers winning: the embedded defaults,
// spyder.yml in the working directory if present, then the file given with
// --settings (or a directory containing spyder.yml). Layers are deep merged
// key by key, so a file only needs the keys it changes.
package yaml

import (
	"bytes"
	_ "embed"
	"errors"
	"io"
	"os"
	"path/filepath"

	"dario.cat/mergo"
	"github.com/fwojciec/spyder"
	"gopkg.in/yaml.v3"
)

// FileName is the settings file looked up in directories.
const FileName = "spyder.yml"

//go:embed defaults.yml
var defaults []byte

// Defaults returns the built-in settings.
func Defaults() (*spyder.Config, error) {
	return decode(defaults)
}

// LoadConfig returns the validated settings for a run. dir is searched for
// spyder.yml; settings, if not empty, names a file or a directory containing
// spyder.yml and must exist.
func LoadConfig(dir, settings string) (*spyder.Config, error) {
	merged, err := parse(defaults, "defaults")
	if err != nil {
		return nil, err
	}

	layers := make([]string, 0, 2)
	if dir != "" {
		local := filepath.Join(dir, FileName)
		if _, err := os.Stat(local); err == nil {
			layers = append(layers, local)
		}
	}
	if settings != "" {
		path, err := resolve(settings)
		if err != nil {
			return nil, err
		}
		layers = append(layers, path)
	}

	for _, path := range layers {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, spyder.WrapError(spyder.ECONFIG, err, "read settings %s", path)
		}
		layer, err := parse(data, path)
		if err != nil {
			return nil, err
		}
		if err := mergo.Merge(&merged, layer, mergo.WithOverride); err != nil {
			return nil, spyder.WrapError(spyder.ECONFIG, err, "merge settings %s", path)
		}
	}

	data, err := yaml.Marshal(merged)
	if err != nil {
		return nil, spyder.WrapError(spyder.EINTERNAL, err, "encode merged settings")
	}
	cfg, err := decode(data)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// resolve returns the settings file named by path, which may be a directory.
func resolve(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", spyder.WrapError(spyder.ECONFIG, err, "settings %s", path)
	}
	if !info.IsDir() {
		return path, nil
	}
	file := filepath.Join(path, FileName)
	if _, err := os.Stat(file); err != nil {
		return "", spyder.WrapError(spyder.ECONFIG, err, "settings directory %s has no %s", path, FileName)
	}
	return file, nil
}

// parse reads one layer into a generic map. An empty file is an empty layer.
func parse(data []byte, name string) (map[string]any, error) {
	layer := map[string]any{}
	if err := yaml.Unmarshal(data, &layer); err != nil {
		return nil, spyder.WrapError(spyder.ECONFIG, err, "parse settings %s", name)
	}
	return layer, nil
}

// decode converts merged settings into a Config, rejecting unknown keys.
func decode(data []byte) (*spyder.Config, error) {
	var cfg spyder.Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, spyder.WrapError(spyder.ECONFIG, err, "decode settings")
	}
	return &cfg, nil
}

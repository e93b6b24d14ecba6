// Copyright Antimetal, Inc. All rights reserved.
//
// Use of this source code is governed by a source available license that can be found in the
// LICENSE file or at:
// https://polyformproject.org/wp-content/uploads/2020/06/PolyForm-Shield-1.0.0.txt

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-logr/logr"
	"gopkg.in/yaml.v3"
)

var ErrUnsupportedFormat = errors.New("unsupported config file extension")

// LoadFile reads a profiler config file. JSON is accepted as a subset of YAML.
func LoadFile(path string, logger logr.Logger) (File, error) {
	logger = logger.WithName("config.loader.fs")

	if !isConfigFile(path) {
		return File{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("failed to read config file: %w", err)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return File{}, fmt.Errorf("config file is empty")
	}

	f, err := Decode(bytes.NewReader(data))
	if err != nil {
		return File{}, fmt.Errorf("failed to load %s: %w", path, err)
	}

	logger.V(1).Info("loaded config file",
		"path", path,
		"hardwareProfile", f.HardwareProfile,
		"profiles", len(f.Profiles))
	return f, nil
}

// Decode reads one YAML document. Unknown keys are rejected.
func Decode(r io.Reader) (File, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && err != io.EOF {
		return File{}, fmt.Errorf("failed to unmarshal YAML: %w", err)
	}
	return f, nil
}

func isConfigFile(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return ext == ".json" || ext == ".yaml" || ext == ".yml"
}

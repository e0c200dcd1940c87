// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package persist writes human-readable dumps of the Root Coordinator's
// state for operator inspection. Nothing here is load-bearing: the
// Coordinator never reads these files back.
package persist

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/wandsdn/helix/internal/errors"
	"github.com/wandsdn/helix/internal/rootcoord"
)

// File names matching the four dumps the original controller wrote, now
// holding YAML instead of Python's pprint text.
const (
	OldSendFile = "old_send.yaml"
	PathsFile   = "paths.yaml"
	TopoFile    = "topo.yaml"
	GraphFile   = "graph.yaml"
)

// WriteState writes all four dumps of snap into dir, overwriting anything
// already there. Each file is written independently so a failure on one
// doesn't stop the others from being attempted; the first error is
// returned, wrapped with the path of the file that failed.
func WriteState(dir string, snap rootcoord.Snapshot) error {
	writes := []struct {
		file string
		data any
	}{
		{OldSendFile, snap.OldSend},
		{PathsFile, snap.OldPaths},
		{TopoFile, snap.Domains},
		{GraphFile, snap.Graph},
	}

	var firstErr error
	for _, w := range writes {
		if err := writeYAML(filepath.Join(dir, w.file), w.data); err != nil {
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func writeYAML(path string, v any) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return errors.Wrapf(err, errors.KindInternal, "persist: marshal %s", path)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return errors.Wrapf(err, errors.KindInternal, "persist: write %s", tmp)
	}
	if err := os.Rename(tmp, path); err != nil {
		return errors.Wrapf(err, errors.KindInternal, "persist: rename %s to %s", tmp, path)
	}
	return nil
}

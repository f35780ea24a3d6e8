// Package playbook loads declarative troubleshooting procedures from
// TOML, selects candidates for a case, and drives the per-case step
// state machine.
package playbook

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/NofaBC/TechSupport-AI/pkg/domain/model"
	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
)

// LoadFile parses and validates a single playbook definition
func LoadFile(path string) (*model.Playbook, []string, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to read playbook file", goerr.V("path", path))
	}

	var p model.Playbook
	if err := toml.Unmarshal(data, &p); err != nil {
		return nil, nil, goerr.Wrap(err, "failed to parse playbook TOML", goerr.V("path", path))
	}

	warnings, err := p.Validate()
	if err != nil {
		return nil, nil, goerr.Wrap(err, "playbook validation failed", goerr.V("path", path))
	}

	prefixed := make([]string, 0, len(warnings))
	for _, w := range warnings {
		prefixed = append(prefixed, fmt.Sprintf("%s: %s", filepath.Base(path), w))
	}
	return &p, prefixed, nil
}

// LoadDir loads every .toml file in the directory. A malformed
// definition fails the whole load; warnings accumulate across files.
func LoadDir(dir string) ([]*model.Playbook, []string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to read playbook directory", goerr.V("dir", dir))
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".toml") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	var playbooks []*model.Playbook
	var warnings []string
	seen := make(map[string]string)
	for _, name := range names {
		p, w, err := LoadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, nil, err
		}
		if prev, ok := seen[p.Metadata.ID]; ok {
			return nil, nil, goerr.Wrap(model.ErrPlaybookInvalid, "duplicate playbook id across files",
				goerr.V("playbook_id", p.Metadata.ID),
				goerr.V("file", name),
				goerr.V("previous_file", prev))
		}
		seen[p.Metadata.ID] = name
		playbooks = append(playbooks, p)
		warnings = append(warnings, w...)
	}
	return playbooks, warnings, nil
}

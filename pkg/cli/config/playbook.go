package config

import (
	"github.com/urfave/cli/v3"

	"github.com/NofaBC/TechSupport-AI/pkg/domain/model"
	"github.com/NofaBC/TechSupport-AI/pkg/service/playbook"
	"github.com/NofaBC/TechSupport-AI/pkg/utils/logging"
)

// Playbook holds CLI flags for playbook loading
type Playbook struct {
	dir string
}

// Flags returns CLI flags for playbook configuration
func (p *Playbook) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "playbook-dir",
			Usage:       "Directory containing playbook TOML files",
			Sources:     cli.EnvVars("TECHSUPPORT_PLAYBOOK_DIR"),
			Destination: &p.dir,
		},
	}
}

// Dir returns the configured playbook directory
func (p *Playbook) Dir() string {
	return p.dir
}

// Configure loads all playbooks from the configured directory into a
// registry. No directory yields an empty registry; the agents then run
// without scripted troubleshooting.
func (p *Playbook) Configure() (*model.PlaybookRegistry, error) {
	registry := model.NewPlaybookRegistry()
	if p.dir == "" {
		logging.Default().Info("No playbook directory configured, playbooks disabled")
		return registry, nil
	}

	playbooks, warnings, err := playbook.LoadDir(p.dir)
	if err != nil {
		return nil, err
	}
	for _, w := range warnings {
		logging.Default().Warn("playbook warning", "warning", w)
	}

	registry.Replace(playbooks)
	logging.Default().Info("Playbooks loaded", "dir", p.dir, "count", registry.Len())
	return registry, nil
}

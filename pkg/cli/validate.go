package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/NofaBC/TechSupport-AI/pkg/service/playbook"
)

func cmdValidate() *cli.Command {
	var dir string

	return &cli.Command{
		Name:    "validate",
		Aliases: []string{"v"},
		Usage:   "Validate playbook definitions",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "playbook-dir",
				Usage:       "Directory containing playbook TOML files",
				Required:    true,
				Sources:     cli.EnvVars("TECHSUPPORT_PLAYBOOK_DIR"),
				Destination: &dir,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			entries, err := os.ReadDir(dir)
			if err != nil {
				return goerr.Wrap(err, "failed to read playbook directory", goerr.V("dir", dir))
			}

			var files []string
			for _, e := range entries {
				if !e.IsDir() && strings.HasSuffix(e.Name(), ".toml") {
					files = append(files, e.Name())
				}
			}
			sort.Strings(files)

			if len(files) == 0 {
				color.Yellow("no playbook files found in %s", dir)
				return nil
			}

			failed := 0
			for _, name := range files {
				pb, warnings, err := playbook.LoadFile(filepath.Join(dir, name))
				if err != nil {
					failed++
					color.Red("FAIL  %s", name)
					fmt.Printf("      %s\n", err.Error())
					continue
				}

				if len(warnings) > 0 {
					color.Yellow("WARN  %s (%s, %d steps)", name, pb.Metadata.ID, len(pb.Steps))
					for _, w := range warnings {
						fmt.Printf("      %s\n", w)
					}
				} else {
					color.Green("OK    %s (%s, %d steps)", name, pb.Metadata.ID, len(pb.Steps))
				}
			}

			if failed > 0 {
				return goerr.New("playbook validation failed",
					goerr.V("failed", failed), goerr.V("total", len(files)))
			}

			color.Green("%d playbook(s) validated", len(files))
			return nil
		},
	}
}

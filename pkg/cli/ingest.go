package cli

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/NofaBC/TechSupport-AI/pkg/cli/config"
	"github.com/NofaBC/TechSupport-AI/pkg/usecase"
	"github.com/NofaBC/TechSupport-AI/pkg/utils/logging"
)

func cmdIngest() *cli.Command {
	var tenantID string
	var kbID string
	var product string
	var language string
	var geminiCfg config.Gemini
	var repoCfg config.Repository

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "tenant-id",
			Usage:       "Tenant to ingest the documents into",
			Required:    true,
			Sources:     cli.EnvVars("TECHSUPPORT_TENANT_ID"),
			Destination: &tenantID,
		},
		&cli.StringFlag{
			Name:        "kb-id",
			Usage:       "Knowledge base the documents belong to",
			Required:    true,
			Sources:     cli.EnvVars("TECHSUPPORT_KB_ID"),
			Destination: &kbID,
		},
		&cli.StringFlag{
			Name:        "product",
			Usage:       "Product the documents describe",
			Destination: &product,
		},
		&cli.StringFlag{
			Name:        "language",
			Usage:       "Language of the documents",
			Destination: &language,
		},
	}
	flags = append(flags, geminiCfg.Flags()...)
	flags = append(flags, repoCfg.Flags()...)

	return &cli.Command{
		Name:      "ingest",
		Aliases:   []string{"i"},
		Usage:     "Ingest documentation files into a tenant knowledge base",
		ArgsUsage: "<file> [<file>...]",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			files := c.Args().Slice()
			if len(files) == 0 {
				return goerr.New("at least one file is required")
			}

			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logging.Default().Error("failed to close repository", "error", err.Error())
				}
			}()

			llm, err := geminiCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to configure LLM client")
			}

			uc, err := usecase.New(repo, llm)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize use cases")
			}

			logger := logging.Default()
			total := 0
			for _, path := range files {
				data, err := os.ReadFile(filepath.Clean(path))
				if err != nil {
					return goerr.Wrap(err, "failed to read document", goerr.V("path", path))
				}

				docID := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
				count, err := uc.Ingest.IngestDocument(ctx, tenantID, usecase.Document{
					KBID:     kbID,
					DocID:    docID,
					Product:  product,
					Language: language,
					Text:     string(data),
				}, func(done, totalChunks int) {
					logger.Info("embedding progress", "doc_id", docID, "done", done, "total", totalChunks)
				})
				if err != nil {
					return goerr.Wrap(err, "failed to ingest document", goerr.V("path", path))
				}
				total += count
			}

			logger.Info("Ingestion completed", "files", len(files), "chunks", total)
			return nil
		},
	}
}

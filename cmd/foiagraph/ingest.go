package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/openfoia/foiagraph/internal/core"
	"github.com/openfoia/foiagraph/internal/core/model"
	"github.com/openfoia/foiagraph/internal/ingest"
	"github.com/openfoia/foiagraph/internal/server"
)

var (
	docContext string
	imageDir   string
	saveGraph  bool
	outPath    string
)

func init() {
	ingestCmd.Flags().StringVar(&docContext, "context", "", "description passed to the extraction backend")
	ingestCmd.Flags().StringVar(&imageDir, "image-dir", "", "directory of rendered page images for visual redaction counting (single file only)")
	ingestCmd.Flags().BoolVar(&saveGraph, "save", false, "write the graph to Memgraph after processing")
	ingestCmd.Flags().StringVarP(&outPath, "out", "o", "-", "where to write the graph export JSON")
}

// ingestCmd processes files into the graph
var ingestCmd = &cobra.Command{
	Use:   "ingest <file>...",
	Short: "Process PDF or text files and print the linked graph",
	Long: `Process PDF or plain-text files and print the resulting entity graph.

Files are analysed concurrently and linked in the order given.

Examples:
  foiagraph ingest release-001.pdf release-002.pdf

  # Persist to Memgraph (MEMGRAPH_URI must be set)
  foiagraph ingest --save --out graph.json response.txt`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func runIngest(cmd *cobra.Command, args []string) error {
	if imageDir != "" && len(args) > 1 {
		return errors.New("--image-dir applies to a single file")
	}

	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx := cmd.Context()
	p, cleanup, err := server.BuildPipeline(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	docs := make([]model.Document, 0, len(args))
	for _, path := range args {
		doc, err := ingest.LoadFile(ctx, path, logger)
		if err != nil {
			return fmt.Errorf("failed to load %s: %w", path, err)
		}
		doc.Context = docContext
		doc.ImageDir = imageDir
		docs = append(docs, doc)
	}

	results, batchErr := p.ProcessBatch(ctx, docs)
	for _, res := range results {
		if res == nil {
			continue
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "%s: %d entities, %d links, %d exemption citations\n",
			res.Record.ID, len(res.Record.Mentions), len(res.Links), res.Record.Redaction.TotalExemptionCitations)
	}
	if batchErr != nil {
		logger.Warn("Some documents failed", zap.Error(batchErr))
	}

	if saveGraph {
		if err := p.SaveGraph(ctx); err != nil {
			if errors.Is(err, core.ErrNoGraphStore) {
				return errors.New("--save needs MEMGRAPH_URI or [memgraph] uri")
			}
			return err
		}
	}

	if err := writeJSON(cmd.OutOrStdout(), outPath, p.ExportGraph()); err != nil {
		return err
	}
	return batchErr
}

func writeJSON(stdout io.Writer, path string, v any) error {
	w := stdout
	if path != "-" && path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", path, err)
		}
		defer f.Close()
		w = f
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/lexigo/deepl-go"
	log "github.com/lexigo/deepl-go/internal/logging"
)

var (
	docSourceLang string
	docTargetLang string
	docFormality  string
	docGlossaryID string
	docOutputDir  string
	docParallel   int
)

var documentCmd = &cobra.Command{
	Use:   "document [files...]",
	Short: "Translate documents",
	Long: `Upload documents for translation and download the results.

Each file is uploaded, polled until translation completes, and written to
the output directory under its original name. Multiple files are
translated concurrently.`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		client, err := newClient()
		if err != nil {
			log.Fatalf("%v", err)
		}
		if err := os.MkdirAll(docOutputDir, 0o755); err != nil {
			log.Fatalf("create output directory: %v", err)
		}

		opts := &deepl.DocumentTranslateOptions{
			Formality:  deepl.Formality(docFormality),
			GlossaryID: docGlossaryID,
		}

		group, ctx := errgroup.WithContext(cmd.Context())
		group.SetLimit(docParallel)
		for _, inputPath := range args {
			group.Go(func() error {
				outputPath := filepath.Join(docOutputDir, filepath.Base(inputPath))
				if err := client.TranslateDocumentFromFilepath(ctx, inputPath, outputPath,
					docSourceLang, docTargetLang, opts); err != nil {
					return fmt.Errorf("%s: %w", inputPath, err)
				}
				log.Infof("translated %s -> %s", inputPath, outputPath)
				return nil
			})
		}
		if err := group.Wait(); err != nil {
			log.Fatalf("document translation failed: %v", err)
		}
	},
}

func init() {
	documentCmd.Flags().StringVar(&docSourceLang, "from", "", "source language (detected when empty)")
	documentCmd.Flags().StringVar(&docTargetLang, "to", "", "target language")
	documentCmd.Flags().StringVar(&docFormality, "formality", "", "formality: less, more, prefer_less, prefer_more")
	documentCmd.Flags().StringVar(&docGlossaryID, "glossary", "", "glossary ID to apply")
	documentCmd.Flags().StringVarP(&docOutputDir, "out", "o", ".", "output directory for translated documents")
	documentCmd.Flags().IntVar(&docParallel, "parallel", 4, "maximum concurrent document translations")
	documentCmd.MarkFlagRequired("to")
	rootCmd.AddCommand(documentCmd)
}

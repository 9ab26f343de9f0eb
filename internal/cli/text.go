package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lexigo/deepl-go"
	log "github.com/lexigo/deepl-go/internal/logging"
)

var (
	textSourceLang string
	textTargetLang string
	textFormality  string
	textGlossaryID string
	textContext    string
	textShowBilled bool
)

var textCmd = &cobra.Command{
	Use:   "text [texts...]",
	Short: "Translate text",
	Long: `Translate one or more texts into the target language.

Texts are passed as arguments, or read from stdin when no arguments are
given.`,
	Run: func(cmd *cobra.Command, args []string) {
		client, err := newClient()
		if err != nil {
			log.Fatalf("%v", err)
		}

		texts := args
		if len(texts) == 0 {
			data, err := io.ReadAll(os.Stdin)
			if err != nil {
				log.Fatalf("read stdin: %v", err)
			}
			if text := strings.TrimRight(string(data), "\n"); text != "" {
				texts = []string{text}
			}
		}

		opts := &deepl.TranslateTextOptions{
			Formality:  deepl.Formality(textFormality),
			GlossaryID: textGlossaryID,
			Context:    textContext,
		}
		results, err := client.TranslateText(cmd.Context(), texts, textSourceLang, textTargetLang, opts)
		if err != nil {
			log.Fatalf("translation failed: %v", err)
		}
		for _, result := range results {
			fmt.Println(result.Text)
			if textShowBilled {
				fmt.Fprintf(os.Stderr, "detected: %s, billed characters: %d\n",
					result.DetectedSourceLang, result.BilledCharacters)
			}
		}
	},
}

func init() {
	textCmd.Flags().StringVar(&textSourceLang, "from", "", "source language (detected when empty)")
	textCmd.Flags().StringVar(&textTargetLang, "to", "", "target language")
	textCmd.Flags().StringVar(&textFormality, "formality", "", "formality: less, more, prefer_less, prefer_more")
	textCmd.Flags().StringVar(&textGlossaryID, "glossary", "", "glossary ID to apply")
	textCmd.Flags().StringVar(&textContext, "context", "", "additional context for the translation")
	textCmd.Flags().BoolVar(&textShowBilled, "show-billed", false, "print detected language and billed characters")
	textCmd.MarkFlagRequired("to")
	rootCmd.AddCommand(textCmd)
}

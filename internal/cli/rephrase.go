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
	rephraseTargetLang string
	rephraseStyle      string
	rephraseTone       string
)

var rephraseCmd = &cobra.Command{
	Use:   "rephrase [texts...]",
	Short: "Rephrase text to improve its phrasing",
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

		opts := &deepl.RephraseTextOptions{
			Style: deepl.WritingStyle(rephraseStyle),
			Tone:  deepl.WritingTone(rephraseTone),
		}
		results, err := client.RephraseText(cmd.Context(), texts, rephraseTargetLang, opts)
		if err != nil {
			log.Fatalf("rephrase failed: %v", err)
		}
		for _, result := range results {
			fmt.Println(result.Text)
		}
	},
}

func init() {
	rephraseCmd.Flags().StringVar(&rephraseTargetLang, "to", "", "target language variant (defaults to the detected language)")
	rephraseCmd.Flags().StringVar(&rephraseStyle, "style", "", "writing style: academic, business, casual, simple")
	rephraseCmd.Flags().StringVar(&rephraseTone, "tone", "", "tone: confident, diplomatic, enthusiastic, friendly")
	rootCmd.AddCommand(rephraseCmd)
}

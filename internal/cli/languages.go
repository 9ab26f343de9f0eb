package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lexigo/deepl-go"
	log "github.com/lexigo/deepl-go/internal/logging"
)

var (
	languagesTarget   bool
	languagesGlossary bool
)

var languagesCmd = &cobra.Command{
	Use:   "languages",
	Short: "List supported languages",
	Run: func(cmd *cobra.Command, args []string) {
		client, err := newClient()
		if err != nil {
			log.Fatalf("%v", err)
		}
		if languagesGlossary {
			pairs, err := client.GetGlossaryLanguagePairs(cmd.Context())
			if err != nil {
				log.Fatalf("list glossary language pairs: %v", err)
			}
			for _, pair := range pairs {
				fmt.Printf("%s\t%s\n", pair.SourceLang, pair.TargetLang)
			}
			return
		}
		var langs []deepl.Language
		if languagesTarget {
			langs, err = client.TargetLanguages(cmd.Context())
		} else {
			langs, err = client.SourceLanguages(cmd.Context())
		}
		if err != nil {
			log.Fatalf("list languages: %v", err)
		}
		for _, lang := range langs {
			line := fmt.Sprintf("%s\t%s", lang.Code, lang.Name)
			if lang.SupportsFormality != nil && *lang.SupportsFormality {
				line += "\tformality"
			}
			fmt.Println(line)
		}
	},
}

func init() {
	languagesCmd.Flags().BoolVar(&languagesTarget, "target", false, "list target languages instead of source languages")
	languagesCmd.Flags().BoolVar(&languagesGlossary, "glossary", false, "list language pairs supported for glossaries")
	rootCmd.AddCommand(languagesCmd)
}

package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lexigo/deepl-go"
	log "github.com/lexigo/deepl-go/internal/logging"
)

var (
	glossaryName       string
	glossarySourceLang string
	glossaryTargetLang string
)

var glossaryCmd = &cobra.Command{
	Use:   "glossary",
	Short: "Manage glossaries",
}

var glossaryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all glossaries",
	Run: func(cmd *cobra.Command, args []string) {
		client, err := newClient()
		if err != nil {
			log.Fatalf("%v", err)
		}
		glossaries, err := client.ListGlossaries(cmd.Context())
		if err != nil {
			log.Fatalf("list glossaries: %v", err)
		}
		for _, g := range glossaries {
			fmt.Printf("%s\t%s\t%s->%s\t%d entries\n",
				g.GlossaryID, g.Name, g.SourceLang, g.TargetLang, g.EntryCount)
		}
	},
}

var glossaryCreateCmd = &cobra.Command{
	Use:   "create [entries.tsv]",
	Short: "Create a glossary from a TSV file",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		client, err := newClient()
		if err != nil {
			log.Fatalf("%v", err)
		}
		data, err := os.ReadFile(args[0])
		if err != nil {
			log.Fatalf("read entries: %v", err)
		}
		entries, err := deepl.ParseTSVEntries(string(data))
		if err != nil {
			log.Fatalf("parse entries: %v", err)
		}
		info, err := client.CreateGlossary(cmd.Context(), glossaryName,
			glossarySourceLang, glossaryTargetLang, entries)
		if err != nil {
			log.Fatalf("create glossary: %v", err)
		}
		fmt.Println(info.GlossaryID)
	},
}

var glossaryEntriesCmd = &cobra.Command{
	Use:   "entries [glossary-id]",
	Short: "Print the entries of a glossary as TSV",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		client, err := newClient()
		if err != nil {
			log.Fatalf("%v", err)
		}
		entries, err := client.GetGlossaryEntries(cmd.Context(), args[0])
		if err != nil {
			log.Fatalf("get entries: %v", err)
		}
		tsv, err := entries.ToTSV()
		if err != nil {
			log.Fatalf("encode entries: %v", err)
		}
		fmt.Println(tsv)
	},
}

var glossaryDeleteCmd = &cobra.Command{
	Use:   "delete [glossary-id]",
	Short: "Delete a glossary",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		client, err := newClient()
		if err != nil {
			log.Fatalf("%v", err)
		}
		if err := client.DeleteGlossary(cmd.Context(), args[0]); err != nil {
			log.Fatalf("delete glossary: %v", err)
		}
	},
}

func init() {
	glossaryCreateCmd.Flags().StringVar(&glossaryName, "name", "", "glossary name")
	glossaryCreateCmd.Flags().StringVar(&glossarySourceLang, "from", "", "source language")
	glossaryCreateCmd.Flags().StringVar(&glossaryTargetLang, "to", "", "target language")
	glossaryCreateCmd.MarkFlagRequired("name")
	glossaryCreateCmd.MarkFlagRequired("from")
	glossaryCreateCmd.MarkFlagRequired("to")

	glossaryCmd.AddCommand(glossaryListCmd)
	glossaryCmd.AddCommand(glossaryCreateCmd)
	glossaryCmd.AddCommand(glossaryEntriesCmd)
	glossaryCmd.AddCommand(glossaryDeleteCmd)
	rootCmd.AddCommand(glossaryCmd)
}

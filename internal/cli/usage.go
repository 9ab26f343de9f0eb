package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	log "github.com/lexigo/deepl-go/internal/logging"
)

var usageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Show account usage for the current billing period",
	Run: func(cmd *cobra.Command, args []string) {
		client, err := newClient()
		if err != nil {
			log.Fatalf("%v", err)
		}
		usage, err := client.GetUsage(cmd.Context())
		if err != nil {
			log.Fatalf("get usage: %v", err)
		}
		fmt.Println(usage)
		if usage.AnyLimitReached() {
			log.Warnf("usage limit reached")
		}
	},
}

func init() {
	rootCmd.AddCommand(usageCmd)
}

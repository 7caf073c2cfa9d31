// atelier is the operational CLI: serve the API, run queue workers,
// trigger the token sweep, seed data, and inspect routes.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "atelier",
	Short: "Atelier — art marketplace backend",
	Long:  "Atelier is the API backend for the art marketplace: catalog, orders, reviews, and push notifications.",
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(queueWorkCmd)
	rootCmd.AddCommand(tokensCleanupCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(routeListCmd)
}

package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "pasteimg",
		Short: "Clipboard-to-cloud image uploads from the command line",
		Long: `pasteimg drives the paste-and-upload pipeline outside the editor:
validate an image the way the paste handler would, upload it with
bounded retry (directly or through an authenticated relay), and print
the hosted URL.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		uploadCmd(),
		verifyEndpointCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pasteimg/pasteimg-go/internal/security"
)

func verifyEndpointCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify-endpoint <url>",
		Short: "Check that a candidate upload endpoint is a well-formed http(s) URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			normalized, err := security.ValidateEndpoint(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Endpoint verified: %s\n", normalized)
			return nil
		},
	}
}

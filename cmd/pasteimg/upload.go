package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
	"github.com/spf13/cobra"

	"github.com/pasteimg/pasteimg-go/internal/config"
	"github.com/pasteimg/pasteimg-go/internal/domain"
	"github.com/pasteimg/pasteimg-go/internal/paste"
	"github.com/pasteimg/pasteimg-go/internal/upload"
)

func uploadCmd() *cobra.Command {
	var (
		endpoint  string
		relayURL  string
		nonce     string
		bearer    string
		maxSizeMB float64
	)

	cmd := &cobra.Command{
		Use:   "upload <file>",
		Short: "Validate and upload an image, printing the hosted URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			file := domain.PastedFile{
				Name:        filepath.Base(args[0]),
				ContentType: mimetype.Detect(data).String(),
				Data:        data,
			}

			cfg := domain.UploadConfig{
				Endpoint:     endpoint,
				MaxBytes:     int64(maxSizeMB * 1024 * 1024),
				AllowedTypes: []string{"image/jpeg", "image/png", "image/gif", "image/webp", "image/svg+xml"},
			}

			console := &consoleEditor{out: cmd.OutOrStdout()}

			var uploader paste.Uploader
			if relayURL != "" {
				if nonce == "" {
					return fmt.Errorf("--nonce is required with --relay")
				}
				uploader = upload.NewRelay(newHTTPClient(bearer), relayURL, nonce, console)
			} else {
				uploader = upload.NewDirect(nil, cfg.Endpoint, console)
			}

			controller := paste.NewController(uploader, console, console, console, paste.Options{
				Config: cfg,
			})

			ev := &paste.Event{Files: []domain.PastedFile{file}}
			switch controller.HandlePaste(context.Background(), ev) {
			case paste.OutcomeInserted:
				return nil
			case paste.OutcomeIgnored:
				return fmt.Errorf("%s is not an image file", args[0])
			default:
				return fmt.Errorf("upload failed")
			}
		},
	}

	cmd.Flags().StringVar(&endpoint, "endpoint", config.DefaultEndpoint, "Direct upload endpoint")
	cmd.Flags().StringVar(&relayURL, "relay", "", "Relay /upload URL; posts through the authenticated relay instead")
	cmd.Flags().StringVar(&nonce, "nonce", "", "Session nonce for the relay")
	cmd.Flags().StringVar(&bearer, "token", "", "Bearer token for the relay")
	cmd.Flags().Float64Var(&maxSizeMB, "max-size-mb", 2, "Client-side size ceiling in MB")

	return cmd
}

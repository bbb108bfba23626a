package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bookfetch/yes24-metadata/internal/metadata"
	"github.com/bookfetch/yes24-metadata/internal/source"
)

// newCoverCmd creates the 'cover' subcommand.
func newCoverCmd() *cobra.Command {
	var (
		title   string
		authors []string
		isbn    string
		yes24ID string
		out     string
	)

	cmd := &cobra.Command{
		Use:   "cover",
		Short: "Download a cover image",
		Long: `Resolves the full-size cover image for a book, running a metadata
lookup first when needed, and writes it to the output file.`,

		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := resolveRuntime(cmd.Context())
			if err != nil {
				return err
			}

			req := source.Request{
				Title:       title,
				Authors:     authors,
				Identifiers: map[string]string{},
			}
			if isbn != "" {
				req.Identifiers[metadata.IDISBN] = isbn
			}
			if yes24ID != "" {
				req.Identifiers[metadata.IDYes24] = yes24ID
			}

			data, err := rt.Source.DownloadCover(cmd.Context(), req)
			if err != nil {
				return fmt.Errorf("download cover: %w", err)
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return fmt.Errorf("write cover: %w", err)
			}
			rt.Logger.Info("cover written", zap.String("path", out), zap.Int("bytes", len(data)))
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "book title")
	cmd.Flags().StringSliceVar(&authors, "author", nil, "author (repeatable)")
	cmd.Flags().StringVar(&isbn, "isbn", "", "ISBN-10 or ISBN-13")
	cmd.Flags().StringVar(&yes24ID, "yes24", "", "YES24 goods id")
	cmd.Flags().StringVar(&out, "out", "cover.jpg", "output file path")

	return cmd
}

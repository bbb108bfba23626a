package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bookfetch/yes24-metadata/internal/metadata"
	"github.com/bookfetch/yes24-metadata/internal/source"
)

// newIdentifyCmd creates the 'identify' subcommand.
func newIdentifyCmd() *cobra.Command {
	var (
		title   string
		authors []string
		isbn    string
		yes24ID string
	)

	cmd := &cobra.Command{
		Use:   "identify",
		Short: "Look up bibliographic records",
		Long: `Runs a metadata lookup for the given hints and prints the matched
records as JSON, best match first.`,

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

			recs, err := rt.Source.Identify(cmd.Context(), req)
			if err != nil {
				return fmt.Errorf("identify: %w", err)
			}
			rt.Logger.Info("identify finished", zap.Int("records", len(recs)))
			if recs == nil {
				recs = []*metadata.Record{}
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(recs); err != nil {
				return fmt.Errorf("encode records: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "book title")
	cmd.Flags().StringSliceVar(&authors, "author", nil, "author (repeatable)")
	cmd.Flags().StringVar(&isbn, "isbn", "", "ISBN-10 or ISBN-13")
	cmd.Flags().StringVar(&yes24ID, "yes24", "", "YES24 goods id")

	return cmd
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newExportCommand(a *app) *cobra.Command {
	var (
		kind  string
		limit int
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Upload captures to the S3 archive",
		Long: `Upload captures from the capture store to the bucket configured in the
archive section. Objects are written as <key_prefix><kind>/<id>.bin with the
capture metadata stored as object metadata.

Uploading stops at the first failure.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := parseListOptions(kind, limit)
			if err != nil {
				return err
			}

			rt, err := a.runtime(cmd.Context())
			if err != nil {
				return err
			}
			if rt.Exporter == nil {
				return fmt.Errorf("archive is disabled (set archive.enabled: true)")
			}

			n, err := rt.Exporter.ExportAll(cmd.Context(), rt.Store, opts)
			fmt.Fprintf(cmd.OutOrStdout(), "exported %d captures\n", n)
			return err
		},
	}

	cmd.Flags().StringVarP(&kind, "kind", "k", "", "Only export captures of this kind")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum number of captures, newest first (0 = all)")
	return cmd
}

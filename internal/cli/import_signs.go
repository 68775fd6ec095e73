package cli

import (
	"fmt"
	"log"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/spf13/cobra"

	"signs-study-service/internal/config"
	"signs-study-service/internal/importer"
	"signs-study-service/internal/infra/postgres"
)

// NewImportSignsCmd loads signs from a spreadsheet or CSV into Postgres.
func NewImportSignsCmd(configPath *string) *cobra.Command {
	var (
		sheet    string
		startRow int
	)
	cmd := &cobra.Command{
		Use:   "import-signs <file.xlsx|file.csv>",
		Short: "Import road signs (category, title, description, image URL) into the catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if err := runMigrationsWithConfig(ctx, cfg); err != nil {
				return err
			}
			pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
			if err != nil {
				return err
			}
			defer pool.Close()

			icfg := importer.DefaultConfig(args[0])
			icfg.SheetName = sheet
			icfg.StartRow = startRow
			res, err := importer.Import(ctx, icfg, postgres.NewSignWriter(pool))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "processed %d rows: %d created, %d updated, %d skipped\n",
				res.TotalProcessed, res.Created, res.Updated, res.Skipped)
			for _, e := range res.Errors {
				fmt.Fprintln(out, "  "+e)
			}

			if res.Created+res.Updated == 0 {
				return nil
			}
			cleared, err := invalidateCatalogCache(ctx, cfg)
			if err != nil {
				log.Printf("clear cached catalog: %v", err)
				return nil
			}
			if cleared {
				fmt.Fprintln(out, "cached catalog cleared")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&sheet, "sheet", "Sheet1", "worksheet to read (xlsx only)")
	cmd.Flags().IntVar(&startRow, "start-row", 2, "first data row, 1-based")
	return cmd
}

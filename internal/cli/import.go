package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sharktrack/sharktrack-backend-go/internal/service"
)

type importOptions struct {
	Input   string
	Dataset string
}

func newImportCommand(a *app) *cobra.Command {
	opts := &importOptions{}

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Store a GeoJSON feature collection as a named dataset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.Dataset == "" {
				opts.Dataset = a.cfg.Source.Dataset
			}
			return a.importDataset(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.Input, "input", "i", "", "GeoJSON feature collection file")
	f.StringVarP(&opts.Dataset, "dataset", "d", "", "dataset name (default: source.dataset)")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

func (a *app) importDataset(cmd *cobra.Command, opts *importOptions) error {
	data, err := os.ReadFile(opts.Input)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", opts.Input, err)
	}

	repo, closeDB, err := a.openRepository(cmd.Context())
	if err != nil {
		return err
	}
	defer closeDB()

	svc, err := service.NewDatasetService(repo, a.pipeline, a.logger)
	if err != nil {
		return err
	}

	result, err := svc.Import(cmd.Context(), opts.Dataset, data)
	if err != nil {
		return err
	}
	return json.NewEncoder(cmd.OutOrStdout()).Encode(result)
}

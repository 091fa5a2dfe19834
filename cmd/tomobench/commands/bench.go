package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/tomobench/internal/app"
	"go.trai.ch/tomobench/internal/core/domain"
	"go.trai.ch/tomobench/internal/ui/report"
)

func (c *CLI) newBenchCmd(backend domain.Backend, short string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   backend.String(),
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			width, _ := cmd.Flags().GetInt("width")
			projections, _ := cmd.Flags().GetInt("num-projections")
			slices, _ := cmd.Flags().GetInt("num-slices")
			asJSON, _ := cmd.Flags().GetBool("json")

			opts := app.BenchOptions{
				Backend: backend,
				Geometry: domain.Geometry{
					Width:          width,
					NumProjections: projections,
					NumSlices:      slices,
				},
			}
			if cmd.Flags().Changed("center") {
				center, _ := cmd.Flags().GetFloat64("center")
				opts.Center = &center
			}
			if backend.UsesOperatorCache() {
				opts.Prepare, _ = cmd.Flags().GetBool("prepare")
			}
			if backend == domain.BackendTomopy {
				algorithm, _ := cmd.Flags().GetString("algorithm")
				opts.Algorithm = domain.Algorithm(algorithm)
			}

			rep, err := c.app.Bench(cmd.Context(), globalOptions(cmd), opts)
			if err != nil {
				return err
			}

			if asJSON {
				return report.JSON(cmd.OutOrStdout(), rep)
			}
			return report.Bench(cmd.OutOrStdout(), rep)
		},
	}

	cmd.Flags().Int("width", 0, "Detector width in pixels")
	cmd.Flags().Int("num-projections", 0, "Number of projection angles")
	cmd.Flags().Int("num-slices", 0, "Number of sinogram slices")
	_ = cmd.MarkFlagRequired("width")
	_ = cmd.MarkFlagRequired("num-projections")
	_ = cmd.MarkFlagRequired("num-slices")

	cmd.Flags().Float64("center", 0, "Rotation center (defaults to the backend's offset from width/2)")
	cmd.Flags().Bool("json", false, "Print the report as JSON")

	if backend.UsesOperatorCache() {
		cmd.Flags().Bool("prepare", false, "Precompute and publish operators instead of reconstructing")
	}
	if backend == domain.BackendTomopy {
		cmd.Flags().String("algorithm", "", "Reconstruction algorithm: gridrec or fbp")
		_ = cmd.MarkFlagRequired("algorithm")
	}

	return cmd
}

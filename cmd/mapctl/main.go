package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	var dbPath string

	rootCmd := &cobra.Command{
		Use:   "mapctl",
		Short: "Operator tool for the YatraMap layout database",
	}
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", envOr("YATRA_DB_PATH", "data/yatra.db"), "SQLite database path")

	rootCmd.AddCommand(seedCmd(&dbPath))
	rootCmd.AddCommand(boundsCmd(&dbPath))
	rootCmd.AddCommand(renderCmd(&dbPath))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func seedCmd(dbPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "seed [layout.yaml]",
		Short: "Insert stalls, roads and welcome popups from a YAML layout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd.Context(), *dbPath, args[0])
		},
	}
}

func boundsCmd(dbPath *string) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "bounds",
		Short: "Print the padded content bounds of the stored layout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBounds(cmd.Context(), cmd.OutOrStdout(), *dbPath, !all)
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "include inactive stalls")
	return cmd
}

func renderCmd(dbPath *string) *cobra.Command {
	var (
		width  float64
		height float64
		out    string
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the public map as SVG fitted to the given size",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRender(cmd.Context(), cmd.OutOrStdout(), *dbPath, width, height, out)
		},
	}

	cmd.Flags().Float64Var(&width, "width", 800, "container width in pixels")
	cmd.Flags().Float64Var(&height, "height", 600, "container height in pixels")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (stdout when empty)")
	return cmd
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

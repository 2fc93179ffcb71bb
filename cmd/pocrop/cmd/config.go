package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/MeKo-Tech/pocrop/internal/config"
	"github.com/spf13/cobra"
)

func newConfigCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or create the configuration",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the resolved configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := a.cfg.YAML()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if used := a.loader.GetConfigFileUsed(); used != "" {
				fmt.Fprintf(out, "# loaded from %s\n", used)
			}
			_, err = out.Write(data)
			return err
		},
	}

	initCmd := &cobra.Command{
		Use:   "init [FILE]",
		Short: "Write a default configuration file",
		Long: fmt.Sprintf(`Write the default configuration to FILE (default ./%s.yaml).

Configuration files are searched in:
  %s`, config.ConfigFileName, strings.Join(config.GetConfigSearchPaths(), "\n  ")),
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filename := config.ConfigFileName + ".yaml"
			if len(args) == 1 {
				filename = args[0]
			}
			force, _ := cmd.Flags().GetBool("force")
			if err := config.GenerateDefaultConfigFile(filename, force); err != nil {
				return err
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", filepath.Clean(filename))
			return err
		},
	}
	initCmd.Flags().Bool("force", false, "overwrite an existing file")

	cmd.AddCommand(show, initCmd)
	return cmd
}

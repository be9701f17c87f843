package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/netsmith/pkg/config"
)

func (c *CLI) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the effective configuration",
	}
	cmd.AddCommand(c.configShowCommand())
	cmd.AddCommand(c.configPathCommand())
	return cmd
}

func (c *CLI) configShowCommand() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the configuration after defaults and flags are applied",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return config.Write(os.Stdout, c.cfg, config.Format(format))
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", string(config.TOML), "output format: toml or yaml")
	return cmd
}

func (c *CLI) configPathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print which config file is in use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if c.cfgPath == "" {
				printKeyValue("config", StyleDim.Render("defaults (no file at "+config.DefaultPath()+")"))
				return nil
			}
			printKeyValue("config", c.cfgPath)
			return nil
		},
	}
}

package cli

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/netsmith/pkg/buildinfo"
	"github.com/matzehuels/netsmith/pkg/config"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configFlag string
	applURL    string
	resource   int

	cfg     config.Config
	cfgPath string // empty when running on defaults
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level), cfg: config.Default()}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "netsmith",
		Short:        "Netsmith places virtual routers on an appliance canvas",
		Long:         `Netsmith lays out virtual routers and their connections on the canvas of a traffic-generation appliance, keeping new objects clear of what is already there.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.loadConfig(cmd)
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	pf := root.PersistentFlags()
	pf.StringVar(&c.configFlag, "config", "", "config file (.toml, .yaml); defaults to $"+config.EnvConfig+" or "+config.DefaultPath())
	pf.StringVar(&c.applURL, "appliance", "", "appliance base URL (overrides config)")
	pf.IntVarP(&c.resource, "resource", "r", 0, "resource to operate on (overrides config default_resource)")

	root.AddCommand(c.routersCommand())
	root.AddCommand(c.portsCommand())
	root.AddCommand(c.areaCommand())
	root.AddCommand(c.nextCommand())
	root.AddCommand(c.createCommand())
	root.AddCommand(c.removeCommand())
	root.AddCommand(c.moveCommand())
	root.AddCommand(c.connectCommand())
	root.AddCommand(c.linkCommand())
	root.AddCommand(c.rddCommand())
	root.AddCommand(c.refreshCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.watchCommand())
	root.AddCommand(c.fakeApplianceCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig resolves the config file and applies flag overrides.
func (c *CLI) loadConfig(cmd *cobra.Command) error {
	cfg, path, err := config.LoadResolved(c.configFlag)
	if err != nil {
		return err
	}
	if c.applURL != "" {
		cfg.Appliance.URL = c.applURL
	}
	if c.resource != 0 {
		cfg.DefaultResource = c.resource
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	c.cfg, c.cfgPath = cfg, path

	installHooks(c.Logger)
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(withLogger(ctx, c.Logger))
	if path != "" {
		c.Logger.Debug("loaded config", "path", path)
	}
	return nil
}

package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/matzehuels/netsmith/pkg/errors"
	"github.com/matzehuels/netsmith/pkg/orchestrator"
)

// mutate runs fn against a fully wired app and releases its backends.
func (c *CLI) mutate(ctx context.Context, fn func(*app) error) (err error) {
	a, err := c.newApp()
	if err != nil {
		return err
	}
	if err := a.withOrchestrator(ctx, c); err != nil {
		return err
	}
	defer func() {
		if cerr := a.close(context.WithoutCancel(ctx)); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return fn(a)
}

// reportSync warns when the appliance applied a change the cache could not
// catch up with. The error is still returned.
func reportSync(err error) error {
	if errors.Is(err, errors.ErrCodeCacheSync) {
		printWarning("applied on the appliance, but the local view is stale: %s", errors.UserMessage(err))
	}
	return err
}

func (c *CLI) createCommand() *cobra.Command {
	var below bool
	cmd := &cobra.Command{
		Use:   "create <router>...",
		Short: "Create virtual routers on the canvas frontier",
		Long: `Create virtual routers on the canvas frontier.

Names may be bare ("vr1", uses --resource), resource-qualified ("2.vr1")
or fully qualified ("1.2.vr1"). Each router is placed to the right of
everything already on its resource, or below it with --below.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var opts []orchestrator.CreateOption
			if below {
				opts = append(opts, orchestrator.Below())
			}
			return c.mutate(cmd.Context(), func(a *app) error {
				for _, name := range args {
					prog := newProgress(c.Logger)
					spin := newSpinner(cmd.Context(), "Creating "+name)
					spin.Start()
					res, err := a.orch.CreateRouter(cmd.Context(), name, opts...)
					spin.Stop()
					if err != nil {
						return reportSync(err)
					}
					prog.done("Created " + res.ID.String())
					printSuccess("%s at %s", res.ID, StyleNumber.Render(res.Area.String()))
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&below, "below", false, "place below the occupied area instead of to its right")
	return cmd
}

func (c *CLI) removeCommand() *cobra.Command {
	var refresh bool
	cmd := &cobra.Command{
		Use:   "remove <router>...",
		Short: "Remove virtual routers",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.mutate(cmd.Context(), func(a *app) error {
				for _, name := range args {
					res, err := a.orch.RemoveRouter(cmd.Context(), name, refresh)
					if err != nil {
						return reportSync(err)
					}
					printSuccess("Removed %s", res.ID)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&refresh, "refresh", true, "ask the appliance to re-announce its topology afterwards")
	return cmd
}

func (c *CLI) moveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "move <connection> <router>",
		Short: "Drop a connection at a random spot inside a router",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.mutate(cmd.Context(), func(a *app) error {
				res, err := a.orch.MoveConnection(cmd.Context(), args[0], args[1])
				if err != nil {
					return reportSync(err)
				}
				printSuccess("Moved %s to %s", res.ID, StyleNumber.Render(res.Point.String()))
				return nil
			})
		},
	}
}

func (c *CLI) connectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "connect <router> <connection>...",
		Short: "Move existing connections into a router",
		Long: `Move existing connections into a router.

Every connection must already exist on the router's resource; nothing is
moved if one is missing.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.mutate(cmd.Context(), func(a *app) error {
				results, err := a.orch.AddConnections(cmd.Context(), args[0], args[1:]...)
				for _, res := range results {
					if res.RemoteApplied {
						printSuccess("Moved %s to %s", res.ID, StyleNumber.Render(res.Point.String()))
					}
				}
				return reportSync(err)
			})
		},
	}
}

func (c *CLI) linkCommand() *cobra.Command {
	var spec orchestrator.ConnectionSpec
	cmd := &cobra.Command{
		Use:   "link <router> <local-dev>",
		Short: "Create a new connection on a router",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			spec.Router, spec.LocalDev = args[0], args[1]
			return c.mutate(cmd.Context(), func(a *app) error {
				res, err := a.orch.CreateConnection(cmd.Context(), spec)
				if err != nil {
					return reportSync(err)
				}
				printSuccess("Created %s on %s", res.ID, spec.Router)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&spec.RemoteDev, "remote", "", "remote device")
	cmd.Flags().StringVar(&spec.Subnets, "subnets", "", "subnets routed over the connection")
	cmd.Flags().StringVar(&spec.Nexthop, "nexthop", "", "next-hop address")
	cmd.Flags().IntVar(&spec.Flags, "flags", 0, "connection flags")
	return cmd
}

func (c *CLI) rddCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rdd",
		Short: "Create the rdd0/rdd1 redirect device pair",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.mutate(cmd.Context(), func(a *app) error {
				res, err := a.orch.CreateRDDPair(cmd.Context(), c.resourceArg())
				if err != nil {
					return err
				}
				printSuccess("Created %s with peer rdd1", res.ID)
				return nil
			})
		},
	}
}

func (c *CLI) refreshCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Make the appliance redraw the canvas",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.mutate(cmd.Context(), func(a *app) error {
				res := c.resourceArg()
				if err := a.orch.RefreshGUI(cmd.Context(), res); err != nil {
					return err
				}
				printSuccess("Refreshed resource %d", res)
				return nil
			})
		},
	}
}

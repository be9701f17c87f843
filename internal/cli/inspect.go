package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/netsmith/pkg/layout"
)

// resourceArg returns the resource selected by --resource or the config.
func (c *CLI) resourceArg() int {
	return c.cfg.DefaultResource
}

func (c *CLI) routersCommand() *cobra.Command {
	return c.listCommand("routers", "List the virtual routers of a resource", true, false)
}

func (c *CLI) portsCommand() *cobra.Command {
	return c.listCommand("ports", "List the router connections of a resource", false, true)
}

func (c *CLI) listCommand(use, short string, routers, ports bool) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.newApp()
			if err != nil {
				return err
			}
			res := c.resourceArg()
			snap, err := a.cache.Snapshot(cmd.Context(), res, true)
			if err != nil {
				return err
			}
			rows := snapshotRows(snap, routers, ports)
			if len(rows) == 0 {
				printInfo("No %s on resource %d", use, res)
				return nil
			}
			fmt.Println(recordTable(rows, -1))
			printDetail("%d %s on resource %d", len(rows), use, res)
			return nil
		},
	}
}

func (c *CLI) areaCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "area",
		Short: "Show the occupied, connection and overall bounds of a resource",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.newApp()
			if err != nil {
				return err
			}
			return runArea(cmd.Context(), a.engine, c.resourceArg())
		},
	}
}

func runArea(ctx context.Context, e *layout.Engine, res int) error {
	occupied, ok, err := e.OccupiedArea(ctx, res)
	if err != nil {
		return err
	}
	ports, portsOK, err := e.AllPortBounds(ctx, res)
	if err != nil {
		return err
	}
	all, err := e.NetsmithBounds(ctx, res)
	if err != nil {
		return err
	}

	fmt.Println(StyleTitle.Render(fmt.Sprintf("Resource %d", res)))
	printRect("occupied", occupied, ok)
	printRect("ports", ports, portsOK)
	printRect("canvas", all, true)
	return nil
}

func (c *CLI) nextCommand() *cobra.Command {
	var (
		down          bool
		width, height int
	)
	cmd := &cobra.Command{
		Use:   "next",
		Short: "Show where the next router would be placed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.newApp()
			if err != nil {
				return err
			}
			dir := layout.Right
			if down {
				dir = layout.Down
			}
			var opts []layout.AreaOption
			if width > 0 || height > 0 {
				o := a.engine.Options()
				opts = append(opts, layout.WithSize(orDefault(width, o.RouterWidth), orDefault(height, o.RouterHeight)))
			}
			area, err := a.engine.NextAvailableArea(cmd.Context(), c.resourceArg(), dir, opts...)
			if err != nil {
				return err
			}
			printRect("next "+dir.String(), area, true)
			return nil
		},
	}
	cmd.Flags().BoolVar(&down, "down", false, "allocate below the occupied area instead of to its right")
	cmd.Flags().IntVar(&width, "width", 0, "router width (default from config)")
	cmd.Flags().IntVar(&height, "height", 0, "router height (default from config)")
	return cmd
}

func orDefault(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}

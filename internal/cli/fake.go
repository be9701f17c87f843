package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/netsmith/internal/fakeappliance"
	"github.com/matzehuels/netsmith/pkg/geometry"
)

func (c *CLI) fakeApplianceCommand() *cobra.Command {
	var (
		listen string
		seed   bool
	)
	cmd := &cobra.Command{
		Use:   "fake-appliance",
		Short: "Serve an in-memory appliance API for local testing",
		Long: `Serve an in-memory appliance API for local testing.

The fake answers router and connection listings, the refresh endpoints and
the CLI-JSON commands netsmith issues. Its state lives only in memory.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			srv := fakeappliance.New(c.Logger)
			if seed {
				seedFake(srv)
			}
			printInfo("Fake appliance listening on %s", StyleValue.Render("http://"+listen))
			printDetail("point netsmith at it with --appliance http://%s", listen)
			return srv.ListenAndServe(cmd.Context(), listen)
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "127.0.0.1:8080", "address to listen on")
	cmd.Flags().BoolVar(&seed, "seed", false, "start with a sample router and connection on resource 1")
	return cmd
}

// seedFake places one router with two attached connections.
func seedFake(srv *fakeappliance.Server) {
	srv.SetRouter(1, "vr0", geometry.Rect{X: 15, Y: 15, Width: 50, Height: 250})
	srv.SetPort(1, "vr0", "rd0a", geometry.Rect{X: 30, Y: 40, Width: fakeappliance.PortSize, Height: fakeappliance.PortSize})
	srv.SetPort(1, "vr0", "rd0b", geometry.Rect{X: 30, Y: 200, Width: fakeappliance.PortSize, Height: fakeappliance.PortSize})
}

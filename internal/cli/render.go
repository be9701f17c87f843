package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/netsmith/pkg/errors"
	"github.com/matzehuels/netsmith/pkg/geometry"
	"github.com/matzehuels/netsmith/pkg/layout"
	"github.com/matzehuels/netsmith/pkg/render"
	"github.com/matzehuels/netsmith/pkg/topology"
)

const (
	engineCanvas   = "canvas"   // exact coordinates, hand-written SVG
	engineGraphviz = "graphviz" // DOT pinned with neato
	defaultScale   = 2.0
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output   string  // output file, "-" for stdout
	format   string  // svg, dot, pdf or png; inferred from output when empty
	engine   string  // canvas or graphviz
	detailed bool    // label with coordinates (graphviz)
	frontier bool    // outline the next right and down allocations (canvas)
	labels   bool    // draw router names (canvas)
	scale    float64 // png zoom
}

var validFormats = map[string]bool{"svg": true, "dot": true, "pdf": true, "png": true}

func (c *CLI) renderCommand() *cobra.Command {
	opts := renderOpts{engine: engineCanvas, labels: true, scale: defaultScale}

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the canvas of a resource to SVG, DOT, PDF or PNG",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := outputFormat(opts.output, opts.format)
			if err != nil {
				return err
			}
			opts.format = format
			if opts.engine != engineCanvas && opts.engine != engineGraphviz {
				return errors.New(errors.ErrCodeInvalidInput, "invalid engine %q (must be %q or %q)", opts.engine, engineCanvas, engineGraphviz)
			}

			a, err := c.newApp()
			if err != nil {
				return err
			}
			res := c.resourceArg()
			if opts.output == "" {
				opts.output = fmt.Sprintf("resource-%d.%s", res, opts.format)
			}
			return runRender(cmd.Context(), a.engine, res, &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", `output file, "-" for stdout (default resource-<n>.<format>)`)
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "output format: svg, dot, pdf, png (default from --output, else svg)")
	cmd.Flags().StringVar(&opts.engine, "engine", opts.engine, "renderer: canvas (exact coordinates) or graphviz")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "label objects with their coordinates (graphviz)")
	cmd.Flags().BoolVar(&opts.frontier, "frontier", false, "outline the next free areas (canvas)")
	cmd.Flags().BoolVar(&opts.labels, "labels", opts.labels, "draw router names (canvas)")
	cmd.Flags().Float64Var(&opts.scale, "scale", opts.scale, "zoom factor for png output")

	return cmd
}

// outputFormat picks the format from the flag, then the file extension,
// then falls back to svg.
func outputFormat(output, flag string) (string, error) {
	format := strings.ToLower(flag)
	if format == "" && output != "" && output != "-" {
		format = strings.TrimPrefix(strings.ToLower(filepath.Ext(output)), ".")
	}
	if format == "" {
		format = "svg"
	}
	if !validFormats[format] {
		return "", errors.New(errors.ErrCodeInvalidInput, "invalid format: %s (must be 'svg', 'dot', 'pdf', or 'png')", format)
	}
	return format, nil
}

func runRender(ctx context.Context, e *layout.Engine, res int, opts *renderOpts) error {
	logger := loggerFromContext(ctx)

	snap, err := e.Cache().Snapshot(ctx, res, true)
	if err != nil {
		return err
	}
	logger.Infof("Loaded resource %d: %d routers, %d connections", res, len(snap.Routers), len(snap.Ports))

	var frontier []geometry.Rect
	if opts.frontier {
		for _, dir := range []layout.Direction{layout.Right, layout.Down} {
			area, err := e.NextAvailableArea(ctx, res, dir)
			if err != nil {
				return err
			}
			frontier = append(frontier, area)
		}
	}

	data, err := renderSnapshot(ctx, snap, frontier, opts)
	if err != nil {
		return err
	}
	logger.Debugf("Generated %s: %d bytes", opts.format, len(data))

	out, err := openOutput(opts.output)
	if err != nil {
		return err
	}
	defer out.Close()
	if _, err := out.Write(data); err != nil {
		return err
	}
	if opts.output != "-" {
		printFile(opts.output)
	}
	return nil
}

// renderSnapshot produces the bytes of one output format.
func renderSnapshot(ctx context.Context, snap topology.Snapshot, frontier []geometry.Rect, opts *renderOpts) ([]byte, error) {
	if opts.format == "dot" {
		return []byte(render.ToDOT(snap, render.Options{Detailed: opts.detailed})), nil
	}

	var (
		svg []byte
		err error
	)
	switch opts.engine {
	case engineGraphviz:
		svg, err = render.RenderSVG(ctx, render.ToDOT(snap, render.Options{Detailed: opts.detailed}))
		if err != nil {
			return nil, err
		}
	default:
		copts := []render.CanvasOption{render.WithFrontier(frontier...)}
		if !opts.labels {
			copts = append(copts, render.WithoutLabels())
		}
		svg = render.CanvasSVG(snap, copts...)
	}

	switch opts.format {
	case "pdf":
		return render.ToPDF(svg)
	case "png":
		return render.ToPNG(svg, opts.scale)
	}
	return svg, nil
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// openOutput opens path for writing, or stdout for "-".
func openOutput(path string) (io.WriteCloser, error) {
	if path == "-" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(path)
}

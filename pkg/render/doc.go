// Package render draws a canvas snapshot.
//
// Two renderers are provided:
//
//   - [ToDOT] and [RenderSVG] produce a Graphviz graph whose nodes are pinned
//     at the appliance coordinates and laid out with neato.
//   - [CanvasSVG] writes SVG directly, one rect per router and port, which
//     is exact and needs no Graphviz.
//
// [ToPDF] and [ToPNG] convert either SVG with the external rsvg-convert tool.
//
//	snap, _ := cache.Snapshot(ctx, 1, true)
//	svg, err := render.RenderSVG(ctx, render.ToDOT(snap, render.Options{}))
package render

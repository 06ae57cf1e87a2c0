package server

import (
	"context"

	"github.com/wbrown/finch"
)

// CatalogPainter paints with textures loaded from BrushRoot, loading the
// style's catalog for each request. The upscaled redraw is returned when
// Config produces one, the plain canvas otherwise.
type CatalogPainter struct {
	Config    finch.Config
	BrushRoot string
}

// Paint implements Painter.
func (p *CatalogPainter) Paint(ctx context.Context, data []byte, style finch.Style) ([]byte, []byte, error) {
	target, err := finch.DecodeTarget(data)
	if err != nil {
		return nil, nil, err
	}
	defer target.Close()

	catalog, err := finch.LoadCatalog(p.BrushRoot, style)
	if err != nil {
		return nil, nil, err
	}
	defer catalog.Close()

	cfg := p.Config
	cfg.OutputDir = ""
	painter := &finch.Painter{Config: cfg, Catalog: catalog}
	res, err := painter.Paint(ctx, target, "upload")
	if err != nil {
		return nil, nil, err
	}
	defer res.Close()

	final := res.Specimen.Canvas
	if !res.Upscaled.Empty() {
		final = res.Upscaled
	}
	png, err := finch.EncodePNG(final)
	if err != nil {
		return nil, nil, err
	}
	return png, res.GIF, nil
}

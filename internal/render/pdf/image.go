package pdf

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"strconv"
	"strings"

	"codeberg.org/go-pdf/fpdf"
	"github.com/gompdf/pagedit/internal/parser/html"
	"github.com/gompdf/pagedit/internal/style"
	"github.com/gompdf/pagedit/internal/text"
)

// renderImage draws an image block scaled to fit width. Images that cannot
// be loaded print their alt text instead.
func (w *writer) renderImage(el *html.Node, st style.ComputedStyle, x, width float64) {
	src, _ := el.GetAttr("src")
	data, imageType, iw, ih, err := w.loadImage(src)
	if err != nil {
		w.r.Logger.Debug("image skipped", "src", src, "error", err)
		w.renderAlt(el, st, x, width)
		return
	}

	pw, ph := attrPx(el, "width"), attrPx(el, "height")
	switch {
	case pw == 0 && ph == 0:
		pw, ph = float64(iw), float64(ih)
	case pw == 0:
		pw = ph * float64(iw) / float64(ih)
	case ph == 0:
		ph = pw * float64(ih) / float64(iw)
	}
	wpt, hpt := pw*pxToPt, ph*pxToPt
	if wpt > width {
		hpt = hpt * width / wpt
		wpt = width
	}

	w.images++
	name := fmt.Sprintf("img%d", w.images)
	opts := fpdf.ImageOptions{ImageType: imageType, ReadDpi: false}
	w.pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(data))

	w.ensure(hpt)
	w.pdf.ImageOptions(name, x, w.y, wpt, hpt, false, opts, 0, "")
	w.y += hpt
}

// loadImage returns image bytes in a format fpdf embeds directly. Formats
// fpdf cannot read are decoded and re-encoded as PNG.
func (w *writer) loadImage(src string) ([]byte, string, int, int, error) {
	if src == "" || w.r.Loader == nil {
		return nil, "", 0, 0, errors.New("no image source")
	}
	ctx, cancel := w.imageContext()
	defer cancel()
	resource, err := w.r.Loader.LoadImage(ctx, src)
	if err != nil {
		return nil, "", 0, 0, err
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(resource.Data))
	if err != nil {
		return nil, "", 0, 0, fmt.Errorf("decode %s: %w", resource.Name(), err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, "", 0, 0, fmt.Errorf("image %s has no size", resource.Name())
	}

	switch format {
	case "png":
		return resource.Data, "PNG", cfg.Width, cfg.Height, nil
	case "jpeg":
		return resource.Data, "JPG", cfg.Width, cfg.Height, nil
	case "gif":
		return resource.Data, "GIF", cfg.Width, cfg.Height, nil
	}

	img, _, err := image.Decode(bytes.NewReader(resource.Data))
	if err != nil {
		return nil, "", 0, 0, fmt.Errorf("decode %s: %w", resource.Name(), err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, "", 0, 0, fmt.Errorf("re-encode %s: %w", resource.Name(), err)
	}
	return buf.Bytes(), "PNG", cfg.Width, cfg.Height, nil
}

// renderAlt prints the alternative text of a broken image on one line
func (w *writer) renderAlt(el *html.Node, st style.ComputedStyle, x, width float64) {
	alt, _ := el.GetAttr("alt")
	lh := st.LineHeight() * pxToPt
	w.setFont(st)
	w.pdf.SetTextColor(120, 120, 120)
	lines := text.Wrap(alt, width, func(s string) float64 {
		return w.pdf.GetStringWidth(w.tr(s))
	})
	for _, line := range lines {
		w.ensure(lh)
		w.pdf.Text(x, w.y+lh/2+st.FontSize()*pxToPt*0.35, w.tr(line))
		w.y += lh
	}
}

// attrPx reads a pixel size attribute, 0 when absent or invalid
func attrPx(el *html.Node, name string) float64 {
	raw, ok := el.GetAttr(name)
	if !ok {
		return 0
	}
	v, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(raw), "px"), 64)
	if err != nil || v < 0 {
		return 0
	}
	return v
}

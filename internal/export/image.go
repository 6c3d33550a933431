package export

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	imageWidth   = 800
	headerHeight = 120
	rowHeight    = 50
	footerHeight = 80
)

var (
	progolGreen = color.RGBA{R: 46, G: 139, B: 87, A: 255}
	white       = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	lightRow    = color.RGBA{R: 240, G: 248, B: 255, A: 255}
	grey        = color.RGBA{R: 128, G: 128, B: 128, A: 255}
	black       = color.RGBA{A: 255}
)

// canvas wraps an RGBA image with the basic 7x13 face.
type canvas struct {
	img  *image.RGBA
	face font.Face
}

func (c *canvas) fill(r image.Rectangle, col color.Color) {
	draw.Draw(c.img, r, image.NewUniform(col), image.Point{}, draw.Src)
}

func (c *canvas) width(s string) int {
	return font.MeasureString(c.face, s).Ceil()
}

// text draws s with its baseline at y.
func (c *canvas) text(x, y int, s string, col color.Color) {
	d := &font.Drawer{
		Dst:  c.img,
		Src:  image.NewUniform(col),
		Face: c.face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}

func (c *canvas) centered(y int, s string, col color.Color) {
	c.text((imageWidth-c.width(s))/2, y, s, col)
}

// RenderImage draws the ticket: a green header, one row per match with the
// pick on the right, and a footer with the pick summary.
func RenderImage(sheet Sheet) *image.RGBA {
	height := headerHeight + len(sheet.Matches)*rowHeight + footerHeight
	c := &canvas{
		img:  image.NewRGBA(image.Rect(0, 0, imageWidth, height)),
		face: basicfont.Face7x13,
	}
	c.fill(c.img.Bounds(), white)

	title, summary := Header(sheet)
	c.fill(image.Rect(0, 0, imageWidth, headerHeight), progolGreen)
	c.centered(45, title, white)
	c.centered(75, summary, white)
	c.centered(100, sheet.GeneratedAt.Format("02/01/2006 15:04"), white)

	y := headerHeight
	for i, m := range sheet.Matches {
		if i%2 == 0 {
			c.fill(image.Rect(0, y, imageWidth, y+rowHeight), lightRow)
		}
		baseline := y + 30
		c.text(20, baseline, fmt.Sprintf("%2d", m.Position), grey)
		c.text(60, baseline, fmt.Sprintf("%s vs %s", truncate(m.HomeTeam, 25), truncate(m.AwayTeam, 25)), black)

		pick := sheet.pickCode(m.Position)
		if p, ok := sheet.Picks[m.Position]; ok {
			pick = fmt.Sprintf("%s %s", p, p.Label())
		}
		w := c.width(pick)
		x := imageWidth - w - 30
		c.fill(image.Rect(x-10, y+10, x+w+10, y+40), progolGreen)
		c.text(x, baseline, pick, white)

		y += rowHeight
	}

	c.fill(image.Rect(20, y, imageWidth-20, y+2), grey)
	c.centered(y+30, StatsLine(sheet.Stats()), grey)
	c.centered(y+55, Disclaimer, grey)

	return c.img
}

func writePNG(w io.Writer, sheet Sheet) error {
	if err := png.Encode(w, RenderImage(sheet)); err != nil {
		return fmt.Errorf("encoding ticket image: %w", err)
	}
	return nil
}

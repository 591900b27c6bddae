package display

import (
	"fmt"
	"image"
	"image/color"
	"strconv"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/host/v3"

	"github.com/cjeanneret/EqGo/internal/debug"
)

// SSD1306 is the real Sink on a monochrome OLED over I2C (periph.io).
// Text is rasterized into an off-screen 1-bit image with the basicfont
// 7x13 face; Flush transfers the image to the panel.
type SSD1306 struct {
	bus    i2c.BusCloser
	dev    *ssd1306.Dev
	img    *image.Gray
	face   font.Face
	cursor image.Point
}

// NewSSD1306 opens the I2C bus and initializes the panel. busName "" picks
// the first available bus. A failure here is fatal to the caller: the
// display is the only user feedback channel.
func NewSSD1306(busName string, addr uint16, width, height int) (*SSD1306, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("init periph host: %w", err)
	}

	bus, err := i2creg.Open(busName)
	if err != nil {
		return nil, fmt.Errorf("open I2C bus %q: %w", busName, err)
	}

	opts := ssd1306.DefaultOpts
	opts.W = width
	opts.H = height
	dev, err := ssd1306.NewI2C(bus, &opts)
	if err != nil {
		bus.Close()
		return nil, fmt.Errorf("init ssd1306 at 0x%02X: %w", addr, err)
	}

	debug.Info("Display: ssd1306 %dx%d on bus %q", width, height, busName)

	return &SSD1306{
		bus:  bus,
		dev:  dev,
		img:  image.NewGray(image.Rect(0, 0, width, height)),
		face: basicfont.Face7x13,
	}, nil
}

func (d *SSD1306) Clear() {
	for i := range d.img.Pix {
		d.img.Pix[i] = 0
	}
	d.cursor = image.Point{}
}

func (d *SSD1306) SetCursor(x, y int) {
	d.cursor = image.Pt(x, y)
}

func (d *SSD1306) Print(text string) {
	metrics := d.face.Metrics()
	drawer := font.Drawer{
		Dst:  d.img,
		Src:  image.NewUniform(color.Gray{Y: 0xFF}),
		Face: d.face,
		Dot:  fixed.P(d.cursor.X, d.cursor.Y+metrics.Ascent.Ceil()),
	}
	drawer.DrawString(text)
	d.cursor.X = drawer.Dot.X.Ceil()
}

func (d *SSD1306) PrintInt(v int) {
	d.Print(strconv.Itoa(v))
}

func (d *SSD1306) HLine(x0, x1, y int) {
	if x1 < x0 {
		x0, x1 = x1, x0
	}
	for x := x0; x <= x1; x++ {
		d.img.SetGray(x, y, color.Gray{Y: 0xFF})
	}
}

func (d *SSD1306) Flush() error {
	if err := d.dev.Draw(d.dev.Bounds(), d.img, image.Point{}); err != nil {
		return fmt.Errorf("draw frame: %w", err)
	}
	return nil
}

// Close halts the panel and releases the bus.
func (d *SSD1306) Close() error {
	if err := d.dev.Halt(); err != nil {
		d.bus.Close()
		return err
	}
	return d.bus.Close()
}

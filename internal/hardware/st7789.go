package hardware

import (
	"errors"
	"fmt"
	"image"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"

	"github.com/hammamikhairi/valplayer/internal/config"
	"github.com/hammamikhairi/valplayer/internal/domain"
	"github.com/hammamikhairi/valplayer/internal/logger"
)

// ST7789 commands.
const (
	cmdSWRESET = 0x01
	cmdSLPOUT  = 0x11
	cmdINVON   = 0x21
	cmdDISPON  = 0x29
	cmdCASET   = 0x2A
	cmdRASET   = 0x2B
	cmdRAMWR   = 0x2C
	cmdMADCTL  = 0x36
	cmdCOLMOD  = 0x3A
	cmdPORCTRL = 0xB2
	cmdGCTRL   = 0xB7
	cmdVCOMS   = 0xBB
	cmdLCMCTRL = 0xC0
	cmdVDVVRH  = 0xC2
	cmdVRHS    = 0xC3
	cmdVDVS    = 0xC4
	cmdFRCTRL2 = 0xC6
	cmdPWCTRL1 = 0xD0
)

// MaxChunk is the largest single SPI write.
const MaxChunk = 4096

var _ domain.DisplaySink = (*Panel)(nil)

type initStep struct {
	cmd   byte
	data  []byte
	delay time.Duration
}

var initSequence = []initStep{
	{cmd: cmdSWRESET, delay: 150 * time.Millisecond},
	{cmd: cmdMADCTL, data: []byte{0x70}},
	{cmd: cmdPORCTRL, data: []byte{0x0C, 0x0C, 0x00, 0x33, 0x33}},
	{cmd: cmdCOLMOD, data: []byte{0x05}},
	{cmd: cmdGCTRL, data: []byte{0x14}},
	{cmd: cmdVCOMS, data: []byte{0x37}},
	{cmd: cmdLCMCTRL, data: []byte{0x2C}},
	{cmd: cmdVDVVRH, data: []byte{0x01}},
	{cmd: cmdVRHS, data: []byte{0x12}},
	{cmd: cmdVDVS, data: []byte{0x20}},
	{cmd: cmdPWCTRL1, data: []byte{0xA4, 0xA1}},
	{cmd: cmdFRCTRL2, data: []byte{0x0F}},
	{cmd: cmdINVON},
	{cmd: cmdSLPOUT},
	{cmd: cmdDISPON, delay: 100 * time.Millisecond},
}

// Txer is the part of an SPI connection the panel writes through.
type Txer interface {
	Tx(w, r []byte) error
}

// Panel is an ST7789 display on SPI with a data/command pin.
type Panel struct {
	conn      Txer
	dc        gpio.PinOut
	backlight gpio.PinOut
	reset     gpio.PinOut
	closer    spi.PortCloser
	log       *logger.Logger

	width, height int
	rotation      int
	offsetLeft    int
	offsetTop     int

	sleep func(time.Duration)
	buf   []byte
}

// OpenPanel opens the SPI port in cfg and initializes the panel.
func OpenPanel(cfg config.Display, log *logger.Logger) (*Panel, error) {
	if err := initHost(); err != nil {
		return nil, err
	}

	port, err := spireg.Open(cfg.SPIPort)
	if err != nil {
		return nil, fmt.Errorf("spi %s: %w: %v", cfg.SPIPort, domain.ErrHardwareFault, err)
	}
	conn, err := port.Connect(physic.Frequency(cfg.SPISpeedHz)*physic.Hertz, spi.Mode0, 8)
	if err != nil {
		port.Close()
		return nil, fmt.Errorf("spi connect: %w: %v", domain.ErrHardwareFault, err)
	}

	dc := gpioreg.ByName(cfg.DCPin)
	if dc == nil {
		port.Close()
		return nil, fmt.Errorf("dc pin %q: %w", cfg.DCPin, domain.ErrHardwareFault)
	}
	var bl gpio.PinOut
	if cfg.BacklightPin != "" {
		if p := gpioreg.ByName(cfg.BacklightPin); p != nil {
			bl = p
		} else {
			log.Warn("backlight pin %q not found, leaving backlight alone", cfg.BacklightPin)
		}
	}

	var rst gpio.PinOut
	if cfg.ResetPin != "" {
		if p := gpioreg.ByName(cfg.ResetPin); p != nil {
			rst = p
		} else {
			log.Warn("reset pin %q not found, relying on software reset", cfg.ResetPin)
		}
	}

	p := newPanel(conn, dc, bl, cfg, log)
	p.reset = rst
	p.closer = port
	if err := p.init(); err != nil {
		port.Close()
		return nil, err
	}
	log.Info("display ready (%s, %dx%d, rotation %d)", cfg.SPIPort, cfg.Width, cfg.Height, cfg.Rotation)
	return p, nil
}

func newPanel(conn Txer, dc, bl gpio.PinOut, cfg config.Display, log *logger.Logger) *Panel {
	return &Panel{
		conn:       conn,
		dc:         dc,
		backlight:  bl,
		log:        log,
		width:      cfg.Width,
		height:     cfg.Height,
		rotation:   cfg.Rotation,
		offsetLeft: cfg.OffsetLeft,
		offsetTop:  cfg.OffsetTop,
		sleep:      time.Sleep,
	}
}

func (p *Panel) init() error {
	if err := p.hardReset(); err != nil {
		return err
	}
	if p.backlight != nil {
		if err := p.backlight.Out(gpio.High); err != nil {
			return fmt.Errorf("backlight: %w: %v", domain.ErrHardwareFault, err)
		}
	}
	for _, s := range initSequence {
		if err := p.command(s.cmd, s.data...); err != nil {
			return err
		}
		if s.delay > 0 {
			p.sleep(s.delay)
		}
	}
	return nil
}

// Submit pushes a full frame to the panel.
func (p *Panel) Submit(img *image.RGBA) error {
	b := img.Bounds()
	if b.Dx() != p.width || b.Dy() != p.height {
		return fmt.Errorf("frame %dx%d on %dx%d panel: %w", b.Dx(), b.Dy(), p.width, p.height, domain.ErrHardwareFault)
	}

	p.buf = toRGB565(p.buf, img, p.rotation)
	if err := p.setWindow(0, 0, p.width-1, p.height-1); err != nil {
		return err
	}
	if err := p.command(cmdRAMWR); err != nil {
		return err
	}
	return p.data(p.buf)
}

// hardReset pulses the reset line low when the board wires one.
func (p *Panel) hardReset() error {
	if p.reset == nil {
		return nil
	}
	for _, step := range []struct {
		level gpio.Level
		wait  time.Duration
	}{
		{gpio.High, 10 * time.Millisecond},
		{gpio.Low, 10 * time.Millisecond},
		{gpio.High, 120 * time.Millisecond},
	} {
		if err := p.reset.Out(step.level); err != nil {
			return fmt.Errorf("reset: %w: %v", domain.ErrHardwareFault, err)
		}
		p.sleep(step.wait)
	}
	return nil
}

// Close halts the control pins and releases the SPI port. The last frame
// stays on screen.
func (p *Panel) Close() error {
	var errs []error
	for _, pin := range []gpio.PinOut{p.dc, p.backlight, p.reset} {
		if pin == nil {
			continue
		}
		if err := pin.Halt(); err != nil {
			errs = append(errs, fmt.Errorf("pin %s: %w", pin.Name(), err))
		}
	}
	if p.closer != nil {
		if err := p.closer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("spi: %w", err))
		}
	}
	return errors.Join(errs...)
}

func (p *Panel) setWindow(x0, y0, x1, y1 int) error {
	x0, x1 = x0+p.offsetLeft, x1+p.offsetLeft
	y0, y1 = y0+p.offsetTop, y1+p.offsetTop
	if err := p.command(cmdCASET, byte(x0>>8), byte(x0), byte(x1>>8), byte(x1)); err != nil {
		return err
	}
	return p.command(cmdRASET, byte(y0>>8), byte(y0), byte(y1>>8), byte(y1))
}

func (p *Panel) command(cmd byte, args ...byte) error {
	if err := p.dc.Out(gpio.Low); err != nil {
		return fmt.Errorf("dc: %w: %v", domain.ErrHardwareFault, err)
	}
	if err := p.conn.Tx([]byte{cmd}, nil); err != nil {
		return fmt.Errorf("command 0x%02x: %w: %v", cmd, domain.ErrHardwareFault, err)
	}
	if len(args) == 0 {
		return nil
	}
	return p.data(args)
}

func (p *Panel) data(b []byte) error {
	if err := p.dc.Out(gpio.High); err != nil {
		return fmt.Errorf("dc: %w: %v", domain.ErrHardwareFault, err)
	}
	for len(b) > 0 {
		n := min(len(b), MaxChunk)
		if err := p.conn.Tx(b[:n], nil); err != nil {
			return fmt.Errorf("spi write: %w: %v", domain.ErrHardwareFault, err)
		}
		b = b[n:]
	}
	return nil
}

// toRGB565 packs img into big-endian RGB565, rotating it counter-clockwise
// by rotation degrees (0, 90, 180 or 270). dst is reused when large enough.
// Rotation by 90 or 270 assumes a square image.
func toRGB565(dst []byte, img *image.RGBA, rotation int) []byte {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if cap(dst) < w*h*2 {
		dst = make([]byte, w*h*2)
	}
	dst = dst[:w*h*2]

	i := 0
	for dy := 0; dy < h; dy++ {
		for dx := 0; dx < w; dx++ {
			sx, sy := dx, dy
			switch rotation {
			case 90:
				sx, sy = w-1-dy, dx
			case 180:
				sx, sy = w-1-dx, h-1-dy
			case 270:
				sx, sy = dy, h-1-dx
			}
			off := img.PixOffset(b.Min.X+sx, b.Min.Y+sy)
			r, g, bl := img.Pix[off], img.Pix[off+1], img.Pix[off+2]
			v := uint16(r&0xF8)<<8 | uint16(g&0xFC)<<3 | uint16(bl)>>3
			dst[i] = byte(v >> 8)
			dst[i+1] = byte(v)
			i += 2
		}
	}
	return dst
}

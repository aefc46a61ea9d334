// Package hardware drives the Pirate Audio board: four active-low push
// buttons and an ST7789 SPI panel, all through periph.io.
package hardware

import (
	"errors"
	"fmt"
	"sync"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"

	"github.com/hammamikhairi/valplayer/internal/config"
	"github.com/hammamikhairi/valplayer/internal/domain"
	"github.com/hammamikhairi/valplayer/internal/logger"
)

var _ domain.ButtonReader = (*Buttons)(nil)

var hostOnce struct {
	sync.Once
	err error
}

// initHost loads the periph host drivers once per process.
func initHost() error {
	hostOnce.Do(func() {
		_, hostOnce.err = host.Init()
	})
	if hostOnce.err != nil {
		return fmt.Errorf("periph host: %w: %v", domain.ErrHardwareFault, hostOnce.err)
	}
	return nil
}

// Buttons reads the front-panel buttons. A button reads Low while held.
type Buttons struct {
	pins map[domain.Button]gpio.PinIn
}

// OpenButtons configures the four button pins as pulled-up inputs.
func OpenButtons(cfg config.Buttons, log *logger.Logger) (*Buttons, error) {
	if err := initHost(); err != nil {
		return nil, err
	}

	names := map[domain.Button]string{
		domain.ButtonA: cfg.A,
		domain.ButtonB: cfg.B,
		domain.ButtonX: cfg.X,
		domain.ButtonY: cfg.Y,
	}
	pins := make(map[domain.Button]gpio.PinIn, len(names))
	for b, name := range names {
		p := gpioreg.ByName(name)
		if p == nil {
			return nil, fmt.Errorf("button %s: no pin %q: %w", b, name, domain.ErrHardwareFault)
		}
		pins[b] = p
	}

	bs, err := newButtons(pins)
	if err != nil {
		return nil, err
	}
	log.Info("buttons ready (A=%s B=%s X=%s Y=%s)", cfg.A, cfg.B, cfg.X, cfg.Y)
	return bs, nil
}

func newButtons(pins map[domain.Button]gpio.PinIn) (*Buttons, error) {
	for b, p := range pins {
		if err := p.In(gpio.PullUp, gpio.NoEdge); err != nil {
			return nil, fmt.Errorf("button %s: %w: %v", b, domain.ErrHardwareFault, err)
		}
	}
	return &Buttons{pins: pins}, nil
}

// Pressed reports whether b is held right now. Unknown buttons read as
// released.
func (bs *Buttons) Pressed(b domain.Button) bool {
	p, ok := bs.pins[b]
	if !ok {
		return false
	}
	return p.Read() == gpio.Low
}

// Close halts every button pin. The buttons read as released afterwards.
func (bs *Buttons) Close() error {
	var errs []error
	for b, p := range bs.pins {
		if err := p.Halt(); err != nil {
			errs = append(errs, fmt.Errorf("button %s: %w", b, err))
		}
	}
	bs.pins = nil
	return errors.Join(errs...)
}

package domain

// Button identifies one of the four front-panel buttons.
type Button int

const (
	ButtonA Button = iota
	ButtonB
	ButtonX
	ButtonY
)

// Buttons lists every button in polling order.
var Buttons = [...]Button{ButtonA, ButtonB, ButtonX, ButtonY}

// String returns the button's panel label.
func (b Button) String() string {
	switch b {
	case ButtonA:
		return "A"
	case ButtonB:
		return "B"
	case ButtonX:
		return "X"
	case ButtonY:
		return "Y"
	default:
		return "?"
	}
}

package presentation

import "github.com/tweaks-labs/tweaks/internal/tweak"

// CellKind is the editing control used for a tweak.
type CellKind int

const (
	CellNone CellKind = iota
	CellToggle
	CellNumber
	CellText
)

func (c CellKind) String() string {
	switch c {
	case CellToggle:
		return "toggle"
	case CellNumber:
		return "number"
	case CellText:
		return "text"
	}
	return "none"
}

// CellKindFor maps a value kind to its editing control.
func CellKindFor(k tweak.Kind) CellKind {
	switch k {
	case tweak.KindBool:
		return CellToggle
	case tweak.KindNumber:
		return CellNumber
	case tweak.KindText:
		return CellText
	}
	return CellNone
}

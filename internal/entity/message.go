package domain

type LineKind int

const (
	LinePlain LineKind = iota
	LineEmphasis
	LineSeparator
)

func (k LineKind) String() string {
	switch k {
	case LinePlain:
		return "plain"
	case LineEmphasis:
		return "emphasis"
	case LineSeparator:
		return "separator"
	default:
		return "unknown"
	}
}

type Line struct {
	Kind LineKind
	Text string
}

// Message is the canonical order summary. Every surface (preview, link
// payload) is rendered from Lines.
type Message struct {
	Lines    []Line
	Subtotal int64
}

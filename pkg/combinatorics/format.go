package combinatorics

import (
	"math/big"
	"strings"
)

// Display labels of the three figures.
const (
	LabelParameterGraphSize = "Parameter Graph Size for fixed threshold ordering"
	LabelReorderings        = "Number of threshold reorderings"
	LabelAllOrderings       = "Parameter Graph Size including all threshold orderings"
)

// Figure is one labelled quantity ready for display.
type Figure struct {
	Label   string `json:"label" yaml:"label"`
	Value   string `json:"value" yaml:"value"`
	Display string `json:"display" yaml:"display"`
}

// String renders "<label> = <display>".
func (f Figure) String() string {
	return f.Label + " = " + f.Display
}

// Figures returns the triple in display order.
func (r Result) Figures() []Figure {
	return []Figure{
		newFigure(LabelParameterGraphSize, r.ParameterGraphSize),
		newFigure(LabelReorderings, r.Reorderings),
		newFigure(LabelAllOrderings, r.AllOrderings),
	}
}

// Lines renders the triple one figure per line.
func (r Result) Lines() []string {
	figs := r.Figures()
	out := make([]string, len(figs))
	for i, f := range figs {
		out[i] = f.String()
	}
	return out
}

func newFigure(label string, v *big.Int) Figure {
	return Figure{Label: label, Value: v.String(), Display: FormatWithCommas(v)}
}

// FormatWithCommas renders v in decimal with a comma between every group of
// three digits, e.g. 253146 -> "253,146".
func FormatWithCommas(v *big.Int) string {
	digits := v.String()
	sign := ""
	if strings.HasPrefix(digits, "-") {
		sign, digits = "-", digits[1:]
	}
	if len(digits) <= 3 {
		return sign + digits
	}

	var b strings.Builder
	b.WriteString(sign)
	head := len(digits) % 3
	if head == 0 {
		head = 3
	}
	b.WriteString(digits[:head])
	for i := head; i < len(digits); i += 3 {
		b.WriteByte(',')
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

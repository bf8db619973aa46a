package numfmt

import (
	"math"
	"strconv"
	"strings"
)

// ParseNumber reports whether s is a plain decimal number and returns its
// value. Hexadecimal, infinities and NaN are rejected.
func ParseNumber(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c >= '0' && c <= '9', c == '.', c == '+', c == '-', c == 'e', c == 'E':
		default:
			return 0, false
		}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Render formats a raw cell value. Values that are not numeric are
// returned unchanged.
func (f *Format) Render(raw string) any {
	v, ok := ParseNumber(raw)
	if !ok {
		return raw
	}
	rule, x := f.Section(v)
	if rule.Kind == KindText {
		return raw
	}
	return rule.render(x, f.symbols)
}

// RenderFloat formats a numeric value. General rules and numeric rules
// without a digit pattern yield the float itself.
func (f *Format) RenderFloat(v float64) any {
	rule, x := f.Section(v)
	if rule.Kind == KindText {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return rule.render(x, f.symbols)
}

func (r *Rule) render(v float64, sym Symbols) any {
	switch r.Kind {
	case KindGeneral:
		return v
	case KindPercentage:
		return renderPercent(v, r.simple, sym)
	case KindDateTime:
		if s, ok := renderDate(r.date, v); ok {
			return s
		}
		return v
	case KindEuro:
		return "EUR " + strconv.FormatFloat(v, 'f', 2, 64)
	case KindFraction:
		return renderFraction(v/r.Scale, r.wholeSet)
	}
	if r.literal != "" {
		return r.literal
	}
	if !r.pattern {
		return v
	}
	v /= r.Scale
	if r.Exponent > 0 {
		return r.prefix + r.scientific(v, sym) + r.suffix
	}
	if len(r.groups) > 1 {
		return r.grouped(v)
	}
	return r.prefix + r.fixed(v, sym) + r.suffix
}

func renderPercent(v float64, simple bool, sym Symbols) string {
	if simple {
		p := math.Round(v * 100)
		if p == 0 {
			p = 0
		}
		return strconv.FormatFloat(p, 'f', 0, 64) + "%"
	}
	p := math.Round(v*10000) / 100
	if p == 0 {
		p = 0
	}
	s := strconv.FormatFloat(p, 'f', 2, 64)
	if sym.Decimal != "." {
		s = strings.Replace(s, ".", sym.Decimal, 1)
	}
	return s + "%"
}

func (r *Rule) fixed(v float64, sym Symbols) string {
	s := strconv.FormatFloat(math.Abs(v), 'f', r.DecimalPlaces, 64)
	whole, frac, _ := strings.Cut(s, ".")
	if r.IntegerDigits == 0 && whole == "0" {
		whole = ""
	}
	if len(whole) < r.IntegerDigits {
		whole = strings.Repeat("0", r.IntegerDigits-len(whole)) + whole
	}
	zero := strings.Trim(whole+frac, "0") == ""
	if r.Thousands {
		whole = group(whole, sym.Thousands)
	}
	out := whole
	if r.DecimalPoint {
		out += sym.Decimal + frac
	}
	if v < 0 && !zero {
		out = "-" + out
	}
	return out
}

func (r *Rule) scientific(v float64, sym Symbols) string {
	s := strconv.FormatFloat(v, 'E', r.DecimalPlaces, 64)
	mant, exp, _ := strings.Cut(s, "E")
	e, _ := strconv.Atoi(exp)
	sign := ""
	switch {
	case e < 0:
		sign = "-"
		e = -e
	case r.exponentPlus:
		sign = "+"
	}
	if sym.Decimal != "." {
		mant = strings.Replace(mant, ".", sym.Decimal, 1)
	}
	return mant + "E" + sign + pad(e, r.Exponent)
}

// grouped fills the zero runs from the right with the rounded integer
// digits. Digits beyond the placeholders go to the first run.
func (r *Rule) grouped(v float64) string {
	digits := strconv.FormatFloat(math.Round(math.Abs(v)), 'f', 0, 64)
	total := 0
	for _, n := range r.groups {
		total += n
	}
	if len(digits) < total {
		digits = strings.Repeat("0", total-len(digits)) + digits
	}
	var sb strings.Builder
	if v < 0 && strings.Trim(digits, "0") != "" {
		sb.WriteByte('-')
	}
	pos := len(digits) - total + r.groups[0]
	sb.WriteString(r.literals[0])
	sb.WriteString(digits[:pos])
	for i := 1; i < len(r.groups); i++ {
		sb.WriteString(r.literals[i])
		sb.WriteString(digits[pos : pos+r.groups[i]])
		pos += r.groups[i]
	}
	sb.WriteString(r.literals[len(r.groups)])
	return sb.String()
}

// group inserts sep between every three digits from the right.
func group(digits, sep string) string {
	if len(digits) <= 3 || sep == "" {
		return digits
	}
	var sb strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		sb.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if sb.Len() > 0 {
			sb.WriteString(sep)
		}
		sb.WriteString(digits[i : i+3])
	}
	return sb.String()
}

// Package numfmt compiles spreadsheet number-format codes into rendering
// rules and applies them to raw cell values.
package numfmt

import (
	"math"
	"regexp"
	"strings"

	"github.com/xuri/nfp"
)

// Kind classifies a compiled format section.
type Kind int

const (
	KindGeneral Kind = iota
	KindText
	KindPercentage
	KindDateTime
	KindEuro
	KindFraction
	KindNumeric
)

func (k Kind) String() string {
	switch k {
	case KindGeneral:
		return "general"
	case KindText:
		return "text"
	case KindPercentage:
		return "percentage"
	case KindDateTime:
		return "datetime"
	case KindEuro:
		return "euro"
	case KindFraction:
		return "fraction"
	case KindNumeric:
		return "numeric"
	}
	return "unknown"
}

// Symbols holds the locale characters used while rendering numbers.
type Symbols struct {
	Decimal   string
	Thousands string
	// Currency replaces a currency directive that carries no code of its own.
	Currency string
}

// DefaultSymbols returns the en-US symbols.
func DefaultSymbols() Symbols {
	return Symbols{Decimal: ".", Thousands: ","}
}

// Rule is one compiled section of a format code.
type Rule struct {
	Kind Kind
	// Code is the section after color stripping and trimming.
	Code string

	Scale         float64
	Thousands     bool
	IntegerDigits int
	DecimalPoint  bool
	DecimalPlaces int
	Currency      string

	// Exponent is the minimum number of exponent digits of a scientific
	// code, zero otherwise.
	Exponent     int
	exponentPlus bool

	prefix   string
	suffix   string
	literal  string
	pattern  bool
	simple   bool
	wholeSet bool
	date     []dateToken

	// groups holds the widths of the zero runs of a code such as
	// 000-000-0000; literals surrounds them, one more than groups.
	groups   []int
	literals []string
}

// MinWidth is the number of digit placeholders in the numeric pattern.
func (r *Rule) MinWidth() int {
	return r.IntegerDigits + r.DecimalPlaces
}

// Format is a compiled number format with up to four sections.
type Format struct {
	code     string
	sections []*Rule
	symbols  Symbols
}

const euroCode = "[$EUR ]#,##0.00_-"

var (
	colorDirective    = regexp.MustCompile(`^\[([[:alpha:]]+|(?i:color)\s?[0-9]{1,2})\]`)
	dateCode          = regexp.MustCompile(`(?i)^(\[\$[[:alpha:]]*-[0-9A-F]*\])*(\[[hms]+\]|[hmsdye])`)
	skipDirective     = regexp.MustCompile(`_.`)
	fillDirective     = regexp.MustCompile(`\*.`)
	scaleDirective    = regexp.MustCompile(`([0#]),+`)
	currencyDirective = regexp.MustCompile(`\[\$([^\]]*)\]`)
	bracketed         = regexp.MustCompile(`\[[^\]]*\]`)
	digitPattern      = regexp.MustCompile(`(0+)(\.?)(0*)|(\.)(0+)`)
	exponentPattern   = regexp.MustCompile(`^[Ee]([+-])(0+)`)
	zeroRun           = regexp.MustCompile(`0+`)
)

// currencyMark stands in for the currency directive between compile and render.
const currencyMark = "\x00"

// Compile parses a format code. It never fails: unrecognized codes fall
// back to a numeric rule that returns the value unchanged.
func Compile(code string, sym Symbols) *Format {
	f := &Format{code: code, symbols: sym}
	for _, section := range splitSections(code) {
		f.sections = append(f.sections, compileSection(section, sym))
	}
	if len(f.sections) == 0 {
		f.sections = []*Rule{{Kind: KindGeneral, Scale: 1}}
	}
	return f
}

// Code returns the source format code.
func (f *Format) Code() string { return f.code }

// Rules returns the compiled sections in source order.
func (f *Format) Rules() []*Rule { return f.sections }

// Section picks the rule that applies to v and the value to render with it.
// A dedicated negative section renders the magnitude since its code carries
// its own sign.
func (f *Format) Section(v float64) (*Rule, float64) {
	switch {
	case v < 0 && len(f.sections) >= 2:
		return f.sections[1], math.Abs(v)
	case v == 0 && len(f.sections) >= 3:
		return f.sections[2], v
	}
	return f.sections[0], v
}

// splitSections splits on semicolons outside quotes and brackets.
func splitSections(code string) []string {
	if code == "" {
		return nil
	}
	var (
		out     []string
		start   int
		quoted  bool
		bracket bool
	)
	for i := 0; i < len(code); i++ {
		switch code[i] {
		case '\\':
			i++
		case '"':
			quoted = !quoted
		case '[':
			if !quoted {
				bracket = true
			}
		case ']':
			bracket = false
		case ';':
			if !quoted && !bracket {
				out = append(out, code[start:i])
				start = i + 1
			}
		}
		if len(out) == 4 {
			return out
		}
	}
	return append(out, code[start:])
}

func stripColor(code string) string {
	code = strings.TrimSpace(code)
	if m := colorDirective.FindStringSubmatch(code); m != nil && isColor(m[1]) {
		code = strings.TrimSpace(code[len(m[0]):])
	}
	return code
}

func isColor(name string) bool {
	lower := strings.ToLower(name)
	if strings.HasPrefix(lower, "color") {
		return true
	}
	for _, c := range nfp.ColorNames {
		if c == lower {
			return true
		}
	}
	return false
}

func compileSection(section string, sym Symbols) *Rule {
	code := stripColor(section)
	if len(code) > 1 && code[0] == 't' && strings.IndexByte("0#", code[1]) >= 0 {
		// Thai digit substitution
		code = code[1:]
	}
	r := &Rule{Code: code, Scale: 1}
	switch {
	case code == "" || strings.EqualFold(code, "General"):
		r.Kind = KindGeneral
	case code == "@":
		r.Kind = KindText
	case strings.HasSuffix(code, "%"):
		r.Kind = KindPercentage
		r.simple = code == "0%"
	case dateCode.MatchString(code):
		r.Kind = KindDateTime
		r.date = compileDate(code)
	case code == euroCode:
		r.Kind = KindEuro
	default:
		compileNumeric(r, code, sym)
	}
	return r
}

func compileNumeric(r *Rule, code string, sym Symbols) {
	c := skipDirective.ReplaceAllString(code, "")
	c = fillDirective.ReplaceAllString(c, "")
	c = strings.NewReplacer(`\`, "", `"`, "").Replace(c)

	if strings.Contains(c, "0,0") || strings.Contains(c, "#,#") {
		r.Thousands = true
		c = strings.NewReplacer("0,0", "00", "#,#", "##").Replace(c)
	}
	if m := scaleDirective.FindStringSubmatch(c); m != nil {
		r.Scale = math.Pow(1000, float64(len(m[0])-len(m[1])))
		c = scaleDirective.ReplaceAllString(c, "$1")
	}

	if strings.Contains(c, "?/?") {
		r.Kind = KindFraction
		r.wholeSet = strings.ContainsAny(c, "0#") || strings.HasPrefix(c, "? ?")
		return
	}

	r.Kind = KindNumeric
	if m := currencyDirective.FindStringSubmatch(c); m != nil {
		cur, _, _ := strings.Cut(m[1], "-")
		if cur == "" {
			cur = sym.Currency
		}
		r.Currency = cur
	}
	c = currencyDirective.ReplaceAllString(c, currencyMark)
	c = bracketed.ReplaceAllString(c, "")
	if !strings.ContainsAny(c, "0#?") {
		r.literal = strings.ReplaceAll(c, currencyMark, r.Currency)
		return
	}
	c = strings.ReplaceAll(c, "#", "")

	loc := digitPattern.FindStringSubmatchIndex(c)
	if loc == nil {
		return
	}
	m := digitPattern.FindStringSubmatch(c)
	if m[1] != "" {
		r.IntegerDigits = len(m[1])
		r.DecimalPoint = m[2] != ""
		r.DecimalPlaces = len(m[3])
	} else {
		r.DecimalPoint = true
		r.DecimalPlaces = len(m[5])
	}
	r.pattern = true
	r.prefix = strings.ReplaceAll(c[:loc[0]], currencyMark, r.Currency)
	suffix := c[loc[1]:]
	if e := exponentPattern.FindStringSubmatch(suffix); e != nil {
		r.Exponent = len(e[2])
		r.exponentPlus = e[1] == "+"
		suffix = suffix[len(e[0]):]
	}
	r.suffix = strings.ReplaceAll(suffix, currencyMark, r.Currency)
	if r.Exponent == 0 && !r.DecimalPoint && strings.Contains(r.suffix, "0") {
		r.splitGroups(strings.ReplaceAll(c, currencyMark, r.Currency))
	}
}

func (r *Rule) splitGroups(code string) {
	start := 0
	for _, loc := range zeroRun.FindAllStringIndex(code, -1) {
		r.literals = append(r.literals, code[start:loc[0]])
		r.groups = append(r.groups, loc[1]-loc[0])
		start = loc[1]
	}
	r.literals = append(r.literals, code[start:])
}

package numfmt

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/nfp"
)

type dateKind int

const (
	dateLiteral dateKind = iota
	dateYear2
	dateYear4
	dateMonth
	dateMonthAbbr
	dateMonthName
	dateMonthLetter
	dateDay
	dateDayAbbr
	dateDayName
	dateHour
	dateMinute
	dateSecond
	dateAmPm
	dateElapsedHours
	dateElapsedMinutes
	dateElapsedSeconds
)

type dateToken struct {
	kind  dateKind
	text  string
	width int
	// am and pm are the designators of a dateAmPm token.
	am, pm string
	h12    bool
}

// Serial day 0 is 1899-12-31. Serial 60 is the fictitious 1900-02-29 that
// Excel keeps for Lotus compatibility.
var epoch = time.Date(1899, time.December, 31, 0, 0, 0, 0, time.UTC)

const (
	leapBugSerial = 60
	// maxSerial is the first serial past 9999-12-31.
	maxSerial = 2958466
)

// civil is a broken-down serial date. It can represent 1900-02-29, which
// time.Time cannot.
type civil struct {
	year, month, day     int
	hour, minute, second int
	weekday              time.Weekday
	totalSeconds         int64
}

func serialToCivil(v float64) (civil, bool) {
	if math.IsNaN(v) || v < 0 || v >= maxSerial {
		return civil{}, false
	}
	days := int(v)
	// the offset absorbs binary representation error such as 0.041666...64
	secs := int((v-float64(days))*86400 + 1e-6)
	if secs >= 86400 {
		secs = 86399
	}
	c := civil{
		hour:         secs / 3600,
		minute:       secs % 3600 / 60,
		second:       secs % 60,
		totalSeconds: int64(days)*86400 + int64(secs),
	}
	if days == leapBugSerial {
		c.year, c.month, c.day, c.weekday = 1900, 2, 29, time.Wednesday
		return c, true
	}
	if days > leapBugSerial {
		days--
	}
	t := epoch.AddDate(0, 0, days)
	c.year, c.month, c.day, c.weekday = t.Year(), int(t.Month()), t.Day(), t.Weekday()
	return c, true
}

// SerialTime converts a serial date to a UTC time. Serial 60 has no real
// calendar date and maps to 1900-03-01 like serial 61.
func SerialTime(v float64) (time.Time, bool) {
	if math.IsNaN(v) || v < 0 || v >= maxSerial {
		return time.Time{}, false
	}
	days := int(v)
	secs := int((v-float64(days))*86400 + 1e-6)
	if days >= leapBugSerial {
		days--
	}
	return epoch.AddDate(0, 0, days).Add(time.Duration(secs) * time.Second), true
}

func compileDate(code string) []dateToken {
	p := nfp.NumberFormatParser()
	sections := p.Parse(code)
	if len(sections) == 0 {
		return nil
	}
	var (
		tokens []dateToken
		h12    bool
	)
	for _, item := range sections[0].Items {
		switch item.TType {
		case nfp.TokenTypeDateTimes:
			tok := dateTimeToken(strings.ToLower(item.TValue), item.TValue)
			if tok.kind == dateAmPm {
				h12 = true
			}
			tokens = append(tokens, tok)
		case nfp.TokenTypeElapsedDateTimes:
			tokens = append(tokens, elapsedToken(strings.ToLower(item.TValue)))
		case nfp.TokenTypeLiteral, nfp.TokenTypeDecimalPoint, nfp.TokenTypeZeroPlaceHolder,
			nfp.TokenTypeThousandsSeparator, nfp.TokenTypePercent:
			tokens = append(tokens, dateToken{kind: dateLiteral, text: item.TValue})
		}
	}
	resolveMinutes(tokens)
	if h12 {
		for i := range tokens {
			if tokens[i].kind == dateHour {
				tokens[i].h12 = true
			}
		}
	}
	return tokens
}

func dateTimeToken(lower, orig string) dateToken {
	n := len(lower)
	switch {
	case strings.Contains(lower, "/"):
		am, pm, _ := strings.Cut(orig, "/")
		return dateToken{kind: dateAmPm, am: strings.ToUpper(am), pm: strings.ToUpper(pm)}
	case lower[0] == 'y' || lower[0] == 'e':
		if n > 2 || lower[0] == 'e' {
			return dateToken{kind: dateYear4}
		}
		return dateToken{kind: dateYear2}
	case lower[0] == 'm':
		switch {
		case n <= 2:
			return dateToken{kind: dateMonth, width: n}
		case n == 3:
			return dateToken{kind: dateMonthAbbr}
		case n == 5:
			return dateToken{kind: dateMonthLetter}
		}
		return dateToken{kind: dateMonthName}
	case lower[0] == 'd':
		switch {
		case n <= 2:
			return dateToken{kind: dateDay, width: n}
		case n == 3:
			return dateToken{kind: dateDayAbbr}
		}
		return dateToken{kind: dateDayName}
	case lower[0] == 'h':
		return dateToken{kind: dateHour, width: min(n, 2)}
	case lower[0] == 's':
		return dateToken{kind: dateSecond, width: min(n, 2)}
	}
	return dateToken{kind: dateLiteral, text: orig}
}

func elapsedToken(lower string) dateToken {
	tok := dateToken{width: len(lower)}
	switch lower[0] {
	case 'h':
		tok.kind = dateElapsedHours
	case 'm':
		tok.kind = dateElapsedMinutes
	default:
		tok.kind = dateElapsedSeconds
	}
	return tok
}

// resolveMinutes turns m and mm into minutes when they follow an hour or
// precede a second.
func resolveMinutes(tokens []dateToken) {
	prev := -1
	for i := range tokens {
		if tokens[i].kind == dateLiteral {
			continue
		}
		if tokens[i].kind == dateMonth {
			if prev >= 0 && isHour(tokens[prev].kind) {
				tokens[i].kind = dateMinute
			} else if next := nextDateToken(tokens, i); next >= 0 && isSecond(tokens[next].kind) {
				tokens[i].kind = dateMinute
			}
		}
		prev = i
	}
}

func nextDateToken(tokens []dateToken, i int) int {
	for j := i + 1; j < len(tokens); j++ {
		if tokens[j].kind != dateLiteral {
			return j
		}
	}
	return -1
}

func isHour(k dateKind) bool   { return k == dateHour || k == dateElapsedHours }
func isSecond(k dateKind) bool { return k == dateSecond || k == dateElapsedSeconds }

func renderDate(tokens []dateToken, v float64) (string, bool) {
	c, ok := serialToCivil(v)
	if !ok {
		return "", false
	}
	var sb strings.Builder
	for _, tok := range tokens {
		switch tok.kind {
		case dateLiteral:
			sb.WriteString(tok.text)
		case dateYear2:
			sb.WriteString(pad(c.year%100, 2))
		case dateYear4:
			sb.WriteString(pad(c.year, 4))
		case dateMonth:
			sb.WriteString(pad(c.month, tok.width))
		case dateMonthAbbr:
			sb.WriteString(time.Month(c.month).String()[:3])
		case dateMonthName:
			sb.WriteString(time.Month(c.month).String())
		case dateMonthLetter:
			sb.WriteString(time.Month(c.month).String()[:1])
		case dateDay:
			sb.WriteString(pad(c.day, tok.width))
		case dateDayAbbr:
			sb.WriteString(c.weekday.String()[:3])
		case dateDayName:
			sb.WriteString(c.weekday.String())
		case dateHour:
			h := c.hour
			if tok.h12 {
				h %= 12
				if h == 0 {
					h = 12
				}
			}
			sb.WriteString(pad(h, tok.width))
		case dateMinute:
			sb.WriteString(pad(c.minute, tok.width))
		case dateSecond:
			sb.WriteString(pad(c.second, tok.width))
		case dateAmPm:
			if c.hour < 12 {
				sb.WriteString(tok.am)
			} else {
				sb.WriteString(tok.pm)
			}
		case dateElapsedHours:
			sb.WriteString(pad64(c.totalSeconds/3600, tok.width))
		case dateElapsedMinutes:
			sb.WriteString(pad64(c.totalSeconds/60, tok.width))
		case dateElapsedSeconds:
			sb.WriteString(pad64(c.totalSeconds, tok.width))
		}
	}
	return sb.String(), true
}

func pad(n, width int) string {
	return pad64(int64(n), width)
}

func pad64(n int64, width int) string {
	s := strconv.FormatInt(n, 10)
	if len(s) < width {
		s = strings.Repeat("0", width-len(s)) + s
	}
	return s
}

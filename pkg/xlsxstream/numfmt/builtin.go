package numfmt

// builtinCodes maps the implicit number format ids to their format codes.
// Ids 27-62 vary by install locale; the CJK and Thai entries below are the
// ones Excel writes for zh-TW and th-TH workbooks.
var builtinCodes = map[int]string{
	0:  "General",
	1:  "0",
	2:  "0.00",
	3:  "#,##0",
	4:  "#,##0.00",
	9:  "0%",
	10: "0.00%",
	11: "0.00E+00",
	12: "# ?/?",
	13: "# ??/??",
	14: "mm-dd-yy",
	15: "d-mmm-yy",
	16: "d-mmm",
	17: "mmm-yy",
	18: "h:mm AM/PM",
	19: "h:mm:ss AM/PM",
	20: "h:mm",
	21: "h:mm:ss",
	22: "m/d/yy h:mm",

	27: "[$-404]e/m/d",
	30: "m/d/yy",
	36: "[$-404]e/m/d",

	37: "#,##0 ;(#,##0)",
	38: "#,##0 ;[Red](#,##0)",
	39: "#,##0.00;(#,##0.00)",
	40: "#,##0.00;[Red](#,##0.00)",

	45: "mm:ss",
	46: "[h]:mm:ss",
	47: "mmss.0",
	48: "##0.0E+0",
	49: "@",

	50: "[$-404]e/m/d",
	57: "[$-404]e/m/d",

	59: "t0",
	60: "t0.00",
	61: "t#,##0",
	62: "t#,##0.00",
	67: "t0%",
	68: "t0.00%",
	69: "t# ?/?",
	70: "t# ??/??",
}

// Builtin returns the format code of an implicit number format id.
func Builtin(id int) (string, bool) {
	code, ok := builtinCodes[id]
	return code, ok
}

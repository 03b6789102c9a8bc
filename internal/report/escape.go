package report

import "strings"

// latexEscaper rewrites LaTeX control characters so interpolated free text
// cannot corrupt the typesetting source. The backslash must be handled by
// the same replacer pass, otherwise escaping "\" would re-expand into the
// braces of the other replacements.
var latexEscaper = strings.NewReplacer(
	`\`, `\textbackslash{}`,
	`&`, `\&`,
	`%`, `\%`,
	`$`, `\$`,
	`#`, `\#`,
	`_`, `\_`,
	`{`, `\{`,
	`}`, `\}`,
	`~`, `\textasciitilde{}`,
	`^`, `\textasciicircum{}`,
)

// latexEscape escapes every LaTeX special character in input.
func latexEscape(input string) string {
	return latexEscaper.Replace(input)
}

package lint

import (
	"bytes"
	"regexp"
	"strings"
)

// lines splits src into lines without their terminators. A final newline
// does not start an extra empty line.
func lines(src []byte) []string {
	if len(src) == 0 {
		return nil
	}
	s := strings.TrimSuffix(string(src), "\n")
	return strings.Split(s, "\n")
}

func joinLines(ls []string, finalNewline bool) []byte {
	out := strings.Join(ls, "\n")
	if finalNewline && len(ls) > 0 {
		out += "\n"
	}
	return []byte(out)
}

func hasFinalNewline(src []byte) bool { return bytes.HasSuffix(src, []byte("\n")) }

type trailingWhitespace struct{}

func (trailingWhitespace) ID() string          { return "no-trailing-whitespace" }
func (trailingWhitespace) Description() string { return "lines must not end with spaces or tabs" }

func (r trailingWhitespace) Check(src []byte) []Finding {
	var out []Finding
	for i, l := range lines(src) {
		trimmed := strings.TrimRight(l, " \t\r")
		if len(trimmed) != len(l) {
			out = append(out, Finding{Line: i + 1, Col: len(trimmed) + 1, Rule: r.ID(), Message: "trailing whitespace"})
		}
	}
	return out
}

func (trailingWhitespace) Fix(src []byte) []byte {
	ls := lines(src)
	for i, l := range ls {
		ls[i] = strings.TrimRight(l, " \t\r")
	}
	return joinLines(ls, hasFinalNewline(src))
}

var trailingSemi = regexp.MustCompile(`;[ \t]*$`)

type noSemi struct{}

func (noSemi) ID() string          { return "no-semi" }
func (noSemi) Description() string { return "statements must not end with a semicolon" }

func (r noSemi) Check(src []byte) []Finding {
	var out []Finding
	for i, l := range lines(src) {
		if loc := trailingSemi.FindStringIndex(l); loc != nil && !isComment(l) {
			out = append(out, Finding{Line: i + 1, Col: loc[0] + 1, Rule: r.ID(), Message: "unnecessary semicolon"})
		}
	}
	return out
}

func (noSemi) Fix(src []byte) []byte {
	ls := lines(src)
	for i, l := range ls {
		if !isComment(l) {
			ls[i] = trailingSemi.ReplaceAllString(l, "")
		}
	}
	return joinLines(ls, hasFinalNewline(src))
}

func isComment(l string) bool {
	t := strings.TrimSpace(l)
	return strings.HasPrefix(t, "//") || strings.HasPrefix(t, "*") || strings.HasPrefix(t, "/*")
}

var wildcardImport = regexp.MustCompile(`^\s*import\s+[\w.]+\.\*\s*$`)

type noWildcardImports struct{}

func (noWildcardImports) ID() string          { return "no-wildcard-imports" }
func (noWildcardImports) Description() string { return "imports must name what they import" }

func (r noWildcardImports) Check(src []byte) []Finding {
	var out []Finding
	for i, l := range lines(src) {
		if wildcardImport.MatchString(l) {
			out = append(out, Finding{Line: i + 1, Col: strings.Index(l, "import") + 1, Rule: r.ID(), Message: "wildcard import"})
		}
	}
	return out
}

type noTabIndent struct{}

func (noTabIndent) ID() string          { return "no-tab-indent" }
func (noTabIndent) Description() string { return "indentation uses spaces" }

func (r noTabIndent) Check(src []byte) []Finding {
	var out []Finding
	for i, l := range lines(src) {
		indent := l[:len(l)-len(strings.TrimLeft(l, " \t"))]
		if c := strings.IndexByte(indent, '\t'); c >= 0 {
			out = append(out, Finding{Line: i + 1, Col: c + 1, Rule: r.ID(), Message: "tab in indentation"})
		}
	}
	return out
}

func (noTabIndent) Fix(src []byte) []byte {
	ls := lines(src)
	for i, l := range ls {
		rest := strings.TrimLeft(l, " \t")
		indent := l[:len(l)-len(rest)]
		ls[i] = strings.ReplaceAll(indent, "\t", "    ") + rest
	}
	return joinLines(ls, hasFinalNewline(src))
}

type noConsecutiveBlankLines struct{}

func (noConsecutiveBlankLines) ID() string { return "no-consecutive-blank-lines" }
func (noConsecutiveBlankLines) Description() string {
	return "at most one blank line in a row"
}

func (r noConsecutiveBlankLines) Check(src []byte) []Finding {
	var out []Finding
	blank := 0
	for i, l := range lines(src) {
		if strings.TrimSpace(l) != "" {
			blank = 0
			continue
		}
		blank++
		if blank == 2 {
			out = append(out, Finding{Line: i + 1, Col: 1, Rule: r.ID(), Message: "needless blank line"})
		}
	}
	return out
}

func (noConsecutiveBlankLines) Fix(src []byte) []byte {
	var out []string
	blank := 0
	for _, l := range lines(src) {
		if strings.TrimSpace(l) == "" {
			blank++
			if blank > 1 {
				continue
			}
		} else {
			blank = 0
		}
		out = append(out, l)
	}
	return joinLines(out, hasFinalNewline(src))
}

type finalNewline struct{}

func (finalNewline) ID() string          { return "final-newline" }
func (finalNewline) Description() string { return "files end with a single newline" }

func (r finalNewline) Check(src []byte) []Finding {
	if len(src) == 0 || hasFinalNewline(src) {
		return nil
	}
	ls := lines(src)
	last := ls[len(ls)-1]
	return []Finding{{Line: len(ls), Col: len(last) + 1, Rule: r.ID(), Message: "missing final newline"}}
}

func (finalNewline) Fix(src []byte) []byte {
	if len(src) == 0 || hasFinalNewline(src) {
		return src
	}
	return append(bytes.Clone(src), '\n')
}

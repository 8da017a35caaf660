package classpath

import "strings"

// Separator joins two quoted entries in a rendered classpath: it closes the
// current string literal after a comma and continues on the next line.
// Indentation of the continuation is left to go/format.
const Separator = `,"` + " +\n" + `"`

// Render embeds entries in a single Go string constant expression. Every
// entry is individually quoted, so the constant's value reads as a literal
// ordered list:
//
//	"\"g:a:1\"," +
//	"\"g:b:2\""
//
// The output is for auditing only and is never parsed back.
func Render(entries []Entry) string {
	quoted := make([]string, len(entries))
	for i, e := range entries {
		quoted[i] = `\"` + e.String() + `\"`
	}
	return `"` + strings.Join(quoted, Separator) + `"`
}

package textutil

import "strings"

// stemReplacer maps characters that cannot appear in output file names.
var stemReplacer = strings.NewReplacer(
	"/", "-",
	"\\", "-",
	":", "-",
	"*", "-",
	"?", "",
	"\"", "",
	"<", "",
	">", "",
	"|", "",
)

// OutputStem turns a user-supplied name into a file stem that stays inside
// the output directory. Separators and reserved characters become dashes or
// are dropped, whitespace runs collapse to one space and leading dots are
// removed. An empty result means no usable name was given.
func OutputStem(name string) string {
	name = strings.Join(strings.Fields(stemReplacer.Replace(name)), " ")
	return strings.TrimLeft(name, ".")
}

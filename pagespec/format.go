package pagespec

import (
	"strconv"
	"strings"
)

// Format renders r in its most compact form, collapsing ascending and
// descending runs of consecutive pages into a-b. The empty range renders as
// "NOT all". Parsing the result yields r again.
func Format(r Range) string {
	if r.Len() == 0 {
		return "NOT all"
	}
	var b strings.Builder
	pages := r.pages
	for i := 0; i < len(pages); {
		j := i + 1
		if j < len(pages) && abs(pages[j]-pages[i]) == 1 {
			step := pages[j] - pages[i]
			for j+1 < len(pages) && pages[j+1]-pages[j] == step {
				j++
			}
			j++
		}
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(pages[i]))
		if j-i > 1 {
			b.WriteByte('-')
			b.WriteString(strconv.Itoa(pages[j-1]))
		}
		i = j
	}
	return b.String()
}

func (r Range) String() string { return Format(r) }

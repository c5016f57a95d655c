package cli

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// diffContext is how many unchanged lines are kept around each change.
const diffContext = 2

type diffLine struct {
	op   diffmatchpatch.Operation
	text string
}

// renderDiff returns a line diff of before and after, headed by the file
// name. Long unchanged runs are collapsed to "...".
func renderDiff(p palette, name, before, after string) string {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var all []diffLine

	for _, d := range diffs {
		for _, line := range splitLines(d.Text) {
			all = append(all, diffLine{op: d.Type, text: line})
		}
	}

	var out strings.Builder

	out.WriteString(p.header.Sprint("--- "+name) + "\n")
	out.WriteString(p.header.Sprint("+++ "+name+" (dry run)") + "\n")

	elided := false

	for i, l := range all {
		switch l.op {
		case diffmatchpatch.DiffInsert:
			out.WriteString(p.added.Sprint("+"+l.text) + "\n")
			elided = false
		case diffmatchpatch.DiffDelete:
			out.WriteString(p.removed.Sprint("-"+l.text) + "\n")
			elided = false
		default:
			if !nearChange(all, i) {
				if !elided {
					out.WriteString("...\n")
					elided = true
				}

				continue
			}

			out.WriteString(" " + l.text + "\n")
			elided = false
		}
	}

	return out.String()
}

func nearChange(all []diffLine, i int) bool {
	for j := max(0, i-diffContext); j <= min(len(all)-1, i+diffContext); j++ {
		if all[j].op != diffmatchpatch.DiffEqual {
			return true
		}
	}

	return false
}

// splitLines splits text after each line break, dropping the breaks.
func splitLines(text string) []string {
	if text == "" {
		return nil
	}

	lines := strings.Split(strings.TrimSuffix(text, "\n"), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}

	return lines
}

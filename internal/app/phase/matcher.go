package phase

import "strings"

// Detected reports whether a phase has already been recorded
type Detected interface {
	Has(name string) bool
}

// Set is a plain Detected implementation
type Set map[string]bool

func (s Set) Has(name string) bool {
	return s[name]
}

// Detect returns the first phase in table order that is not yet detected and matches the line.
// Already detected phases are skipped, so a recurring pattern never yields an earlier phase twice.
func Detect(line string, table *Table, detected Detected) (string, bool) {
	lower := strings.ToLower(line)

	for _, p := range table.phases {
		if detected != nil && detected.Has(p.Name) {
			continue
		}

		for _, pattern := range p.Patterns {
			if pattern.Match(lower) {
				return p.Name, true
			}
		}
	}

	return "", false
}

package repl

import (
	"sort"
	"strings"
)

// Completer completes command lines from a fixed vocabulary.
type Completer struct {
	words []string
}

// NewCompleter creates a completer over words, which may contain spaces
// ("device list").
func NewCompleter(words ...string) *Completer {
	seen := make(map[string]bool, len(words))
	c := &Completer{}
	for _, w := range append(words, builtins...) {
		if w == "" || seen[w] {
			continue
		}
		seen[w] = true
		c.words = append(c.words, w)
	}
	sort.Strings(c.words)
	return c
}

// Complete returns the words starting with prefix, sorted.
func (c *Completer) Complete(prefix string) []string {
	prefix = strings.TrimLeft(prefix, " ")
	var out []string
	for _, w := range c.words {
		if strings.HasPrefix(w, prefix) {
			out = append(out, w)
		}
	}
	return out
}

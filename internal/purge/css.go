package purge

import (
	"strconv"
	"strings"
)

type nodeKind int

const (
	kindRule      nodeKind = iota // selector { declarations }
	kindGroup                     // @media and friends, holding nested nodes
	kindAtBlock                   // other at-rules with a block, kept verbatim
	kindStatement                 // @import ...; and other text kept verbatim
	kindComment
)

// groupAtRules are the at-rules whose blocks hold rules that are pruned
// recursively.
var groupAtRules = map[string]bool{
	"media":     true,
	"supports":  true,
	"layer":     true,
	"container": true,
	"document":  true,
	"scope":     true,
}

type node struct {
	kind     nodeKind
	prelude  string
	body     string
	children []node
}

// parseStylesheet splits css into top-level nodes. It understands strings,
// comments and nested blocks, not declarations.
func parseStylesheet(css string) []node {
	var nodes []node
	i := 0
	for i < len(css) {
		i = skipSpace(css, i)
		if i >= len(css) {
			break
		}

		if strings.HasPrefix(css[i:], "/*") {
			end := strings.Index(css[i+2:], "*/")
			if end < 0 {
				nodes = append(nodes, node{kind: kindComment, prelude: css[i:]})
				break
			}
			stop := i + 2 + end + 2
			nodes = append(nodes, node{kind: kindComment, prelude: css[i:stop]})
			i = stop
			continue
		}

		open, semi := scanPrelude(css, i)
		if open < 0 && semi < 0 {
			// Trailing text without a block; keep it as is.
			nodes = append(nodes, node{kind: kindStatement, prelude: strings.TrimSpace(css[i:])})
			break
		}
		if semi >= 0 && (open < 0 || semi < open) {
			nodes = append(nodes, node{kind: kindStatement, prelude: strings.TrimSpace(css[i : semi+1])})
			i = semi + 1
			continue
		}

		prelude := strings.TrimSpace(css[i:open])
		closeIdx := matchBrace(css, open)
		var body string
		if closeIdx < 0 {
			body = css[open+1:]
			i = len(css)
		} else {
			body = css[open+1 : closeIdx]
			i = closeIdx + 1
		}

		n := node{kind: kindRule, prelude: prelude, body: body}
		if strings.HasPrefix(prelude, "@") {
			n.kind = kindAtBlock
			if groupAtRules[atRuleName(prelude)] {
				n.kind = kindGroup
				n.children = parseStylesheet(body)
			}
		}
		nodes = append(nodes, n)
	}
	return nodes
}

// renderStylesheet writes nodes back to CSS text.
func renderStylesheet(nodes []node) string {
	var b strings.Builder
	for i, n := range nodes {
		if i > 0 {
			b.WriteByte('\n')
		}
		switch n.kind {
		case kindComment, kindStatement:
			b.WriteString(n.prelude)
		case kindGroup:
			b.WriteString(n.prelude)
			b.WriteString(" {\n")
			b.WriteString(renderStylesheet(n.children))
			b.WriteString("\n}")
		default:
			b.WriteString(n.prelude)
			b.WriteString(" {")
			b.WriteString(n.body)
			b.WriteString("}")
		}
	}
	return b.String()
}

// atRuleName returns the lowercased name of an at-rule prelude, without
// vendor prefix.
func atRuleName(prelude string) string {
	name := prelude[1:]
	if end := strings.IndexAny(name, " \t\r\n({;"); end >= 0 {
		name = name[:end]
	}
	name = strings.ToLower(name)
	for _, prefix := range []string{"-webkit-", "-moz-", "-ms-", "-o-"} {
		name = strings.TrimPrefix(name, prefix)
	}
	return name
}

// scanPrelude returns the index of the first top-level '{' and ';' from i,
// or -1 for each not found. Whichever comes first ends the prelude.
func scanPrelude(css string, i int) (open, semi int) {
	depth := 0
	for i < len(css) {
		switch c := css[i]; c {
		case '"', '\'':
			i = skipString(css, i)
			continue
		case '/':
			if strings.HasPrefix(css[i:], "/*") {
				end := strings.Index(css[i+2:], "*/")
				if end < 0 {
					return -1, -1
				}
				i += 2 + end + 2
				continue
			}
		case '\\':
			i += 2
			continue
		case '(', '[':
			depth++
		case ')', ']':
			if depth > 0 {
				depth--
			}
		case '{':
			if depth == 0 {
				return i, -1
			}
		case ';':
			if depth == 0 {
				return -1, i
			}
		}
		i++
	}
	return -1, -1
}

// matchBrace returns the index of the '}' closing the '{' at open.
func matchBrace(css string, open int) int {
	depth := 0
	i := open
	for i < len(css) {
		switch css[i] {
		case '"', '\'':
			i = skipString(css, i)
			continue
		case '/':
			if strings.HasPrefix(css[i:], "/*") {
				end := strings.Index(css[i+2:], "*/")
				if end < 0 {
					return -1
				}
				i += 2 + end + 2
				continue
			}
		case '\\':
			i += 2
			continue
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
		i++
	}
	return -1
}

// skipString returns the index just past the string starting at i.
func skipString(s string, i int) int {
	quote := s[i]
	i++
	for i < len(s) {
		switch s[i] {
		case '\\':
			i += 2
			continue
		case quote, '\n':
			return i + 1
		}
		i++
	}
	return len(s)
}

func skipSpace(s string, i int) int {
	for i < len(s) && isSpace(s[i]) {
		i++
	}
	return i
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}

// selectorNames holds the names a compound selector list depends on.
type selectorNames struct {
	classes []string
	ids     []string
	types   []string
}

func (s selectorNames) empty() bool {
	return len(s.classes) == 0 && len(s.ids) == 0 && len(s.types) == 0
}

// splitSelectors splits a selector list on top-level commas.
func splitSelectors(prelude string) []string {
	var (
		parts []string
		depth int
		start int
	)
	for i := 0; i < len(prelude); i++ {
		switch prelude[i] {
		case '"', '\'':
			i = skipString(prelude, i) - 1
		case '\\':
			i++
		case '(', '[':
			depth++
		case ')', ']':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				parts = append(parts, strings.TrimSpace(prelude[start:i]))
				start = i + 1
			}
		}
	}
	return append(parts, strings.TrimSpace(prelude[start:]))
}

// parseSelector collects the class, id and type names of one selector.
// Pseudo-classes and their arguments, attribute selectors, the universal
// selector and nesting references are ignored.
func parseSelector(sel string) selectorNames {
	var names selectorNames
	i := 0
	for i < len(sel) {
		c := sel[i]
		switch {
		case c == '.':
			name, next := readIdent(sel, i+1)
			if name != "" {
				names.classes = append(names.classes, name)
			}
			i = next
		case c == '#':
			name, next := readIdent(sel, i+1)
			if name != "" {
				names.ids = append(names.ids, name)
			}
			i = next
		case c == '[':
			i = skipBracket(sel, i, '[', ']')
		case c == ':':
			for i < len(sel) && sel[i] == ':' {
				i++
			}
			_, i = readIdent(sel, i)
			if i < len(sel) && sel[i] == '(' {
				i = skipBracket(sel, i, '(', ')')
			}
		case isIdentStart(c):
			name, next := readIdent(sel, i)
			if next == i {
				i++
				continue
			}
			names.types = append(names.types, strings.ToLower(name))
			i = next
		default:
			i++
		}
	}
	return names
}

// readIdent reads a CSS identifier starting at i, decoding escapes.
func readIdent(s string, i int) (string, int) {
	var b strings.Builder
	for i < len(s) {
		c := s[i]
		switch {
		case c == '\\' && i+1 < len(s):
			r, next := readEscape(s, i+1)
			b.WriteString(r)
			i = next
		case isIdentChar(c):
			b.WriteByte(c)
			i++
		default:
			return b.String(), i
		}
	}
	return b.String(), i
}

// readEscape decodes the escape whose body starts at i.
func readEscape(s string, i int) (string, int) {
	j := i
	for j < len(s) && j-i < 6 && isHex(s[j]) {
		j++
	}
	if j == i {
		return s[i : i+1], i + 1
	}
	code, err := strconv.ParseUint(s[i:j], 16, 32)
	if j < len(s) && isSpace(s[j]) {
		j++
	}
	if err != nil || code == 0 || code > 0x10FFFF {
		return "�", j
	}
	return string(rune(code)), j
}

func skipBracket(s string, i int, open, closeCh byte) int {
	depth := 0
	for i < len(s) {
		switch s[i] {
		case '"', '\'':
			i = skipString(s, i)
			continue
		case '\\':
			i += 2
			continue
		case open:
			depth++
		case closeCh:
			depth--
			if depth == 0 {
				return i + 1
			}
		}
		i++
	}
	return len(s)
}

func isIdentStart(c byte) bool {
	return c == '_' || c == '-' || c >= 0x80 || (c|0x20 >= 'a' && c|0x20 <= 'z')
}

func isIdentChar(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

func isHex(c byte) bool {
	return (c >= '0' && c <= '9') || (c|0x20 >= 'a' && c|0x20 <= 'f')
}

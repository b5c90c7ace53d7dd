package cpu

import (
	"bufio"
	"io"
	"regexp"
	"strings"
	"unicode"
)

// Line is one tokenized source statement.
type Line struct {
	LineNo   int      // 1-based source line.
	Text     string   // Source text, without comment.
	Label    string   // Label defined on this line, if any.
	Name     string   // Directive (with leading '.') or mnemonic, lower case.
	Operands []string // Comma separated operands.
}

// IsDirective returns true if the statement is an assembler directive.
func (line *Line) IsDirective() bool {
	return strings.HasPrefix(line.Name, ".")
}

var labelRe = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_]*)\s*:`)

// stripComment removes a '#' comment outside of a string literal.
func stripComment(text string) string {
	quoted := false
	for n, c := range text {
		switch c {
		case '"':
			quoted = !quoted
		case '#':
			if !quoted {
				return text[:n]
			}
		}
	}
	return text
}

// splitOperands splits on commas outside of brackets and string literals.
func splitOperands(text string) (operands []string) {
	text = strings.TrimSpace(text)
	if len(text) == 0 {
		return
	}

	depth := 0
	quoted := false
	start := 0
	for n, c := range text {
		switch {
		case c == '"':
			quoted = !quoted
		case quoted:
		case c == '[':
			depth++
		case c == ']':
			depth--
		case c == ',' && depth == 0:
			operands = append(operands, strings.TrimSpace(text[start:n]))
			start = n + 1
		}
	}
	operands = append(operands, strings.TrimSpace(text[start:]))

	return
}

// TokenizeLine splits a source line into its label, name and operands.
// ok is false for blank and comment-only lines.
func TokenizeLine(lineNo int, text string) (line Line, ok bool) {
	text = strings.TrimSpace(stripComment(text))
	if len(text) == 0 {
		return
	}

	line.LineNo = lineNo
	line.Text = text

	if match := labelRe.FindStringSubmatch(text); match != nil {
		line.Label = match[1]
		text = strings.TrimSpace(text[len(match[0]):])
	}

	name, rest := text, ""
	if n := strings.IndexFunc(text, unicode.IsSpace); n >= 0 {
		name, rest = text[:n], text[n:]
	}
	line.Name = strings.ToLower(name)
	line.Operands = splitOperands(rest)

	ok = true
	return
}

// Tokenize reads source text into statements.
func Tokenize(r io.Reader) (lines []Line, err error) {
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line, ok := TokenizeLine(lineNo, scanner.Text())
		if ok {
			lines = append(lines, line)
		}
	}

	err = scanner.Err()
	return
}

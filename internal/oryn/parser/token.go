package parser

import "strings"

type tokenKind int

const (
	tokWord tokenKind = iota
	tokString
	tokFlag
	tokSelector
)

type token struct {
	kind     tokenKind
	text     string // unquoted/unescaped payload
	flagName string
	flagVal  string
	hasVal   bool
	selKind  string // "css" or "xpath"
}

// tokenize splits a canonical (already-normalized) line into tokens. It
// assumes quotes are always double, escapes are well-formed, and css()/
// xpath() payloads are always double-quoted inside.
func tokenize(line string) ([]token, error) {
	var toks []token
	i := 0
	n := len(line)
	for i < n {
		for i < n && (line[i] == ' ' || line[i] == '\t') {
			i++
		}
		if i >= n {
			break
		}
		switch {
		case line[i] == '"':
			s, next, err := readQuoted(line, i)
			if err != nil {
				return nil, err
			}
			toks = append(toks, token{kind: tokString, text: s})
			i = next
		case strings.HasPrefix(line[i:], "--"):
			j := i + 2
			for j < n && line[j] != ' ' && line[j] != '\t' && line[j] != '=' {
				j++
			}
			name := line[i+2 : j]
			if j < n && line[j] == '=' {
				valStart := j + 1
				if valStart < n && line[valStart] == '"' {
					s, next, err := readQuoted(line, valStart)
					if err != nil {
						return nil, err
					}
					toks = append(toks, token{kind: tokFlag, flagName: name, flagVal: s, hasVal: true})
					i = next
					continue
				}
				k := valStart
				for k < n && line[k] != ' ' && line[k] != '\t' {
					k++
				}
				toks = append(toks, token{kind: tokFlag, flagName: name, flagVal: line[valStart:k], hasVal: true})
				i = k
				continue
			}
			// peek: a following non-flag token is the value, unless next
			// token itself starts with "--" or is absent.
			toks = append(toks, token{kind: tokFlag, flagName: name, hasVal: false})
			i = j
		case strings.HasPrefix(line[i:], "css(") || strings.HasPrefix(line[i:], "xpath("):
			kind := "css"
			start := i + 4
			if strings.HasPrefix(line[i:], "xpath(") {
				kind = "xpath"
				start = i + 6
			}
			if start >= n || line[start] != '"' {
				return nil, errorf("malformed selector payload at %d", i)
			}
			s, next, err := readQuoted(line, start)
			if err != nil {
				return nil, err
			}
			if next >= n || line[next] != ')' {
				return nil, errorf("unterminated selector payload at %d", i)
			}
			toks = append(toks, token{kind: tokSelector, selKind: kind, text: s})
			i = next + 1
		default:
			j := i
			for j < n && line[j] != ' ' && line[j] != '\t' {
				j++
			}
			toks = append(toks, token{kind: tokWord, text: line[i:j]})
			i = j
		}
	}
	return toks, nil
}

func readQuoted(s string, start int) (string, int, error) {
	if s[start] != '"' {
		return "", start, errorf("expected quote at %d", start)
	}
	var b strings.Builder
	i := start + 1
	for i < len(s) {
		c := s[i]
		if c == '\\' && i+1 < len(s) {
			switch s[i+1] {
			case 'n':
				b.WriteByte('\n')
			case 'r':
				b.WriteByte('\r')
			case 't':
				b.WriteByte('\t')
			case '"':
				b.WriteByte('"')
			case '\\':
				b.WriteByte('\\')
			default:
				b.WriteByte(s[i+1])
			}
			i += 2
			continue
		}
		if c == '"' {
			return b.String(), i + 1, nil
		}
		b.WriteByte(c)
		i++
	}
	return "", i, errorf("unterminated string starting at %d", start)
}

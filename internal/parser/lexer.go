package parser

import "strings"

type lexer struct {
	tokens []Token
	word   strings.Builder
	depth  int
	line   int
}

// Lex splits Java source into tokens. Characters two or more braces deep
// (method bodies, initializer blocks) only move the brace counter; every
// physical line still gets its LineNumber and Sign tokens.
func Lex(source string) []Token {
	lx := &lexer{line: 1}
	lx.tokens = append(lx.tokens, Token{Kind: LineNumber, Line: 1})

	lineStart := 0
	for i := 0; i < len(source); i++ {
		c := source[i]
		if c == '\n' {
			lx.flush()
			lx.endLine(source[lineStart:i])
			lineStart = i + 1
			continue
		}

		if lx.depth >= 2 {
			switch c {
			case '{':
				lx.depth++
			case '}':
				lx.depth--
			}
			continue
		}

		switch c {
		case ' ', '\t', '\r':
			lx.flush()
		case ',':
			lx.flush()
			lx.emit(Join, "")
		case ';':
			lx.flush()
			lx.emit(ExpressionEnd, ";")
		case '(':
			lx.flush()
			lx.emit(ParamStart, "")
		case ')':
			lx.flush()
			lx.emit(ParamEnd, "")
		case '{':
			lx.flush()
			lx.emit(ExpressionEnd, "{")
			lx.depth++
		case '}':
			lx.flush()
			if lx.depth > 0 {
				lx.depth--
			}
		default:
			lx.word.WriteByte(c)
		}
	}

	lx.flush()
	lx.emit(Sign, strings.TrimSpace(source[lineStart:]))
	return lx.tokens
}

func (lx *lexer) emit(kind TokenKind, text string) {
	lx.tokens = append(lx.tokens, Token{Kind: kind, Text: text, Line: lx.line, Depth: lx.depth})
}

func (lx *lexer) flush() {
	if lx.word.Len() == 0 {
		return
	}
	w := lx.word.String()
	lx.word.Reset()
	if isKeyword(w) {
		lx.emit(Keyword, w)
	} else {
		lx.emit(Symbol, w)
	}
}

func (lx *lexer) endLine(raw string) {
	lx.emit(Sign, strings.TrimSpace(raw))
	lx.line++
	lx.tokens = append(lx.tokens, Token{Kind: LineNumber, Line: lx.line, Depth: lx.depth})
}

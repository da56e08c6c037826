/*
Copyright (C) 2023-2024  Carl-Philip Hänsch
Copyright (C) 2013  Pieter Kelchtermans (originally licensed unter WTFPL 2.0)

    This program is free software: you can redistribute it and/or modify
    it under the terms of the GNU General Public License as published by
    the Free Software Foundation, either version 3 of the License, or
    (at your option) any later version.

    This program is distributed in the hope that it will be useful,
    but WITHOUT ANY WARRANTY; without even the implied warranty of
    MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
    GNU General Public License for more details.

    You should have received a copy of the GNU General Public License
    along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/

package scm

import (
	"bufio"
	"io"

	packrat "github.com/launix-de/go-packrat/v2"
)

// The surface syntax has exactly two productions: a bare symbol, or a
// parenthesized pair of two terms "(a b)" - literally cons(a, b), not a
// variadic list. Longer structures are written by nesting: (a (b (c d))).
// There is no empty-list syntax: "()" is rejected as an unexpected ")".
// packrat only does the lexing here - splitting input into symbol/"("/")"
// tokens - the tree itself is built by ReadExpr below, by hand, so every
// intermediate node can be rooted the way the collector requires.
var (
	symbolTokenParser packrat.Parser[[]token] = packrat.NewRegexParser(func(matched string) []token {
		return []token{{kind: tokSymbol, text: matched}}
	}, `[^\s()]+`, false, true)
	openTokenParser  packrat.Parser[[]token] = packrat.NewAtomParser([]token{{kind: tokOpen, text: "("}}, "(", false, true)
	closeTokenParser packrat.Parser[[]token] = packrat.NewAtomParser([]token{{kind: tokClose, text: ")"}}, ")", false, true)
	anyTokenParser                           = packrat.NewOrParser(openTokenParser, closeTokenParser, symbolTokenParser)
	tokenStreamParser                        = packrat.NewKleeneParser(func(matched string, toks ...[]token) []token {
		result := make([]token, 0, len(toks))
		for _, t := range toks {
			result = append(result, t...)
		}
		return result
	}, anyTokenParser, packrat.NewEmptyParser[[]token](nil))
)

type tokenKind int

const (
	tokSymbol tokenKind = iota
	tokOpen
	tokClose
)

type token struct {
	kind tokenKind
	text string
}

// tokenizeLine splits one line into tokens via the packrat grammar above.
// A line containing nothing but whitespace/comments yields zero tokens.
func tokenizeLine(line string) ([]token, error) {
	scanner := packrat.NewScanner[[]token](line, packrat.SkipWhitespaceAndCommentsRegex)
	node, err := packrat.Parse(tokenStreamParser, scanner)
	if err != nil {
		return nil, &RuntimeError{Kind: ParseError, Message: "tokenize: " + err.Error()}
	}
	toks := make([]token, 0, len(node.Payload))
	for _, t := range node.Payload {
		if t.text == "" {
			continue
		}
		toks = append(toks, t)
	}
	return toks, nil
}

// Tokenizer pulls a lazy token stream out of an io.Reader, tokenizing one
// line at a time so a REPL can block waiting for more input exactly at
// an expression boundary instead of needing the whole session's text
// up front.
type Tokenizer struct {
	src   *bufio.Reader
	queue []token
}

func NewTokenizer(r io.Reader) *Tokenizer {
	return &Tokenizer{src: bufio.NewReader(r)}
}

func (t *Tokenizer) next() (token, error) {
	for len(t.queue) == 0 {
		line, err := t.src.ReadString('\n')
		if len(line) == 0 && err != nil {
			return token{}, err
		}
		toks, terr := tokenizeLine(line)
		if terr != nil {
			return token{}, terr
		}
		t.queue = toks
	}
	tok := t.queue[0]
	t.queue = t.queue[1:]
	return tok, nil
}

// ReadExpr reads exactly one top-level term from tok: a symbol atom, or a
// "(" term term ")" pair, with arbitrary nesting. It is a close port of
// the original reader's single loop, which walks a chain of partially
// built pairs using the very same cons cells the collector will later
// traverse - "parent" in the corresponding construction doubles as both
// a return value slot and the open-pair stack, so no separate parser
// stack ever needs to be rooted.
//
// Returns io.EOF (unwrapped) when the stream ends before any token is
// read; any other error, or a malformed expression, is a *RuntimeError
// with Kind ParseError.
func (it *Interpreter) ReadExpr(tok *Tokenizer) (Object, error) {
	var parent, expr Object
	parent = it.nilValue
	it.roots.pushRoot(&parent)
	it.roots.pushRoot(&expr)
	defer it.roots.popRoot()
	defer it.roots.popRoot()

	for {
		t, err := tok.next()
		if err != nil {
			if parent == Object(it.nilValue) {
				return nil, err
			}
			return nil, &RuntimeError{Kind: ParseError, Message: "unexpected end of input inside '('"}
		}

		switch t.kind {
		case tokSymbol:
			setRoot(&expr, it.newAtomFromString(t.text))
			for {
				if parent == Object(it.nilValue) {
					return expr, nil
				}
				parentCons := asCons(parent)
				if parentCons.head == Object(it.nilValue) {
					parentCons.head = expr
					break
				}
				newParent := parentCons.tail
				parentCons.tail = expr
				setRoot(&expr, parent)
				setRoot(&parent, newParent)

				closeTok, err := tok.next()
				if err != nil {
					return nil, &RuntimeError{Kind: ParseError, Message: "unexpected end of input: missing ')'"}
				}
				if closeTok.kind != tokClose {
					return nil, &RuntimeError{Kind: ParseError, Message: "syntax error: pair: missing ')'"}
				}
			}

		case tokOpen:
			cons := it.newCons(it.nilValue, parent)
			setRoot(&parent, cons)

		case tokClose:
			return nil, &RuntimeError{Kind: ParseError, Message: "syntax error: unexpected ')'"}
		}
	}
}

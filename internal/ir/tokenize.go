package ir

import (
	"fmt"
	"go/scanner"
	"go/token"
)

// Tokenize splits annotation argument text into tokens using Go lexical rules.
//
// Grouping punctuation is dropped so that `("cpu")`, `= "cpu"` and `"cpu"`
// produce the same single string token. Other punctuation is kept as
// TokenPunct; a leading comma in `,omitempty`-style text therefore survives as
// the first token.
func Tokenize(text string) ([]Token, error) {
	src := []byte(text)
	fset := token.NewFileSet()
	file := fset.AddFile("", fset.Base(), len(src))

	var errs scanner.ErrorList
	var s scanner.Scanner
	s.Init(file, src, func(pos token.Position, msg string) {
		errs.Add(pos, msg)
	}, 0)

	var toks []Token
	for {
		_, tok, lit := s.Scan()
		if tok == token.EOF {
			break
		}
		switch {
		case tok == token.SEMICOLON && lit == "\n":
			// automatic semicolon insertion
		case tok == token.LPAREN, tok == token.RPAREN, tok == token.ASSIGN:
		case tok == token.IDENT:
			toks = append(toks, Token{Kind: TokenIdent, Text: lit})
		case tok == token.STRING:
			toks = append(toks, Token{Kind: TokenString, Text: lit})
		case tok == token.CHAR:
			toks = append(toks, Token{Kind: TokenChar, Text: lit})
		case tok == token.INT:
			toks = append(toks, Token{Kind: TokenInt, Text: lit})
		case tok == token.FLOAT, tok == token.IMAG:
			toks = append(toks, Token{Kind: TokenFloat, Text: lit})
		case tok.IsKeyword():
			// keywords are identifiers as far as annotations care
			toks = append(toks, Token{Kind: TokenIdent, Text: tok.String()})
		default:
			toks = append(toks, Token{Kind: TokenPunct, Text: tok.String()})
		}
	}

	if err := errs.Err(); err != nil {
		return nil, fmt.Errorf("tokenize %q: %w", text, err)
	}
	return toks, nil
}

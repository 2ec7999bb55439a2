// Package modelsql extracts column definitions and upstream references
// from dbt-style SQL model files.
//
// The extraction pipeline is split across files:
//   - token.go:  token types and keyword tables
//   - lexer.go:  byte-level scanner producing the token stream
//   - parser.go: projection discovery, column splitting, normalization
//   - case.go:   conditional (CASE) block analysis
//   - refs.go:   upstream reference extraction from template spans
//
// The parser operates on the token stream rather than on regular
// expressions so that nested structures (CTEs, function-call commas,
// nested conditionals, template spans) are handled by depth tracking.
// A model whose text yields no SELECT ... FROM projection produces an
// empty, degraded result instead of an error: one bad file must never
// stop an inventory build.
package modelsql

import "strings"

// Column is one output column of a model's final projection.
type Column struct {
	// Name is the lowercased column name. Uniqueness within one result
	// follows SQL reassignment semantics: a repeated name keeps its
	// original position but takes the last definition.
	Name string

	// Expression is the normalized (whitespace-collapsed, comment-free)
	// source expression producing the column. For a bare pass-through
	// this equals the column reference itself.
	Expression string

	// Transformed is true when the expression is anything other than a
	// bare column reference.
	Transformed bool

	// EnumValues holds the ordered, deduplicated literal results of a
	// conditional expression whose branches all return single literals.
	// Nil for everything else.
	EnumValues []string
}

// Result is the outcome of extracting one model's SQL text.
type Result struct {
	// Columns in SELECT-clause order.
	Columns []Column

	// References lists upstream models and sources in first-seen order,
	// deduplicated.
	References []string

	// Degraded is true when no SELECT ... FROM projection was found.
	// The result then carries no columns and no references.
	Degraded bool

	// BestEffort is true when a conditional block was unterminated and
	// had to be truncated at end of input.
	BestEffort bool
}

// Extract parses one model's SQL text. It never returns an error:
// unparseable input degrades to an empty result and malformed
// conditionals are truncated best-effort.
func Extract(input string) Result {
	p := &parser{src: input, tokens: Tokenize(input)}
	return p.extract()
}

// parser walks the token stream produced by the lexer.
type parser struct {
	src        string
	tokens     []Token
	bestEffort bool
}

func (p *parser) extract() Result {
	start, end, ok := p.projectionSpan()
	if !ok {
		return Result{Degraded: true}
	}

	var columns []Column
	index := make(map[string]int)

	for _, candidate := range splitColumns(p.tokens[start:end]) {
		col, ok := p.column(candidate)
		if !ok {
			continue
		}
		if at, seen := index[col.Name]; seen {
			// Last occurrence wins, original position kept.
			columns[at] = col
		} else {
			index[col.Name] = len(columns)
			columns = append(columns, col)
		}
	}

	return Result{
		Columns:    columns,
		References: extractReferences(p.tokens),
		BestEffort: p.bestEffort,
	}
}

// projectionSpan locates the token range (exclusive of the keywords
// themselves) between the last top-level SELECT and the final top-level
// FROM. Top-level means parenthesis depth zero, so CTE bodies and
// subqueries never contribute. Returns ok=false when the text has no
// such span.
func (p *parser) projectionSpan() (start, end int, ok bool) {
	lastFrom := -1
	depth := 0
	for i, tok := range p.tokens {
		switch tok.Type {
		case TOKEN_LPAREN:
			depth++
		case TOKEN_RPAREN:
			if depth > 0 {
				depth--
			}
		case TOKEN_FROM:
			if depth == 0 {
				lastFrom = i
			}
		}
	}
	if lastFrom < 0 {
		return 0, 0, false
	}

	lastSelect := -1
	depth = 0
	for i := 0; i < lastFrom; i++ {
		switch p.tokens[i].Type {
		case TOKEN_LPAREN:
			depth++
		case TOKEN_RPAREN:
			if depth > 0 {
				depth--
			}
		case TOKEN_SELECT:
			if depth == 0 {
				lastSelect = i
			}
		}
	}
	if lastSelect < 0 {
		return 0, 0, false
	}

	start = lastSelect + 1
	// DISTINCT / ALL qualify the projection, not the first column.
	for start < lastFrom {
		t := p.tokens[start].Type
		if t != TOKEN_DISTINCT && t != TOKEN_ALL {
			break
		}
		start++
	}
	return start, lastFrom, true
}

// splitColumns splits a projection token range into column candidates at
// parenthesis-depth-zero commas. Template and tag tokens are atomic, so
// commas inside {{ ... }} spans never split.
func splitColumns(tokens []Token) [][]Token {
	var out [][]Token
	depth := 0
	begin := 0
	for i, tok := range tokens {
		switch tok.Type {
		case TOKEN_LPAREN, TOKEN_LBRACKET:
			depth++
		case TOKEN_RPAREN, TOKEN_RBRACKET:
			if depth > 0 {
				depth--
			}
		case TOKEN_COMMA:
			if depth == 0 {
				out = append(out, tokens[begin:i])
				begin = i + 1
			}
		}
	}
	out = append(out, tokens[begin:])
	return out
}

// column builds one Column from a candidate token slice. Returns
// ok=false for empty candidates.
func (p *parser) column(tokens []Token) (Column, bool) {
	if len(tokens) == 0 {
		return Column{}, false
	}

	expr := tokens
	name := ""

	// Trailing "AS <identifier>" names the column and is stripped from
	// the expression.
	if n := len(tokens); n >= 2 && tokens[n-2].Type == TOKEN_AS && tokens[n-1].Type == TOKEN_IDENT {
		name = strings.ToLower(tokens[n-1].Literal)
		expr = tokens[:n-2]
		if len(expr) == 0 {
			return Column{}, false
		}
	}

	if expr[0].Type == TOKEN_CASE {
		cb := p.parseCase(expr)
		if name == "" {
			name = lastNameToken(p.spanText(expr))
		}
		return Column{
			Name:        name,
			Expression:  cb.expression(),
			Transformed: true,
			EnumValues:  cb.enumValues(),
		}, true
	}

	text := p.spanText(expr)
	if text == "" {
		return Column{}, false
	}
	if name == "" {
		name = lastNameToken(text)
	}
	return Column{
		Name:        name,
		Expression:  text,
		Transformed: !isBareReference(expr),
	}, true
}

// spanText returns the normalized raw source text covered by a token
// slice: comments removed and whitespace runs collapsed to single
// spaces. This is the text the comparator diffs, so two cosmetically
// different spellings of the same expression normalize identically.
func (p *parser) spanText(tokens []Token) string {
	if len(tokens) == 0 {
		return ""
	}
	lo := tokens[0].Pos.Offset
	hi := tokens[len(tokens)-1].End
	if hi > len(p.src) {
		hi = len(p.src)
	}
	if lo > hi {
		return ""
	}
	return normalizeText(p.src[lo:hi])
}

// lastNameToken implements the no-alias naming rule: the last
// whitespace-delimited token of the normalized expression, lowercased.
func lastNameToken(text string) string {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return ""
	}
	return strings.ToLower(fields[len(fields)-1])
}

// isBareReference reports whether the candidate is a plain column
// pass-through: an identifier, a qualified identifier, or a star
// selection. Anything else counts as a transformation.
func isBareReference(tokens []Token) bool {
	switch len(tokens) {
	case 1:
		return tokens[0].Type == TOKEN_IDENT || tokens[0].Type == TOKEN_STAR
	case 3:
		return tokens[0].Type == TOKEN_IDENT && tokens[1].Type == TOKEN_DOT &&
			(tokens[2].Type == TOKEN_IDENT || tokens[2].Type == TOKEN_STAR)
	default:
		return false
	}
}

// normalizeText collapses whitespace runs to single spaces and strips
// SQL comments while preserving the interior of string literals and
// quoted identifiers verbatim.
func normalizeText(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	pending := false
	i := 0

	flush := func() {
		if pending && b.Len() > 0 {
			b.WriteByte(' ')
		}
		pending = false
	}

	for i < len(s) {
		c := s[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			pending = true
			i++
		case c == '-' && i+1 < len(s) && s[i+1] == '-':
			for i < len(s) && s[i] != '\n' {
				i++
			}
			pending = true
		case c == '/' && i+1 < len(s) && s[i+1] == '*':
			i += 2
			for i < len(s) {
				if s[i] == '*' && i+1 < len(s) && s[i+1] == '/' {
					i += 2
					break
				}
				i++
			}
			pending = true
		case c == '\'' || c == '"':
			flush()
			quote := c
			b.WriteByte(c)
			i++
			for i < len(s) {
				b.WriteByte(s[i])
				if s[i] == quote {
					if i+1 < len(s) && s[i+1] == quote {
						b.WriteByte(quote)
						i += 2
						continue
					}
					i++
					break
				}
				i++
			}
		default:
			flush()
			b.WriteByte(c)
			i++
		}
	}
	return b.String()
}

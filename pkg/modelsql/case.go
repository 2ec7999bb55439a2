package modelsql

// caseBlock is the analyzed structure of one CASE expression.
type caseBlock struct {
	p        *parser
	operand  []Token // CASE <operand> WHEN form; empty for searched CASE
	branches []caseBranch
	tail     []Token // tokens after the matching END, e.g. "end + bonus"
}

// caseBranch is one WHEN/THEN or ELSE arm.
type caseBranch struct {
	cond   []Token // nil for ELSE
	result []Token
	isElse bool
}

// parseCase analyzes a candidate whose first token is CASE. The matching
// END is found by depth counting so nested conditionals in branch
// conditions or results never terminate the block early. An unterminated
// block is truncated at the end of the candidate and the whole extraction
// is flagged best-effort.
func (p *parser) parseCase(tokens []Token) *caseBlock {
	end, ok := matchingEnd(tokens)
	if !ok {
		end = len(tokens)
		p.bestEffort = true
	}

	cb := &caseBlock{p: p}
	if end+1 < len(tokens) {
		cb.tail = tokens[end+1:]
	}

	inner := tokens[1:end]

	parens := 0
	nested := 0
	cur := -1 // current branch index; -1 while reading the operand
	inCond := false
	segStart := 0

	flush := func(i int) {
		seg := inner[segStart:i]
		switch {
		case cur < 0:
			cb.operand = seg
		case inCond:
			cb.branches[cur].cond = seg
		default:
			cb.branches[cur].result = seg
		}
	}

	for i, tok := range inner {
		top := parens == 0 && nested == 0
		switch tok.Type {
		case TOKEN_LPAREN, TOKEN_LBRACKET:
			parens++
		case TOKEN_RPAREN, TOKEN_RBRACKET:
			if parens > 0 {
				parens--
			}
		case TOKEN_CASE:
			nested++
		case TOKEN_END:
			if nested > 0 {
				nested--
			}
		case TOKEN_WHEN:
			if top {
				flush(i)
				cb.branches = append(cb.branches, caseBranch{})
				cur = len(cb.branches) - 1
				inCond = true
				segStart = i + 1
			}
		case TOKEN_THEN:
			if top && inCond {
				cb.branches[cur].cond = inner[segStart:i]
				inCond = false
				segStart = i + 1
			}
		case TOKEN_ELSE:
			if top {
				flush(i)
				cb.branches = append(cb.branches, caseBranch{isElse: true})
				cur = len(cb.branches) - 1
				inCond = false
				segStart = i + 1
			}
		}
	}
	flush(len(inner))

	return cb
}

// matchingEnd returns the index of the END token closing the CASE at
// tokens[0].
func matchingEnd(tokens []Token) (int, bool) {
	depth := 0
	for i := 1; i < len(tokens); i++ {
		switch tokens[i].Type {
		case TOKEN_CASE:
			depth++
		case TOKEN_END:
			if depth == 0 {
				return i, true
			}
			depth--
		}
	}
	return 0, false
}

// expression returns the single-line reconstruction of the block:
// branches joined with " | ", each side normalized. A tail after END
// (the conditional embedded in a larger expression) is appended.
func (cb *caseBlock) expression() string {
	parts := make([]string, 0, len(cb.branches))
	for _, br := range cb.branches {
		if br.isElse {
			parts = append(parts, "ELSE "+cb.p.spanText(br.result))
			continue
		}
		parts = append(parts, "WHEN "+cb.p.spanText(br.cond)+" THEN "+cb.p.spanText(br.result))
	}

	out := "CASE"
	if len(cb.operand) > 0 {
		out += " " + cb.p.spanText(cb.operand)
	}
	if len(parts) > 0 {
		out += " " + joinBranches(parts)
	}
	out += " END"
	if len(cb.tail) > 0 {
		out += " " + cb.p.spanText(cb.tail)
	}
	return out
}

func joinBranches(parts []string) string {
	s := parts[0]
	for _, p := range parts[1:] {
		s += " | " + p
	}
	return s
}

// enumValues collects the distinct literal results across all branches,
// in branch order. It returns nil unless every branch result reduces to
// literal tokens: a branch whose result is a computed expression makes
// the whole conditional non-enumerable. Template tags wrapping
// alternative literals contribute every alternative. A bare NULL result
// contributes no value but does not disqualify the rest.
func (cb *caseBlock) enumValues() []string {
	if len(cb.branches) == 0 || len(cb.tail) > 0 {
		return nil
	}

	var values []string
	seen := make(map[string]bool)
	for _, br := range cb.branches {
		lits, ok := literalResults(br.result)
		if !ok {
			return nil
		}
		for _, v := range lits {
			if !seen[v] {
				seen[v] = true
				values = append(values, v)
			}
		}
	}
	return values
}

// literalResults reduces one branch result to its literal alternatives.
// Tag tokens ({% if %} / {% else %} / {% endif %}) are dropped; every
// remaining token must be a single quoted literal or a bare
// numeric/identifier token for the branch to be enumerable.
func literalResults(tokens []Token) ([]string, bool) {
	var lits []string
	for _, tok := range tokens {
		switch tok.Type {
		case TOKEN_TAG:
			continue
		case TOKEN_STRING, TOKEN_NUMBER, TOKEN_IDENT, TOKEN_TRUE, TOKEN_FALSE:
			lits = append(lits, tok.Literal)
		case TOKEN_NULL:
			continue
		default:
			return nil, false
		}
	}
	if len(lits) == 0 && len(tokens) == 0 {
		return nil, false
	}
	return lits, true
}

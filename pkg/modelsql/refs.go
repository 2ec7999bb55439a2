package modelsql

import "strings"

// extractReferences scans the token stream for template expressions
// calling the reference functions (ref, source) with string-literal
// arguments, and returns the referenced identifiers in first-seen
// order, deduplicated.
func extractReferences(tokens []Token) []string {
	var refs []string
	seen := make(map[string]bool)
	for _, tok := range tokens {
		if tok.Type != TOKEN_TEMPLATE {
			continue
		}
		name, ok := parseReference(tok.Literal)
		if !ok || seen[name] {
			continue
		}
		seen[name] = true
		refs = append(refs, name)
	}
	return refs
}

// parseReference recognizes "ref('model')", "ref('layer', 'model')" and
// "source('schema', 'table')" in a template span's inner text.
// Multi-argument forms join with a dot. Anything else (config, var,
// macros) is not a reference.
func parseReference(inner string) (string, bool) {
	toks := Tokenize(inner)
	if len(toks) < 5 || toks[0].Type != TOKEN_IDENT || toks[1].Type != TOKEN_LPAREN {
		return "", false
	}
	fn := strings.ToLower(toks[0].Literal)
	if fn != "ref" && fn != "source" {
		return "", false
	}

	var args []string
	i := 2
	for toks[i].Type == TOKEN_STRING {
		args = append(args, toks[i].Literal)
		i++
		if toks[i].Type != TOKEN_COMMA {
			break
		}
		i++
	}
	if len(args) == 0 || toks[i].Type != TOKEN_RPAREN {
		return "", false
	}
	return strings.Join(args, "."), true
}

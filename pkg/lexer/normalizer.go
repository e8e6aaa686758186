package lexer

import "github.com/zurustar/trace/pkg/token"

// Precedence returns the grouping depth an operator is placed at.
// Higher levels bind tighter. Kinds that are not binary operators are level 0.
func Precedence(kind token.Kind) int {
	switch kind {
	case token.Range:
		return 5
	case token.Pow:
		return 4
	case token.Mul, token.Div, token.Mod:
		return 3
	case token.Add, token.Sub:
		return 2
	case token.Gt, token.Lt, token.GtEq, token.LtEq, token.Eq, token.NotEq:
		return 1
	}
	return 0
}

// scope is one explicit group, or the base of the current statement.
type scope struct {
	insertAt int // index where synthetic "(" tokens are inserted
	saved    int // depth of the enclosing scope
}

// normalizer builds the token stream and encodes precedence in it.
// Every operator ends up at a synthetic grouping depth equal to its precedence
// level, so a left-to-right fold inside each group evaluates correctly.
type normalizer struct {
	tokens []token.Token
	depth  int
	scopes []scope
}

func newNormalizer() *normalizer {
	return &normalizer{
		tokens: make([]token.Token, 0, 32),
		scopes: []scope{{}},
	}
}

func (n *normalizer) top() *scope {
	return &n.scopes[len(n.scopes)-1]
}

func (n *normalizer) push(t token.Token) {
	n.tokens = append(n.tokens, t)
}

// operator moves the depth to the operator's level. Raising it wraps the
// previous operand (everything since the last operator) in synthetic groups;
// lowering it closes groups at the current position.
func (n *normalizer) operator(kind token.Kind) {
	level := Precedence(kind)
	s := n.top()
	for n.depth < level {
		n.depth++
		n.insert(s.insertAt, token.Synthetic(token.StartGroup, "("))
	}
	n.closeSynthetic(level)
	// the operator itself is appended at len(n.tokens), the next operand after it
	s.insertAt = len(n.tokens) + 1
}

func (n *normalizer) insert(at int, t token.Token) {
	n.tokens = append(n.tokens, token.Token{})
	copy(n.tokens[at+1:], n.tokens[at:])
	n.tokens[at] = t
}

func (n *normalizer) closeSynthetic(level int) {
	for n.depth > level {
		n.depth--
		n.push(token.Synthetic(token.EndGroup, ")"))
	}
}

// open starts a new scope for an explicit "(" that is about to be pushed.
func (n *normalizer) open() {
	n.scopes = append(n.scopes, scope{insertAt: len(n.tokens) + 1, saved: n.depth})
	n.depth = 0
}

// close ends the scope of an explicit ")" that is about to be pushed.
// An unmatched ")" keeps the base scope.
func (n *normalizer) close() {
	n.closeSynthetic(0)
	if len(n.scopes) == 1 {
		return
	}
	n.depth = n.top().saved
	n.scopes = n.scopes[:len(n.scopes)-1]
}

// closeAll closes every open group, synthetic and explicit.
func (n *normalizer) closeAll() {
	n.closeSynthetic(0)
	for len(n.scopes) > 1 {
		n.push(token.Synthetic(token.EndGroup, ")"))
		n.depth = n.top().saved
		n.scopes = n.scopes[:len(n.scopes)-1]
		n.closeSynthetic(0)
	}
}

// boundary handles a statement or separator that is about to be pushed.
// Precedence scoping never crosses it.
func (n *normalizer) boundary() {
	n.closeAll()
	n.scopes[0].insertAt = len(n.tokens) + 1
}

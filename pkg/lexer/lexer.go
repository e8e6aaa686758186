// Package lexer turns script source into the token stream executed by the VM.
//
// Tokenizing alternates between two grammars (operand expected / operator
// expected) to disambiguate symbols, and precedence is resolved while
// tokenizing by inserting synthetic grouping tokens. There is no AST.
package lexer

import (
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/zurustar/trace/pkg/token"
)

// MemoryFromArgs is the memory size of a script whose header ends in "...":
// the block is sized to the caller's argument count + 1.
const MemoryFromArgs = -1

// Result is the output of tokenizing one script.
type Result struct {
	Source     string // preprocessed source
	Tokens     []token.Token
	Params     []string
	MemorySize int // >= 0, or MemoryFromArgs
}

var (
	commentPattern    = regexp.MustCompile(`#[^\n]*`)
	whitespacePattern = regexp.MustCompile(`\s`)

	paramsHeader = regexp.MustCompile(`^\[((?:,?[a-zA-Z_]\w*)*),?(\.\.\.)?\]`)
	sizeHeader   = regexp.MustCompile(`^\[([0-9]+)\]`)
)

// Preprocess strips "#" line comments and all whitespace.
// It is idempotent, so its output can be used as a cache key.
func Preprocess(source string) string {
	s := commentPattern.ReplaceAllString(source, "")
	return whitespacePattern.ReplaceAllString(s, "")
}

// Lexer tokenizes a single script.
type Lexer struct {
	source string
	pos    int
	mode   Mode
	params []string
	norm   *normalizer
}

// New creates a new Lexer. The source is preprocessed first.
func New(source string) *Lexer {
	return &Lexer{
		source: Preprocess(source),
		mode:   ExpectOperand,
		norm:   newNormalizer(),
	}
}

// Tokenize is shorthand for New(source).Tokenize().
func Tokenize(source string) (*Result, error) {
	return New(source).Tokenize()
}

// Tokenize runs the lexer to the end of the input.
// On a syntax error the tokens produced so far are still returned, with all
// open groups closed, together with a *SyntaxError.
func (l *Lexer) Tokenize() (*Result, error) {
	result := &Result{Source: l.source}
	result.MemorySize = l.readHeader()
	result.Params = l.params

	for l.pos < len(l.source) {
		if err := l.next(); err != nil {
			l.norm.closeAll()
			result.Tokens = l.norm.tokens
			return result, err
		}
	}

	l.norm.closeAll()
	result.Tokens = l.norm.tokens
	return result, nil
}

// readHeader consumes an optional "[a,b,...]" or "[N]" header and returns the
// declared memory size.
func (l *Lexer) readHeader() int {
	rest := l.source[l.pos:]

	if m := paramsHeader.FindStringSubmatch(rest); m != nil {
		l.pos += len(m[0])
		if m[1] != "" {
			l.params = strings.Split(m[1], ",")
		}
		if m[2] == "..." {
			return MemoryFromArgs
		}
		// one slot more than the parameter count: slot 0 holds the size,
		// parameters start at slot 1
		return len(l.params) + 1
	}

	if m := sizeHeader.FindStringSubmatch(rest); m != nil {
		l.pos += len(m[0])
		size, err := strconv.Atoi(m[1])
		if err != nil {
			return 0
		}
		return size
	}

	return 0
}

// next classifies and pushes one token.
func (l *Lexer) next() error {
	rest := l.source[l.pos:]
	kind, n, ok := l.mode.Match(rest)
	if !ok {
		return &SyntaxError{Mode: l.mode, Offset: l.pos, Remaining: rest}
	}
	text := rest[:n]
	l.pos += n

	if kind == token.Beep {
		// value-neutral, and invisible to the mode and to precedence
		l.norm.push(token.Synthetic(token.Beep, text[1:len(text)-1]))
		return nil
	}

	if kind == token.Variable {
		if i := slices.Index(l.params, text); i >= 0 {
			// parameter i lives in memory slot i+1
			l.norm.push(token.Synthetic(token.Pointer, "&"))
			kind = token.Literal
			text = strconv.Itoa(i + 1)
		}
	}

	if l.mode == ExpectOperator {
		switch kind {
		case token.EndGroup, token.Statement, token.Separator, token.Increment, token.Decrement:
		default:
			l.norm.operator(kind)
		}
	}

	switch kind {
	case token.EndGroup:
		l.norm.close()
	case token.StartGroup:
		l.norm.open()
	case token.Statement, token.Separator:
		l.norm.boundary()
	}

	l.mode = l.mode.Next(kind)
	l.norm.push(token.New(kind, text))
	return nil
}

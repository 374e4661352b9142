package classify

import (
	"path/filepath"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"go.uber.org/zap"

	"github.com/justyntemme/cryptum/internal/debug"
)

// SyntaxID names a highlighting grammar, e.g. "Go" or "Rust".
type SyntaxID string

// SyntaxGuesser picks a grammar for a file from its name and the first bytes
// of its content.
type SyntaxGuesser interface {
	Guess(path string, head []byte) (SyntaxID, bool)
}

// HeadSize is how much content callers should pass to Guess.
const HeadSize = 4096

// ChromaGuesser resolves grammars through chroma's lexer registry.
type ChromaGuesser struct{}

// Guess tries the filename globs first, then the bare extension as a lexer
// alias, then content analysis.
func (ChromaGuesser) Guess(path string, head []byte) (SyntaxID, bool) {
	name := filepath.Base(path)

	lexer := lexers.Match(name)
	if lexer == nil {
		if ext := Extension(name); ext != "" {
			lexer = lexers.Get(ext)
		}
	}
	if lexer == nil && len(head) > 0 {
		lexer = lexers.Analyse(string(head))
	}
	if lexer == nil {
		debug.Log(debug.APP, "no syntax for file", zap.String("path", path))
		return "", false
	}
	return syntaxOf(lexer), true
}

func syntaxOf(l chroma.Lexer) SyntaxID {
	return SyntaxID(l.Config().Name)
}

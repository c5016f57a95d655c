package frontmatter

import (
	"errors"
	"fmt"

	"github.com/DandyLyons/frontrange/pkg/node"
)

// Parse errors.
var (
	ErrMissingOpeningDelimiter = errors.New("missing opening delimiter")
	ErrMissingClosingDelimiter = errors.New("missing closing delimiter")
	ErrPreambleNotMapping      = errors.New("front matter is not a mapping")
	ErrPreambleGrammar         = errors.New("front matter is not valid YAML")
)

// Mutation errors.
var (
	ErrKeyNotFound         = errors.New("key not found")
	ErrOldKeyNotFound      = errors.New("old key not found")
	ErrNewKeyAlreadyExists = errors.New("new key already exists")
	ErrNotAnArray          = errors.New("value is not an array")
)

// Line errors.
var (
	ErrLineOutOfRange = errors.New("line out of range")
	ErrNoSourceLines  = errors.New("document has no source lines")
)

// GrammarError wraps a composer failure with the document line it points at.
type GrammarError struct {
	// Line is the 1-based line in the whole document, or 0 when unknown.
	Line int
	Err  error
}

func (e *GrammarError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s (line %d): %v", ErrPreambleGrammar, e.Line, e.Err)
	}

	return fmt.Sprintf("%s: %v", ErrPreambleGrammar, e.Err)
}

// Is matches ErrPreambleGrammar.
func (e *GrammarError) Is(target error) bool {
	return target == ErrPreambleGrammar
}

func (e *GrammarError) Unwrap() error {
	return e.Err
}

// NotMappingError reports the kind found where a mapping was required.
type NotMappingError struct {
	Kind node.Kind
}

func (e *NotMappingError) Error() string {
	return fmt.Sprintf("%s: found %s", ErrPreambleNotMapping, e.Kind)
}

// Is matches ErrPreambleNotMapping.
func (e *NotMappingError) Is(target error) bool {
	return target == ErrPreambleNotMapping
}

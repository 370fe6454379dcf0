package rocq

import (
	"errors"
	"fmt"
)

var (
	// ErrUnterminatedModule indicates a Module header without its matching End marker.
	ErrUnterminatedModule = errors.New("unterminated module")

	// ErrUnbalancedProofBlock indicates that Proof. openers and their terminators do not pair up.
	ErrUnbalancedProofBlock = errors.New("unbalanced proof block")
)

// ModuleError reports the module whose End marker could not be found.
type ModuleError struct {
	Module string
	Offset int // byte offset of the header in the parsed text
}

func (e *ModuleError) Error() string {
	return fmt.Sprintf("module %s opened at offset %d is not closed (missing %q)", e.Module, e.Offset, "End "+e.Module+".")
}

func (e *ModuleError) Unwrap() error {
	return ErrUnterminatedModule
}

// ProofBalanceError reports mismatched proof block counts in one unit.
type ProofBalanceError struct {
	Opened int
	Closed int
}

func (e *ProofBalanceError) Error() string {
	return fmt.Sprintf("%d Proof. blocks but %d terminators", e.Opened, e.Closed)
}

func (e *ProofBalanceError) Unwrap() error {
	return ErrUnbalancedProofBlock
}

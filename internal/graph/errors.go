package graph

import (
	"errors"
	"fmt"
)

// Coarse error kinds. Every error returned by this package matches one of
// these through errors.Is.
var (
	// ErrNotFound reports an unresolved node, slot, link or type.
	ErrNotFound = errors.New("not found")
	// ErrInvalidOperation reports a structurally rejected edit.
	ErrInvalidOperation = errors.New("invalid operation")
	// ErrCapacityExceeded reports that the node-count ceiling was reached.
	ErrCapacityExceeded = errors.New("node capacity exceeded")
	// ErrExecutionFault reports a failure raised inside a node callback.
	ErrExecutionFault = errors.New("execution fault")
)

// Finer error kinds, each wrapping one of the coarse kinds above.
var (
	ErrSlotNotFound         = fmt.Errorf("slot %w", ErrNotFound)
	ErrNodeNotFound         = fmt.Errorf("node %w", ErrNotFound)
	ErrUnknownNodeType      = fmt.Errorf("node type %w", ErrNotFound)
	ErrSlotOutOfRange       = fmt.Errorf("%w: slot index out of range", ErrInvalidOperation)
	ErrSelfLoop             = fmt.Errorf("%w: node cannot connect to itself", ErrInvalidOperation)
	ErrIncompatibleTypes    = fmt.Errorf("%w: incompatible slot types", ErrInvalidOperation)
	ErrConnectionVetoed     = fmt.Errorf("%w: connection vetoed by target", ErrInvalidOperation)
	ErrDetached             = fmt.Errorf("%w: node is not part of a graph", ErrInvalidOperation)
	ErrForeignNode          = fmt.Errorf("%w: nodes belong to different graphs", ErrInvalidOperation)
	ErrNameTaken            = fmt.Errorf("%w: name already in use", ErrInvalidOperation)
	ErrNoFactory            = fmt.Errorf("%w: graph has no node factory", ErrInvalidOperation)
	ErrTriggerDepthExceeded = fmt.Errorf("%w: trigger depth exceeded", ErrExecutionFault)
)

// ExecutionError describes a failure inside a node's tick or action callback.
type ExecutionError struct {
	NodeID   NodeID
	NodeType string
	// Panic holds the recovered value when the callback panicked.
	Panic any
	Err   error
}

func (e *ExecutionError) Error() string {
	if e.Panic != nil {
		return fmt.Sprintf("node %d (%s) panicked: %v", e.NodeID, e.NodeType, e.Panic)
	}
	return fmt.Sprintf("node %d (%s) failed: %v", e.NodeID, e.NodeType, e.Err)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}

// Is makes every ExecutionError match ErrExecutionFault.
func (e *ExecutionError) Is(target error) bool {
	return target == ErrExecutionFault
}

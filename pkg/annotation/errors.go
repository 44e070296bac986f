package annotation

import (
	"errors"
	"fmt"
)

// ErrEmptyValue is returned by create operations handed an empty name or
// comment. A symbol name is never the empty string; deletion goes through
// rename with an empty replacement instead.
var ErrEmptyValue = errors.New("value must not be empty")

// ConflictError is a create operation targeting a slot that already holds a
// different value. Re-running an import over hand-curated annotations must
// be a hard error, not silent data loss.
type ConflictError struct {
	Slot     SlotKind
	Addr     uint64
	Existing string
	Proposed string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s at %#x already set to %q (use %s to replace it)",
		e.Slot, e.Addr, e.Existing, e.Slot.RenameCommand())
}

// NotFoundError is a rename operation targeting an absent slot; rename
// never silently creates.
type NotFoundError struct {
	Slot SlotKind
	Addr uint64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no %s at %#x to rename", e.Slot, e.Addr)
}

// SlotKind identifies which annotation slot an operation touched.
type SlotKind int

const (
	NameSlot SlotKind = iota
	LineCommentSlot
	FuncCommentSlot
)

func (k SlotKind) String() string {
	switch k {
	case NameSlot:
		return "name"
	case LineCommentSlot:
		return "line comment"
	case FuncCommentSlot:
		return "function comment"
	}
	return "slot"
}

// RenameCommand is the CLI command that updates this slot, used to point
// users at the right tool when a create conflicts.
func (k SlotKind) RenameCommand() string {
	if k == NameSlot {
		return "rename-name"
	}
	return "rename-comment"
}

// Package engineerr collects the engine's two unrecoverable error
// conditions (spec.md §7): an invalid project root, and a corrupt
// descriptor file whose root tag can't be parsed at all. Both are
// wrapped with github.com/pkg/errors for stack context, since they are
// one-shot, program.Program-aborting failures rather than part of the
// always-recoverable Diagnostic stream.
package engineerr

import (
	"errors"
	"fmt"

	pkgerrors "github.com/pkg/errors"

	"github.com/brightscope/bsc/sourcefile"
	"github.com/brightscope/bsc/util"
)

// InvalidRoot reports that the configured workspace root does not
// exist, isn't a directory, or can't be read.
type InvalidRoot struct {
	Root  util.Path
	Cause error
}

func (e *InvalidRoot) Error() string {
	return fmt.Sprintf("invalid project root %q: %v", e.Root, e.Cause)
}

func (e *InvalidRoot) Unwrap() error { return e.Cause }

// NewInvalidRoot wraps cause with stack context and returns it as the
// engine's InvalidRoot condition.
func NewInvalidRoot(root util.Path, cause error) error {
	return pkgerrors.WithStack(&InvalidRoot{Root: root, Cause: cause})
}

// CorruptDescriptor is the engine-level surfacing of
// sourcefile.CorruptDescriptorError: the same condition, wrapped with
// stack context at the point program.Program gives up on the batch
// load rather than reporting it as a per-file diagnostic.
type CorruptDescriptor struct {
	Path  util.Path
	Cause error
}

func (e *CorruptDescriptor) Error() string {
	return fmt.Sprintf("corrupt descriptor %q: %v", e.Path, e.Cause)
}

func (e *CorruptDescriptor) Unwrap() error { return e.Cause }

// NewCorruptDescriptor wraps a sourcefile.CorruptDescriptorError (or
// any other descriptor-parse failure) with stack context.
func NewCorruptDescriptor(path util.Path, cause error) error {
	return pkgerrors.WithStack(&CorruptDescriptor{Path: path, Cause: cause})
}

// FromDescriptorParseError converts a sourcefile parse error into the
// engine's CorruptDescriptor condition if it names one, else returns
// err unchanged (e.g. a plain I/O error doesn't get this treatment).
func FromDescriptorParseError(path util.Path, err error) error {
	if err == nil {
		return nil
	}
	var cErr *sourcefile.CorruptDescriptorError
	if errors.As(err, &cErr) {
		return NewCorruptDescriptor(path, err)
	}
	return err
}

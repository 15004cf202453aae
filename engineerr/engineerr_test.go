package engineerr_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brightscope/bsc/engineerr"
	"github.com/brightscope/bsc/sourcefile"
)

func TestInvalidRootUnwraps(t *testing.T) {
	cause := errors.New("no such directory")
	err := engineerr.NewInvalidRoot("/nonexistent", cause)

	var ir *engineerr.InvalidRoot
	require.ErrorAs(t, err, &ir)
	assert.Equal(t, "/nonexistent", ir.Root)
	assert.ErrorIs(t, err, cause)
}

func TestFromDescriptorParseErrorWrapsCorruptDescriptor(t *testing.T) {
	_, parseErr := sourcefile.NewDescriptorFile("/proj/bad.xml", "bad.xml", "<component name=")
	require.Error(t, parseErr)

	wrapped := engineerr.FromDescriptorParseError("/proj/bad.xml", parseErr)
	var cd *engineerr.CorruptDescriptor
	require.ErrorAs(t, wrapped, &cd)
	assert.Equal(t, "/proj/bad.xml", cd.Path)
}

func TestFromDescriptorParseErrorPassesThroughOtherErrors(t *testing.T) {
	other := errors.New("disk full")
	got := engineerr.FromDescriptorParseError("/proj/x.xml", other)
	assert.Same(t, other, got)
}

func TestFromDescriptorParseErrorNilIsNil(t *testing.T) {
	assert.NoError(t, engineerr.FromDescriptorParseError("/proj/x.xml", nil))
}

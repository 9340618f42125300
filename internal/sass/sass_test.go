package sass

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDartSass_MissingBinary(t *testing.T) {
	t.Parallel()

	d := NewDartSass(filepath.Join(t.TempDir(), "no-such-sass"), 0)
	defer d.Close()

	_, err := d.Compile(context.Background(), Request{Source: "a { b: c }", URL: "file:///a.scss"})

	require.Error(t, err)
	assert.ErrorContains(t, err, "failed to start Dart Sass")
}

func TestDartSass_CompileAfterClose(t *testing.T) {
	t.Parallel()

	d := NewDartSass("", 0)
	require.NoError(t, d.Close())

	_, err := d.Compile(context.Background(), Request{Source: "a { b: c }"})

	assert.ErrorIs(t, err, ErrClosed)
}

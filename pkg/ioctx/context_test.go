package ioctx

import (
	"bytes"
	"context"
	"io"
	"testing"

	"gotest.tools/v3/assert"
)

func TestWriters(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, Stdout(ctx), io.Discard)
	assert.Equal(t, Stderr(ctx), io.Discard)

	var out, errs bytes.Buffer
	ctx = WithStdout(ctx, &out)
	ctx = WithStderr(ctx, &errs)
	Stdout(ctx).Write([]byte("out")) //nolint:errcheck
	Stderr(ctx).Write([]byte("err")) //nolint:errcheck
	assert.Equal(t, out.String(), "out")
	assert.Equal(t, errs.String(), "err")
}

func TestColor(t *testing.T) {
	ctx := WithStderr(context.Background(), &bytes.Buffer{})
	assert.Assert(t, !Color(ctx))
	assert.Assert(t, Color(WithColor(ctx, true)))
	assert.Assert(t, !Color(WithColor(ctx, false)))
}

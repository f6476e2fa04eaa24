package application

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/iwat/iostream/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrite(t *testing.T) {
	app := createTestApp(t, nil)
	app.writeFile(t, "output.txt", "previous content that is longer than the payload, to check truncation")

	result, err := app.Write(t.Context())
	require.NoError(t, err)
	assert.True(t, result.OK())
	assert.Equal(t, domain.StageWrite, result.Stage)
	assert.Equal(t, int64(len(domain.DefaultPayload)), result.Bytes)
	assert.NotEmpty(t, result.Digest)

	assert.Equal(t, domain.DefaultPayload, app.readFile(t, "output.txt"))
	assert.Equal(t, "Successfully wrote to the file: output.txt\n", app.stdout.String())
}

func TestWriteOpenFailure(t *testing.T) {
	app := createTestApp(t, nil)
	app.App.fs = &failingFS{Filesystem: app.fs, path: "output.txt", err: fs.ErrPermission}

	result, err := app.Write(t.Context())
	require.ErrorIs(t, err, fs.ErrPermission)

	var ioErr *domain.IOError
	require.ErrorAs(t, err, &ioErr)
	assert.Equal(t, domain.OpOpen, ioErr.Op)
	assert.False(t, result.OK())
	assert.Empty(t, result.Digest)
	assert.Empty(t, app.stdout.String())
}

func TestReadPrintsEveryByte(t *testing.T) {
	app := createTestApp(t, nil)
	app.writeFile(t, "input.txt", "AB")

	result, err := app.Read(t.Context())
	require.NoError(t, err)
	assert.Equal(t, int64(2), result.Bytes)
	assert.Equal(t, "\nReading from file: input.txt\nFile content:\nAB", app.stdout.String())
}

func TestReadIsRepeatable(t *testing.T) {
	app := createTestApp(t, nil)
	app.writeFile(t, "input.txt", "line one\nline two\n\x00\xff")

	first, err := app.Read(t.Context())
	require.NoError(t, err)
	firstOut := app.stdout.String()

	app.stdout.Reset()
	second, err := app.Read(t.Context())
	require.NoError(t, err)

	assert.Equal(t, firstOut, app.stdout.String())
	assert.Equal(t, first.Digest, second.Digest)
	assert.Equal(t, first.Bytes, second.Bytes)
}

func TestReadStdoutFailure(t *testing.T) {
	app := createTestApp(t, nil)
	app.writeFile(t, "input.txt", "AB")
	app.App.stdout = brokenWriter{}

	result, err := app.Read(t.Context())
	require.ErrorIs(t, err, errBrokenStdout)

	var ioErr *domain.IOError
	require.ErrorAs(t, err, &ioErr)
	assert.Equal(t, domain.OpWrite, ioErr.Op)
	assert.Equal(t, "stdout", ioErr.Path)
	assert.Zero(t, result.Bytes)
}

func TestWriteThenReadRoundTrip(t *testing.T) {
	app := createTestApp(t, nil)
	app.opts.Payload = "round trip\nwith ünïcode\n"
	app.opts.Input = app.opts.Output

	_, err := app.Write(t.Context())
	require.NoError(t, err)
	app.stdout.Reset()

	_, err = app.Read(t.Context())
	require.NoError(t, err)

	header := "\nReading from file: output.txt\nFile content:\n"
	require.True(t, strings.HasPrefix(app.stdout.String(), header))
	assert.Equal(t, app.opts.Payload, strings.TrimPrefix(app.stdout.String(), header))
}

func TestReadMissingInput(t *testing.T) {
	app := createTestApp(t, nil)

	result, err := app.Read(t.Context())
	require.ErrorIs(t, err, fs.ErrNotExist)
	assert.False(t, result.OK())
	assert.Zero(t, result.Bytes)
	assert.Empty(t, app.stdout.String())
}

func TestCopyAppends(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"two bytes", "AB"},
		{"exactly one buffer", strings.Repeat("x", domain.CopyBufferSize)},
		{"several buffers", strings.Repeat("0123456789", 500)},
		{"binary", "\x00\x01\xfe\xff\r\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := createTestApp(t, nil)
			prior := "prior output"
			app.writeFile(t, "output.txt", prior)
			app.writeFile(t, "input.txt", tt.input)

			result, err := app.Copy(t.Context())
			require.NoError(t, err)
			assert.Equal(t, int64(len(tt.input)), result.Bytes)

			assert.Equal(t, prior+domain.CopySeparator+tt.input, app.readFile(t, "output.txt"))
			assert.Equal(t, tt.input, app.readFile(t, "input.txt"))
			assert.Equal(t,
				"\n\nCopying content from input.txt to output.txt\nFile copied successfully!\n",
				app.stdout.String())
		})
	}
}

func TestCopySmallBuffer(t *testing.T) {
	app := createTestApp(t, nil)
	app.opts.BufferSize = 3
	app.writeFile(t, "input.txt", "abcdefgh")

	_, err := app.Copy(t.Context())
	require.NoError(t, err)
	assert.Equal(t, domain.CopySeparator+"abcdefgh", app.readFile(t, "output.txt"))
}

func TestCopyCreatesMissingOutput(t *testing.T) {
	app := createTestApp(t, nil)
	app.writeFile(t, "input.txt", "AB")

	_, err := app.Copy(t.Context())
	require.NoError(t, err)
	assert.Equal(t, domain.CopySeparator+"AB", app.readFile(t, "output.txt"))
}

func TestCopyMissingInputLeavesOutput(t *testing.T) {
	app := createTestApp(t, nil)
	app.writeFile(t, "output.txt", "untouched")

	result, err := app.Copy(t.Context())
	require.ErrorIs(t, err, fs.ErrNotExist)
	assert.False(t, result.OK())
	assert.Equal(t, "untouched", app.readFile(t, "output.txt"))
	assert.Empty(t, app.stdout.String())
}

func TestPrintLines(t *testing.T) {
	app := createTestApp(t, nil)
	content := "first\r\nsecond\n\nlast"
	app.writeFile(t, "output.txt", content)

	result, err := app.PrintLines(t.Context())
	require.NoError(t, err)
	assert.Equal(t, int64(len(content)), result.Bytes)
	assert.Equal(t, "\nFinal content of output.txt:\nfirst\nsecond\n\nlast\n", app.stdout.String())
}

func TestPrintLinesMissingOutput(t *testing.T) {
	app := createTestApp(t, nil)

	_, err := app.PrintLines(t.Context())
	require.ErrorIs(t, err, fs.ErrNotExist)
	assert.Equal(t, "\nFinal content of output.txt:\n", app.stdout.String())
}

func TestDigestMatchesAcrossStages(t *testing.T) {
	app := createTestApp(t, nil)
	app.writeFile(t, "input.txt", "same bytes")

	read, err := app.Read(t.Context())
	require.NoError(t, err)
	copied, err := app.Copy(t.Context())
	require.NoError(t, err)
	assert.Equal(t, read.Digest, copied.Digest)

	app.writeFile(t, "output.txt", "same bytes")
	lines, err := app.PrintLines(t.Context())
	require.NoError(t, err)
	assert.Equal(t, read.Digest, lines.Digest)
}

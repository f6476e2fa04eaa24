package application

import (
	"context"
	"fmt"
	"hash"
	"io"
	"os"

	"github.com/cespare/xxhash"
	"github.com/dustin/go-humanize"
	"github.com/iwat/iostream/internal/domain"
	"github.com/miolini/datacounter"
)

func (app *App) newResult(stage domain.Stage, path string) *domain.StageResult {
	return &domain.StageResult{
		Stage:     stage,
		Path:      path,
		StartedAt: app.now().UTC(),
	}
}

// finish closes result with the outcome held in err
func (app *App) finish(result *domain.StageResult, err *error) {
	result.FinishedAt = app.now().UTC()
	if *err != nil {
		result.Error = (*err).Error()
		result.Digest = ""
		return
	}
	app.logger.Debug("stage finished",
		"stage", result.Stage,
		"path", result.Path,
		"size", humanize.Bytes(uint64(result.Bytes)),
		"digest", result.Digest)
}

func closeHandle(c io.Closer, stage domain.Stage, path string, err *error) {
	if cerr := c.Close(); cerr != nil && *err == nil {
		*err = &domain.IOError{Stage: stage, Op: domain.OpClose, Path: path, Err: cerr}
	}
}

func digest(h hash.Hash64, n int64) string {
	if n == 0 {
		return ""
	}
	return fmt.Sprintf("%016x", h.Sum64())
}

func (app *App) println(a ...any) {
	fmt.Fprintln(app.stdout, a...)
}

// Write truncates the output file and writes the payload to it
func (app *App) Write(ctx context.Context) (result *domain.StageResult, err error) {
	path := app.opts.Output
	result = app.newResult(domain.StageWrite, path)
	defer app.finish(result, &err)

	f, err := app.fs.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return result, &domain.IOError{Stage: domain.StageWrite, Op: domain.OpOpen, Path: path, Err: err}
	}
	defer closeHandle(f, domain.StageWrite, path, &err)

	payload := []byte(app.opts.Payload)
	n, err := f.Write(payload)
	result.Bytes = int64(n)
	if err != nil {
		return result, &domain.IOError{Stage: domain.StageWrite, Op: domain.OpWrite, Path: path, Err: err}
	}
	result.Digest = digest(xxhashOf(payload), result.Bytes)

	app.println("Successfully wrote to the file:", path)
	return result, nil
}

// Read prints the input file one byte at a time
func (app *App) Read(ctx context.Context) (result *domain.StageResult, err error) {
	path := app.opts.Input
	result = app.newResult(domain.StageRead, path)
	defer app.finish(result, &err)

	f, err := app.fs.Open(path)
	if err != nil {
		return result, &domain.IOError{Stage: domain.StageRead, Op: domain.OpOpen, Path: path, Err: err}
	}
	defer closeHandle(f, domain.StageRead, path, &err)

	app.println("\nReading from file:", path)
	app.println("File content:")

	h := xxhash.New()
	one := make([]byte, 1)
	for b, rerr := range Bytes(f) {
		if rerr != nil {
			return result, &domain.IOError{Stage: domain.StageRead, Op: domain.OpRead, Path: path, Err: rerr}
		}
		one[0] = b
		if _, werr := app.stdout.Write(one); werr != nil {
			return result, &domain.IOError{Stage: domain.StageRead, Op: domain.OpWrite, Path: "stdout", Err: werr}
		}
		h.Write(one)
		result.Bytes++
	}
	result.Digest = digest(h, result.Bytes)
	return result, nil
}

// Copy appends the separator and then the whole input file to the output
// file through a fixed size buffer. Bytes already appended when a failure
// occurs stay in the output file.
func (app *App) Copy(ctx context.Context) (result *domain.StageResult, err error) {
	in, out := app.opts.Input, app.opts.Output
	result = app.newResult(domain.StageCopy, in)
	defer app.finish(result, &err)

	src, err := app.fs.Open(in)
	if err != nil {
		return result, &domain.IOError{Stage: domain.StageCopy, Op: domain.OpOpen, Path: in, Err: err}
	}
	defer closeHandle(src, domain.StageCopy, in, &err)

	dst, err := app.fs.OpenFile(out, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		return result, &domain.IOError{Stage: domain.StageCopy, Op: domain.OpOpen, Path: out, Err: err}
	}
	defer closeHandle(dst, domain.StageCopy, out, &err)

	app.println("\n\nCopying content from", in, "to", out)

	if _, err := io.WriteString(dst, domain.CopySeparator); err != nil {
		return result, &domain.IOError{Stage: domain.StageCopy, Op: domain.OpWrite, Path: out, Err: err}
	}

	counter := datacounter.NewWriterCounter(dst)
	h := xxhash.New()
	buf := make([]byte, app.opts.BufferSize)
	for {
		n, rerr := src.Read(buf)
		if n > 0 {
			_, werr := counter.Write(buf[:n])
			result.Bytes = int64(counter.Count())
			if werr != nil {
				return result, &domain.IOError{Stage: domain.StageCopy, Op: domain.OpWrite, Path: out, Err: werr}
			}
			h.Write(buf[:n])
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return result, &domain.IOError{Stage: domain.StageCopy, Op: domain.OpRead, Path: in, Err: rerr}
		}
	}
	result.Digest = digest(h, result.Bytes)

	app.println("File copied successfully!")
	return result, nil
}

// PrintLines prints the output file line by line
func (app *App) PrintLines(ctx context.Context) (result *domain.StageResult, err error) {
	path := app.opts.Output
	result = app.newResult(domain.StageLines, path)
	defer app.finish(result, &err)

	app.println("\nFinal content of " + path + ":")

	f, err := app.fs.Open(path)
	if err != nil {
		return result, &domain.IOError{Stage: domain.StageLines, Op: domain.OpOpen, Path: path, Err: err}
	}
	defer closeHandle(f, domain.StageLines, path, &err)

	counter := datacounter.NewReaderCounter(f)
	h := xxhash.New()
	for line, rerr := range Lines(io.TeeReader(counter, h)) {
		if rerr != nil {
			return result, &domain.IOError{Stage: domain.StageLines, Op: domain.OpRead, Path: path, Err: rerr}
		}
		app.println(line)
	}
	result.Bytes = int64(counter.Count())
	result.Digest = digest(h, result.Bytes)
	return result, nil
}

func xxhashOf(data []byte) hash.Hash64 {
	h := xxhash.New()
	h.Write(data)
	return h
}

package imgresize

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

// BufferedCSV implements Outputer interface. CSV report file with write buffer.
type BufferedCSV struct {
	mux                 sync.Mutex
	buf                 []string
	file                *os.File
	isHeadWriteRequired bool
}

// DefaultBufferLen defines default output buffer length.
const DefaultBufferLen = 10

// NewBufferedCSV returns new BufferedCSV instance. If size < 2, DefaultBufferLen (10) will be assigned.
func NewBufferedCSV(size int) *BufferedCSV {
	if size < 2 {
		size = DefaultBufferLen
	}
	return &BufferedCSV{buf: make([]string, 0, size)}
}

// Open creates file or appends if file is exist. CSV header writes only into empty file.
func (out *BufferedCSV) Open(fname string) error {

	var err error
	out.file, err = os.OpenFile(fname, os.O_CREATE|os.O_WRONLY, 0666)
	if err != nil {
		return err
	}

	flen, err := out.file.Seek(0, io.SeekEnd)
	if err != nil {
		_ = out.file.Close()
		out.file = nil
		return err
	}

	out.isHeadWriteRequired = (flen == 0)

	return nil
}

// Save adds Resulter to the buffer and flushes buffer to the file if buffer length reached the limit.
func (out *BufferedCSV) Save(res Resulter) error {

	out.mux.Lock()
	defer out.mux.Unlock()

	if out.file == nil {
		// ignore, if Save() is called after Close().
		return nil
	}

	if out.isHeadWriteRequired {
		// applies only at the first Save() call.
		out.buf = append(out.buf, res.Header())
		out.isHeadWriteRequired = false
	}

	out.buf = append(out.buf, res.Result())
	if len(out.buf) < cap(out.buf) {
		return nil
	}

	if _, err := out.file.WriteString(strings.Join(out.buf, "")); err != nil {
		return err
	}

	out.buf = out.buf[0:0:cap(out.buf)]
	return nil
}

// Close flushes to the output file unsaved buffer and closes file.
func (out *BufferedCSV) Close() error {
	out.mux.Lock()
	defer out.mux.Unlock()

	if out.file == nil {
		return nil
	}

	_, err := out.file.WriteString(strings.Join(out.buf, ""))
	if err == nil {
		err = out.file.Close()
	} else {
		// return error related to WriteString
		_ = out.file.Close()
	}

	out.buf = out.buf[:0]
	out.file = nil
	return err
}

// TextOutput implements Outputer interface. Writes one human readable line
// per result: successes to stdout writer, failures to stderr writer.
type TextOutput struct {
	mux    sync.Mutex
	stdout io.Writer
	stderr io.Writer
}

// NewTextOutput returns TextOutput instance. Nil writers default to os.Stdout
// and os.Stderr.
func NewTextOutput(stdout, stderr io.Writer) *TextOutput {
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}
	return &TextOutput{stdout: stdout, stderr: stderr}
}

// Save implements interface Outputer.
func (out *TextOutput) Save(res Resulter) error {
	out.mux.Lock()
	defer out.mux.Unlock()

	w := out.stdout
	if o, ok := res.(*Outcome); ok && !o.OK() {
		w = out.stderr
	}

	_, err := fmt.Fprintln(w, res)
	return err
}

// Close implements interface Outputer. Nothing to flush.
func (out *TextOutput) Close() error {
	return nil
}

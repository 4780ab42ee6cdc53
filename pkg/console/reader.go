package console

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// LineReader yields one line of user input per call and io.EOF when input ends.
type LineReader interface {
	ReadLine() (string, error)
}

// TerminalReader reads lines from an interactive terminal with line editing.
// The terminal is only in raw mode while a line is being read.
type TerminalReader struct {
	fd       int
	terminal *term.Terminal
}

func NewTerminalReader(tty *os.File, prompt string) *TerminalReader {
	return &TerminalReader{
		fd:       int(tty.Fd()),
		terminal: term.NewTerminal(tty, prompt),
	}
}

// Writer returns the terminal for output that must not garble the prompt.
func (r *TerminalReader) Writer() io.Writer {
	return r.terminal
}

func (r *TerminalReader) ReadLine() (string, error) {
	oldState, err := term.MakeRaw(r.fd)
	if err != nil {
		return "", err
	}

	width, height, err := term.GetSize(r.fd)
	if err != nil {
		term.Restore(r.fd, oldState)
		return "", err
	}
	r.terminal.SetSize(width, height)

	line, err := r.terminal.ReadLine()
	if restoreErr := term.Restore(r.fd, oldState); err == nil {
		err = restoreErr
	}
	return line, err
}

// IsTerminal reports whether f is connected to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// DefaultMaxLineLength bounds a single line of piped input.
const DefaultMaxLineLength = 1 << 20

// ErrLineTooLong is returned for a line longer than the reader's limit. The line
// is consumed, so the next ReadLine continues with the following line.
var ErrLineTooLong = errors.New("input line too long")

// StreamReader reads newline-separated input such as a pipe.
type StreamReader struct {
	reader        *bufio.Reader
	MaxLineLength int
}

func NewStreamReader(in io.Reader) *StreamReader {
	return &StreamReader{reader: bufio.NewReader(in), MaxLineLength: DefaultMaxLineLength}
}

func (r *StreamReader) ReadLine() (string, error) {
	limit := r.MaxLineLength
	if limit <= 0 {
		limit = DefaultMaxLineLength
	}

	var line []byte
	length := 0
	tooLong := false
	for {
		chunk, err := r.reader.ReadSlice('\n')
		length += len(chunk)
		if !tooLong {
			if len(line)+len(chunk) > limit+len("\r\n") {
				tooLong = true
				line = nil
			} else {
				line = append(line, chunk...)
			}
		}

		if err == bufio.ErrBufferFull {
			continue
		}
		if err == io.EOF {
			if length == 0 {
				return "", io.EOF
			}
			break
		}
		if err != nil {
			return "", err
		}
		break
	}

	text := strings.TrimRight(string(line), "\r\n")
	if tooLong || len(text) > limit {
		return "", fmt.Errorf("%w: %d bytes, limit %d", ErrLineTooLong, length, limit)
	}
	return text, nil
}

// OnceReader yields a single message and then io.EOF.
type OnceReader struct {
	message string
	done    bool
}

func NewOnceReader(message string) *OnceReader {
	return &OnceReader{message: message}
}

func (r *OnceReader) ReadLine() (string, error) {
	if r.done {
		return "", io.EOF
	}
	r.done = true
	return r.message, nil
}

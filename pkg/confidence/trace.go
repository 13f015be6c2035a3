package confidence

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/sam-brownlow/remote-doorbell-intercom/pkg/audio"
)

// Trace is a file-backed [Input] over pre-computed confidence values, one
// block per line. Blank lines and lines starting with '#' are skipped. When a
// line has several whitespace- or comma-separated fields the last one is the
// confidence, so "time confidence" exports from pitch tools read directly.
type Trace struct {
	name string
	open func() (io.ReadCloser, error)

	lc      audio.Lifecycle
	rc      io.ReadCloser
	scanner *bufio.Scanner
	line    int
	read    int

	// peeked holds a value read ahead by Exhausted.
	peeked    bool
	peekValue float64
	peekErr   error
	done      bool
}

// NewTrace returns a closed trace over the file at path.
func NewTrace(path string) *Trace {
	return &Trace{
		name: path,
		open: func() (io.ReadCloser, error) { return os.Open(path) },
	}
}

// NewTraceReader returns a closed trace over r. Closing the trace does not
// close r.
func NewTraceReader(name string, r io.Reader) *Trace {
	return &Trace{
		name: name,
		open: func() (io.ReadCloser, error) { return io.NopCloser(r), nil },
	}
}

// Open implements [audio.Resource].
func (t *Trace) Open() error {
	return t.lc.Open(func() error {
		rc, err := t.open()
		if err != nil {
			return fmt.Errorf("confidence: open trace %q: %w", t.name, err)
		}
		t.rc = rc
		t.scanner = bufio.NewScanner(rc)
		t.line, t.read = 0, 0
		t.peeked, t.done = false, false
		return nil
	})
}

// Close implements [audio.Resource].
func (t *Trace) Close() error {
	return t.lc.Close(func() error {
		rc := t.rc
		t.rc, t.scanner = nil, nil
		return rc.Close()
	})
}

// Next implements [Source].
func (t *Trace) Next() (float64, error) {
	if err := t.lc.Require("confidence: trace next"); err != nil {
		return 0, err
	}
	if t.peeked {
		t.peeked = false
		if t.peekErr == nil {
			t.read++
		}
		return t.peekValue, t.peekErr
	}
	v, err := t.scan()
	if err == nil {
		t.read++
	}
	return v, err
}

// Exhausted implements [Source]. It may read ahead one line to find out.
func (t *Trace) Exhausted() bool {
	if t.done {
		return true
	}
	if t.scanner == nil {
		return false
	}
	if !t.peeked {
		t.peekValue, t.peekErr = t.scan()
		t.peeked = true
	}
	return t.peekErr == io.EOF
}

// Read returns how many values Next has returned since Open.
func (t *Trace) Read() int {
	return t.read
}

func (t *Trace) scan() (float64, error) {
	if t.done {
		return 0, io.EOF
	}
	for t.scanner.Scan() {
		t.line++
		text := strings.TrimSpace(t.scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.FieldsFunc(text, func(r rune) bool {
			return r == ',' || r == ' ' || r == '\t'
		})
		if len(fields) == 0 {
			continue
		}
		v, err := strconv.ParseFloat(fields[len(fields)-1], 64)
		if err != nil {
			return 0, fmt.Errorf("confidence: trace %q line %d: %w", t.name, t.line, err)
		}
		return v, nil
	}
	if err := t.scanner.Err(); err != nil {
		return 0, fmt.Errorf("confidence: trace %q: %w", t.name, err)
	}
	t.done = true
	return 0, io.EOF
}

// String describes the trace for log output.
func (t *Trace) String() string {
	return fmt.Sprintf("confidence.Trace(%q, state=%s, read=%d)", t.name, t.lc.State(), t.read)
}

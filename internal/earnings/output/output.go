package output

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/renameio/v2"
)

// FileName returns the output file of `date` inside `dir`.
func FileName(dir string, date time.Time) string {
	return filepath.Join(dir, fmt.Sprintf("earnings-%s.csv", date.Format("2006-01-02")))
}

// LineWriter receives the formatted records of a single day. Nothing is visible
// at the final path until Commit is called.
type LineWriter interface {
	WriteLine(line string) error
	// Commit flushes and publishes the file.
	Commit() error
	// Discard drops everything written so far, it is a no-op after Commit.
	Discard() error
}

// Sink creates a LineWriter per day.
type Sink interface {
	Create(date time.Time) (LineWriter, error)
}

// FileSink writes every day into its own file under Dir.
type FileSink struct {
	Dir string
}

func (s FileSink) Create(date time.Time) (LineWriter, error) {
	err := os.MkdirAll(s.Dir, 0755)
	if err != nil {
		return nil, err
	}

	final := FileName(s.Dir, date)
	f, err := renameio.NewPendingFile(
		final,
		renameio.WithTempDir(s.Dir),
		renameio.WithPermissions(0644),
	)
	if err != nil {
		return nil, err
	}
	return &fileWriter{
		file:   f,
		buffer: bufio.NewWriter(f),
		final:  final,
	}, nil
}

type fileWriter struct {
	file   *renameio.PendingFile
	buffer *bufio.Writer
	final  string
	done   bool
}

func (w *fileWriter) WriteLine(line string) error {
	if w.done {
		return fmt.Errorf("write to %s after it was closed", w.final)
	}
	_, err := w.buffer.WriteString(line)
	if err != nil {
		return err
	}
	return w.buffer.WriteByte('\n')
}

func (w *fileWriter) Commit() error {
	if w.done {
		return nil
	}
	w.done = true

	err := w.buffer.Flush()
	if err != nil {
		return errors.Join(err, w.file.Cleanup())
	}
	err = w.file.CloseAtomicallyReplace()
	if err != nil {
		return errors.Join(err, w.file.Cleanup())
	}
	return nil
}

func (w *fileWriter) Discard() error {
	if w.done {
		return nil
	}
	w.done = true
	return w.file.Cleanup()
}

// MemorySink keeps every committed day in memory.
type MemorySink struct {
	lock sync.Mutex
	days map[string][]string
}

func NewMemorySink() *MemorySink {
	return &MemorySink{days: make(map[string][]string)}
}

// Lines returns the committed lines of the day `key` (YYYY-MM-DD).
func (s *MemorySink) Lines(key string) []string {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.days[key]
}

// Len returns the number of committed days.
func (s *MemorySink) Len() int {
	s.lock.Lock()
	defer s.lock.Unlock()
	return len(s.days)
}

func (s *MemorySink) Create(date time.Time) (LineWriter, error) {
	return &memoryWriter{sink: s, key: date.Format("2006-01-02")}, nil
}

type memoryWriter struct {
	sink  *MemorySink
	key   string
	lines []string
	done  bool
}

func (w *memoryWriter) WriteLine(line string) error {
	w.lines = append(w.lines, line)
	return nil
}

func (w *memoryWriter) Commit() error {
	if w.done {
		return nil
	}
	w.done = true

	w.sink.lock.Lock()
	defer w.sink.lock.Unlock()
	w.sink.days[w.key] = append([]string{}, w.lines...)
	return nil
}

func (w *memoryWriter) Discard() error {
	w.done = true
	return nil
}

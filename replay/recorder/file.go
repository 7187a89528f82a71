package recorder

import (
	"bufio"
	"fmt"
	"os"

	"github.com/Fidelio-foundation/Fidelio/replay"
)

// File appends one JSON line per action to a log file, using the same
// codec as the wire so recorded files can be replayed verbatim.
type File struct {
	file    *os.File
	writer  *bufio.Writer
	encoder *replay.Encoder
}

// NewFile opens the log file for appending, creating it if needed.
func NewFile(path string) (*File, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open action log %s; %s", path, err)
	}
	writer := bufio.NewWriter(file)
	return &File{
		file:    file,
		writer:  writer,
		encoder: replay.NewEncoder(writer),
	}, nil
}

func (f *File) Record(action *replay.Action) error {
	return f.encoder.Encode(action)
}

// Close flushes buffered lines and closes the file.
func (f *File) Close() error {
	if err := f.writer.Flush(); err != nil {
		_ = f.file.Close()
		return err
	}
	return f.file.Close()
}

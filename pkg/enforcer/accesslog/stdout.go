//
//  Copyright © Manetu Inc. All rights reserved.
//

package accesslog

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Options configures the behavior of access log output.
type Options struct {
	// PrettyPrint enables indented multi-line JSON output. When false
	// (default), output is compact single-line JSON.
	PrettyPrint bool
}

// IoWriterFactory creates [Stream] instances that write to an [io.Writer].
type IoWriterFactory struct {
	writer  io.Writer
	options Options
}

// IoWriterStream writes audit records as JSON to an [io.Writer], one record
// per line. The format suits log aggregation systems and command-line
// tools. Writes are atomic at the line level.
type IoWriterStream struct {
	writer  io.Writer
	options Options
}

// NewStdoutFactory creates a [Factory] that writes audit records to stdout.
// This is the default used by the enforcer when no access log is
// configured.
func NewStdoutFactory() Factory {
	return NewIoWriterFactory(os.Stdout)
}

// NewIoWriterFactory creates a [Factory] that writes audit records to the
// specified writer, e.g. a file or buffer.
func NewIoWriterFactory(w io.Writer) Factory {
	return NewIoWriterFactoryWithOptions(w, Options{})
}

// NewIoWriterFactoryWithOptions creates a [Factory] with explicit output
// formatting options.
func NewIoWriterFactoryWithOptions(w io.Writer, opts Options) Factory {
	return &IoWriterFactory{writer: w, options: opts}
}

// NewStream creates a new [IoWriterStream] writing to the configured writer.
func (f *IoWriterFactory) NewStream() (Stream, error) {
	return &IoWriterStream{writer: f.writer, options: f.options}, nil
}

// Send marshals the record to JSON and writes it followed by a newline.
//
// Write errors are not surfaced beyond the return value; the enforcer must
// not fail authorization decisions due to logging issues.
func (s *IoWriterStream) Send(record *Record) error {
	var (
		output []byte
		err    error
	)
	if s.options.PrettyPrint {
		output, err = json.MarshalIndent(record, "", "  ")
	} else {
		output, err = json.Marshal(record)
	}
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintln(s.writer, string(output))
	return nil
}

// Close is a no-op; the caller owns the underlying writer.
func (s *IoWriterStream) Close() {}

package output

import (
	"bufio"
	"encoding/json"
	"io"
)

// jsonWriter buffers reports and writes them on Close: a single report
// as an object, several as an array.
type jsonWriter struct {
	w       *bufio.Writer
	reports []Report
}

func newJSONWriter(w io.Writer) *jsonWriter {
	return &jsonWriter{w: bufio.NewWriter(w)}
}

func (j *jsonWriter) Write(r Report) error {
	j.reports = append(j.reports, r)
	return nil
}

func (j *jsonWriter) Close() error {
	enc := json.NewEncoder(j.w)
	enc.SetIndent("", "  ")

	var err error
	if len(j.reports) == 1 {
		err = enc.Encode(j.reports[0])
	} else {
		err = enc.Encode(j.reports)
	}
	if err != nil {
		return err
	}
	return j.w.Flush()
}

// jsonlWriter streams one report per line.
type jsonlWriter struct {
	w   *bufio.Writer
	enc *json.Encoder
}

func newJSONLWriter(w io.Writer) *jsonlWriter {
	bw := bufio.NewWriter(w)
	return &jsonlWriter{w: bw, enc: json.NewEncoder(bw)}
}

func (j *jsonlWriter) Write(r Report) error {
	if err := j.enc.Encode(r); err != nil {
		return err
	}
	return j.w.Flush()
}

func (j *jsonlWriter) Close() error {
	return j.w.Flush()
}

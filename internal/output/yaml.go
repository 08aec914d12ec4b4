package output

import (
	"bufio"
	"io"

	"gopkg.in/yaml.v3"
)

// yamlWriter buffers reports and writes them on Close.
type yamlWriter struct {
	w       *bufio.Writer
	reports []Report
}

func newYAMLWriter(w io.Writer) *yamlWriter {
	return &yamlWriter{w: bufio.NewWriter(w)}
}

func (y *yamlWriter) Write(r Report) error {
	y.reports = append(y.reports, r)
	return nil
}

func (y *yamlWriter) Close() error {
	enc := yaml.NewEncoder(y.w)
	enc.SetIndent(2)

	var err error
	if len(y.reports) == 1 {
		err = enc.Encode(y.reports[0])
	} else {
		err = enc.Encode(y.reports)
	}
	if err != nil {
		return err
	}
	if err := enc.Close(); err != nil {
		return err
	}
	return y.w.Flush()
}

package matfile

import (
	"bufio"
	"bytes"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/ghalamif/mcap2mat/internal/domain"
)

// MATSink materializes the converted output into a single MAT-file. The
// file only appears at its final path once it has been fully written.
type MATSink struct {
	path     string
	compress bool
	now      func() time.Time
}

func NewMATSink(path string, compress bool) *MATSink {
	return &MATSink{path: path, compress: compress, now: time.Now}
}

func (s *MATSink) Name() string { return "matfile" }

func (s *MATSink) Path() string { return s.path }

func (s *MATSink) Write(out *domain.Output) error {
	if out == nil {
		return fmt.Errorf("nil output")
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	if err := tmp.Chmod(0o644); err != nil {
		return err
	}

	w := bufio.NewWriterSize(tmp, 1<<20)
	if err := s.encode(w, out); err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return err
	}
	committed = true
	return nil
}

func (s *MATSink) encode(w *bufio.Writer, out *domain.Output) error {
	if _, err := w.Write(header(runtime.GOOS+"/"+runtime.GOARCH, s.now())); err != nil {
		return err
	}
	for _, nb := range out.Topics {
		if err := s.writeVariable(w, nb.Name, func(buf *bytes.Buffer) { putBucket(buf, nb.Name, nb.Bucket) }); err != nil {
			return fmt.Errorf("variable %s (%s): %w", nb.Name, nb.Bucket.Topic, err)
		}
	}
	return s.writeVariable(w, domain.NameMapVariable, func(buf *bytes.Buffer) {
		putNameMap(buf, out.NameMap)
	})
}

func (s *MATSink) writeVariable(w *bufio.Writer, name string, encode func(*bytes.Buffer)) error {
	var buf bytes.Buffer
	encode(&buf)
	if uint64(buf.Len()) > math.MaxUint32 {
		return fmt.Errorf("%s exceeds the MAT v5 element size limit", name)
	}
	elem := buf.Bytes()
	if s.compress {
		var err error
		if elem, err = compress(elem); err != nil {
			return err
		}
	}
	_, err := w.Write(elem)
	return err
}

func putBucket(buf *bytes.Buffer, name string, b *domain.Bucket) {
	encodings := make([]string, len(b.Encodings))
	for i, e := range b.Encodings {
		encodings[i] = e.String()
	}
	fields := []field{
		{name: "timestamps", write: func(in *bytes.Buffer) { putInt64Row(in, "", b.Timestamps) }},
		{name: "encoding", write: func(in *bytes.Buffer) { putStringCell(in, "", encodings) }},
		{name: "schema", write: func(in *bytes.Buffer) { putStringCell(in, "", b.Schemas) }},
		{name: "data", write: func(in *bytes.Buffer) {
			putCell(in, "", len(b.Data), func(c *bytes.Buffer, i int) { putValue(c, "", b.Data[i]) })
		}},
	}
	if b.Raw != nil {
		fields = append(fields, field{name: "raw", write: func(in *bytes.Buffer) {
			putCell(in, "", len(b.Raw), func(c *bytes.Buffer, i int) { putUint8Row(c, "", b.Raw[i]) })
		}})
	}
	putStruct(buf, name, fields)
}

func putNameMap(buf *bytes.Buffer, pairs []domain.NamePair) {
	original := make([]string, len(pairs))
	safe := make([]string, len(pairs))
	for i, p := range pairs {
		original[i] = p.Original
		safe[i] = p.Safe
	}
	putStruct(buf, domain.NameMapVariable, []field{
		{name: "original", write: func(in *bytes.Buffer) { putStringCell(in, "", original) }},
		{name: "matlab", write: func(in *bytes.Buffer) { putStringCell(in, "", safe) }},
	})
}

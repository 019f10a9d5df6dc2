// Package matfile writes MATLAB Level 5 MAT-files.
package matfile

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"time"
	"unicode/utf16"

	"github.com/klauspost/compress/zlib"

	"github.com/ghalamif/mcap2mat/internal/app/naming"
	"github.com/ghalamif/mcap2mat/internal/domain"
)

const (
	headerLen     = 128
	headerTextLen = 116
	version       = 0x0100
)

// Data element types.
const (
	miINT8       = 1
	miUINT8      = 2
	miUINT16     = 4
	miINT32      = 5
	miUINT32     = 6
	miDOUBLE     = 9
	miINT64      = 12
	miUINT64     = 13
	miMATRIX     = 14
	miCOMPRESSED = 15
)

// Array classes.
const (
	mxCELL   = 1
	mxSTRUCT = 2
	mxCHAR   = 4
	mxDOUBLE = 6
	mxUINT8  = 9
	mxINT64  = 14
	mxUINT64 = 15
)

const flagLogical = 0x02

var le = binary.LittleEndian

func header(platform string, created time.Time) []byte {
	h := make([]byte, headerLen)
	text := fmt.Sprintf("MATLAB 5.0 MAT-file, Platform: %s, Created on: %s",
		platform, created.UTC().Format("Mon Jan 2 15:04:05 2006"))
	n := copy(h[:headerTextLen], text)
	for i := n; i < headerTextLen; i++ {
		h[i] = ' '
	}
	// subsys data offset (8 bytes) stays zero
	le.PutUint16(h[124:], version)
	h[126], h[127] = 'I', 'M'
	return h
}

func pad8(n int) int {
	if r := n % 8; r != 0 {
		return 8 - r
	}
	return 0
}

func putElement(buf *bytes.Buffer, typ uint32, data []byte) {
	var tag [8]byte
	le.PutUint32(tag[0:], typ)
	le.PutUint32(tag[4:], uint32(len(data)))
	buf.Write(tag[:])
	buf.Write(data)
	buf.Write(make([]byte, pad8(len(data))))
}

type matrix struct {
	class uint8
	flags uint8
	dims  [2]int
	name  string
}

// putMatrix writes an miMATRIX element whose class-specific payload is
// produced by body.
func putMatrix(buf *bytes.Buffer, m matrix, body func(*bytes.Buffer)) {
	var inner bytes.Buffer

	flags := make([]byte, 8)
	le.PutUint32(flags, uint32(m.class)|uint32(m.flags)<<8)
	putElement(&inner, miUINT32, flags)

	dims := make([]byte, 8)
	le.PutUint32(dims[0:], uint32(int32(m.dims[0])))
	le.PutUint32(dims[4:], uint32(int32(m.dims[1])))
	putElement(&inner, miINT32, dims)

	putElement(&inner, miINT8, []byte(m.name))
	body(&inner)

	var tag [8]byte
	le.PutUint32(tag[0:], miMATRIX)
	le.PutUint32(tag[4:], uint32(inner.Len()))
	buf.Write(tag[:])
	buf.Write(inner.Bytes())
}

func putValue(buf *bytes.Buffer, name string, v domain.Value) {
	switch x := v.(type) {
	case nil, domain.Null:
		putEmpty(buf, name)
	case domain.Bool:
		var b byte
		if x {
			b = 1
		}
		putMatrix(buf, matrix{class: mxUINT8, flags: flagLogical, dims: [2]int{1, 1}, name: name}, func(in *bytes.Buffer) {
			putElement(in, miUINT8, []byte{b})
		})
	case domain.Number:
		putDouble(buf, name, float64(x))
	case domain.Int:
		putInt64Row(buf, name, []int64{int64(x)})
	case domain.Uint:
		putMatrix(buf, matrix{class: mxUINT64, dims: [2]int{1, 1}, name: name}, func(in *bytes.Buffer) {
			data := make([]byte, 8)
			le.PutUint64(data, uint64(x))
			putElement(in, miUINT64, data)
		})
	case domain.String:
		putChar(buf, name, string(x))
	case domain.Bytes:
		putUint8Row(buf, name, x)
	case domain.Sequence:
		putCell(buf, name, len(x), func(in *bytes.Buffer, i int) { putValue(in, "", x[i]) })
	case domain.Mapping:
		putMapping(buf, name, x)
	default:
		putEmpty(buf, name)
	}
}

func putEmpty(buf *bytes.Buffer, name string) {
	putMatrix(buf, matrix{class: mxDOUBLE, name: name}, func(in *bytes.Buffer) {
		putElement(in, miDOUBLE, nil)
	})
}

func putDouble(buf *bytes.Buffer, name string, f float64) {
	putMatrix(buf, matrix{class: mxDOUBLE, dims: [2]int{1, 1}, name: name}, func(in *bytes.Buffer) {
		data := make([]byte, 8)
		le.PutUint64(data, math.Float64bits(f))
		putElement(in, miDOUBLE, data)
	})
}

func putChar(buf *bytes.Buffer, name, s string) {
	units := utf16.Encode([]rune(s))
	dims := [2]int{1, len(units)}
	if len(units) == 0 {
		dims = [2]int{0, 0}
	}
	putMatrix(buf, matrix{class: mxCHAR, dims: dims, name: name}, func(in *bytes.Buffer) {
		data := make([]byte, 2*len(units))
		for i, u := range units {
			le.PutUint16(data[2*i:], u)
		}
		putElement(in, miUINT16, data)
	})
}

func putUint8Row(buf *bytes.Buffer, name string, b []byte) {
	putMatrix(buf, matrix{class: mxUINT8, dims: [2]int{1, len(b)}, name: name}, func(in *bytes.Buffer) {
		putElement(in, miUINT8, b)
	})
}

func putInt64Row(buf *bytes.Buffer, name string, vals []int64) {
	putMatrix(buf, matrix{class: mxINT64, dims: [2]int{1, len(vals)}, name: name}, func(in *bytes.Buffer) {
		data := make([]byte, 8*len(vals))
		for i, v := range vals {
			le.PutUint64(data[8*i:], uint64(v))
		}
		putElement(in, miINT64, data)
	})
}

func putCell(buf *bytes.Buffer, name string, n int, item func(*bytes.Buffer, int)) {
	putMatrix(buf, matrix{class: mxCELL, dims: [2]int{1, n}, name: name}, func(in *bytes.Buffer) {
		for i := 0; i < n; i++ {
			item(in, i)
		}
	})
}

func putStringCell(buf *bytes.Buffer, name string, vals []string) {
	putCell(buf, name, len(vals), func(in *bytes.Buffer, i int) { putChar(in, "", vals[i]) })
}

type field struct {
	name  string
	write func(*bytes.Buffer)
}

// putStruct writes a 1x1 struct. Field names must already be legal.
func putStruct(buf *bytes.Buffer, name string, fields []field) {
	width := 1
	for _, f := range fields {
		if len(f.name)+1 > width {
			width = len(f.name) + 1
		}
	}
	putMatrix(buf, matrix{class: mxSTRUCT, dims: [2]int{1, 1}, name: name}, func(in *bytes.Buffer) {
		w := make([]byte, 4)
		le.PutUint32(w, uint32(width))
		putElement(in, miINT32, w)

		names := make([]byte, width*len(fields))
		for i, f := range fields {
			copy(names[i*width:], f.name)
		}
		putElement(in, miINT8, names)

		for _, f := range fields {
			f.write(in)
		}
	})
}

// putMapping writes a decoded mapping as a struct with keys sanitized per
// struct. A repeated key keeps its first value.
func putMapping(buf *bytes.Buffer, name string, m domain.Mapping) {
	mapper := naming.NewMapper()
	fields := make([]field, 0, len(m))
	for _, e := range m {
		if _, dup := mapper.Safe(e.Key); dup {
			continue
		}
		v := e.Value
		fields = append(fields, field{
			name:  mapper.Register(e.Key),
			write: func(in *bytes.Buffer) { putValue(in, "", v) },
		})
	}
	putStruct(buf, name, fields)
}

// compress wraps an encoded top-level element in an miCOMPRESSED element.
func compress(elem []byte) ([]byte, error) {
	var z bytes.Buffer
	zw := zlib.NewWriter(&z)
	if _, err := zw.Write(elem); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	out := make([]byte, 8, 8+z.Len())
	le.PutUint32(out[0:], miCOMPRESSED)
	le.PutUint32(out[4:], uint32(z.Len()))
	return append(out, z.Bytes()...), nil
}

// Package particles reads the raw particle buffers written by the global
// tracker: a little-endian stream of float32 values, ten per particle.
package particles

import (
	"bufio"
	"encoding/binary"
	"io"
	"math"
	"os"

	"github.com/pkg/errors"

	"fibertrack/pkg/reconstruction"
)

// ErrTruncated is returned when a buffer does not end on a particle boundary
var ErrTruncated = errors.New("particle buffer truncated")

// recordSize is the byte size of one particle record
const recordSize = reconstruction.AttributeCount * 4

// Read decodes a particle buffer from r and returns the values and the
// number of particles they hold.
func Read(r io.Reader) ([]float32, int, error) {
	br := bufio.NewReader(r)
	var buf []float32
	rec := make([]byte, recordSize)

	for {
		n, err := io.ReadFull(br, rec)
		if err == io.EOF {
			break
		}
		if err == io.ErrUnexpectedEOF {
			return nil, 0, errors.Wrapf(ErrTruncated, "record %d has %d of %d bytes",
				len(buf)/reconstruction.AttributeCount, n, recordSize)
		}
		if err != nil {
			return nil, 0, errors.Wrap(err, "read particle buffer")
		}

		for i := 0; i < reconstruction.AttributeCount; i++ {
			bits := binary.LittleEndian.Uint32(rec[i*4:])
			buf = append(buf, math.Float32frombits(bits))
		}
	}

	return buf, len(buf) / reconstruction.AttributeCount, nil
}

// ReadFile decodes the particle buffer stored at path
func ReadFile(path string) ([]float32, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, errors.Wrap(err, "open particle file")
	}
	defer f.Close()

	buf, n, err := Read(f)
	if err != nil {
		return nil, 0, errors.Wrapf(err, "decode %s", path)
	}
	return buf, n, nil
}

// Write encodes buf in the tracker's layout. The buffer length must be a
// multiple of the record size.
func Write(w io.Writer, buf []float32) error {
	if len(buf)%reconstruction.AttributeCount != 0 {
		return errors.Wrapf(ErrTruncated, "%d values do not form whole particles", len(buf))
	}
	bw := bufio.NewWriter(w)
	if err := binary.Write(bw, binary.LittleEndian, buf); err != nil {
		return errors.Wrap(err, "write particle buffer")
	}
	return bw.Flush()
}

// Package snapshot reads and writes the flat binary state file.
//
// The layout is a fixed 24-byte header followed by Count particle records of
// 108 bytes each, densely packed and little endian:
//
//	offset        field
//	0             count          int32
//	4             tick count     int32
//	8             elapsed time   float64
//	16            initial energy float64
//	24 + 108*k    record k       pos 3xf64, vel 3xf64, acc 3xf64, mass f64,
//	                             color 3xf32, kinetic f64, potential f64
package snapshot

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
)

const (
	HeaderSize = 24
	RecordSize = 108

	// MaxRecords bounds the allocation made for a header read from disk.
	MaxRecords = 1 << 24
)

// ByteOrder is the byte order of every field in the file.
var ByteOrder binary.ByteOrder = binary.LittleEndian

// ErrFormat is returned for truncated or inconsistent snapshot data.
var ErrFormat = errors.New("snapshot: malformed state file")

type Header struct {
	Count         int32
	TickCount     int32
	ElapsedTime   float64
	InitialEnergy float64
}

type Record struct {
	Pos             [3]float64
	Vel             [3]float64
	Acc             [3]float64
	Mass            float64
	Color           [3]float32
	KineticEnergy   float64
	PotentialEnergy float64
}

// Encode writes the header and records. h.Count must match len(recs).
func Encode(w io.Writer, h Header, recs []Record) error {
	if int(h.Count) != len(recs) {
		return fmt.Errorf("%w: header count %d does not match %d records", ErrFormat, h.Count, len(recs))
	}
	if err := binary.Write(w, ByteOrder, &h); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if len(recs) == 0 {
		return nil
	}
	if err := binary.Write(w, ByteOrder, recs); err != nil {
		return fmt.Errorf("write records: %w", err)
	}
	return nil
}

// Decode reads a header and exactly h.Count records. Records are read in
// bounded batches, so a header claiming more records than the stream holds
// fails without allocating for all of them.
func Decode(r io.Reader) (Header, []Record, error) {
	h, err := decodeHeader(r)
	if err != nil {
		return Header{}, nil, err
	}
	recs, err := decodeRecords(r, int(h.Count))
	if err != nil {
		return Header{}, nil, err
	}
	return h, recs, nil
}

func decodeHeader(r io.Reader) (Header, error) {
	var h Header
	if err := binary.Read(r, ByteOrder, &h); err != nil {
		return Header{}, formatError("read header", err)
	}
	if err := h.validate(); err != nil {
		return Header{}, err
	}
	return h, nil
}

func (h Header) validate() error {
	if h.Count < 0 || h.Count > MaxRecords {
		return fmt.Errorf("%w: particle count %d out of range", ErrFormat, h.Count)
	}
	if h.TickCount < 0 {
		return fmt.Errorf("%w: negative tick count %d", ErrFormat, h.TickCount)
	}
	if !(h.ElapsedTime >= 0) || math.IsInf(h.ElapsedTime, 0) {
		return fmt.Errorf("%w: elapsed time %g", ErrFormat, h.ElapsedTime)
	}
	return nil
}

const readBatch = 4096

func decodeRecords(r io.Reader, n int) ([]Record, error) {
	recs := make([]Record, 0, min(n, readBatch))
	for len(recs) < n {
		batch := make([]Record, min(n-len(recs), readBatch))
		if err := binary.Read(r, ByteOrder, batch); err != nil {
			return nil, formatError("read records", err)
		}
		recs = append(recs, batch...)
	}
	return recs, nil
}

// Size is the exact file size of a snapshot holding count records.
func Size(count int) int64 {
	return HeaderSize + int64(count)*RecordSize
}

func formatError(op string, err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: %s: %v", ErrFormat, op, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// WriteFile writes the snapshot to a temporary file in the same directory
// and renames it over path, so readers never observe a partial file.
func WriteFile(path string, h Header, recs []Record) (err error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	bw := bufio.NewWriter(tmp)
	if err = Encode(bw, h, recs); err != nil {
		return err
	}
	if err = bw.Flush(); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// ReadFile reads a whole snapshot. Nothing is returned unless the
// header and every record were read successfully.
func ReadFile(path string) (Header, []Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return Header{}, nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return Header{}, nil, err
	}
	if info.Size() < HeaderSize {
		return Header{}, nil, fmt.Errorf("%w: %s is %d bytes", ErrFormat, path, info.Size())
	}

	br := bufio.NewReader(f)
	h, err := decodeHeader(br)
	if err != nil {
		return Header{}, nil, err
	}
	if want := Size(int(h.Count)); info.Size() != want {
		return Header{}, nil, fmt.Errorf("%w: %s is %d bytes, %d records need %d", ErrFormat, path, info.Size(), h.Count, want)
	}

	recs, err := decodeRecords(br, int(h.Count))
	if err != nil {
		return Header{}, nil, err
	}
	return h, recs, nil
}

// ReadHeader reads only the header of the snapshot at path.
func ReadHeader(path string) (Header, error) {
	f, err := os.Open(path)
	if err != nil {
		return Header{}, err
	}
	defer f.Close()

	return decodeHeader(f)
}

package readset

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/grailbio/base/log"

	"github.com/modimizer/core/modset"
)

// readsetMagic is the fixed header of a .readset file (spec.md §4.4, §6).
const readsetMagic = "RSMSHv2\x00"

// WriteTo serializes rs in the .readset format: magic, total_hit, a
// self-describing count of real reads, the flat Read metadata array, then
// for each read with n_hit > 0 its hit array followed by its dx array.
// The modset itself is not written here -- it is stored separately as the
// paired .mod file (spec.md §4.4).
func (rs *ReadSet) WriteTo(w io.Writer) error {
	if _, err := w.Write([]byte(readsetMagic)); err != nil {
		return err
	}
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, rs.TotalHit)
	n := uint32(len(rs.Reads) - 1)
	binary.Write(&buf, binary.LittleEndian, n)

	for i := 1; i < len(rs.Reads); i++ {
		r := &rs.Reads[i]
		binary.Write(&buf, binary.LittleEndian, r.Len)
		binary.Write(&buf, binary.LittleEndian, r.NHit)
		binary.Write(&buf, binary.LittleEndian, r.NMiss)
		binary.Write(&buf, binary.LittleEndian, r.Contained)
		binary.Write(&buf, binary.LittleEndian, r.NCopy)
		binary.Write(&buf, binary.LittleEndian, r.Flags)
	}
	for i := 1; i < len(rs.Reads); i++ {
		r := &rs.Reads[i]
		if r.NHit == 0 {
			continue
		}
		binary.Write(&buf, binary.LittleEndian, r.Hit)
		binary.Write(&buf, binary.LittleEndian, r.Dx)
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// ReadFrom deserializes a .readset file written by WriteTo, attaching it to
// the given modset (which the caller must have already loaded from the
// paired .mod file). It is fatal on a magic mismatch or short read (spec.md
// §7, "Corrupt serialized form").
func ReadFrom(r io.Reader, ms *modset.Modset) *ReadSet {
	var magicBuf [8]byte
	if _, err := io.ReadFull(r, magicBuf[:]); err != nil {
		log.Panicf("readset: reading magic: %v", err)
	}
	if string(magicBuf[:]) != readsetMagic {
		log.Panicf("readset: bad magic %q, want %q", magicBuf, readsetMagic)
	}

	rest, err := io.ReadAll(r)
	if err != nil {
		log.Panicf("readset: reading body: %v", err)
	}
	br := bytes.NewReader(rest)

	totalHit := readU64(br)
	n := readU32(br)

	rs := &ReadSet{Modset: ms, Reads: make([]Read, n+1), TotalHit: totalHit}
	for i := uint32(1); i <= n; i++ {
		r := &rs.Reads[i]
		r.Len = readU32(br)
		r.NHit = readU32(br)
		r.NMiss = readU32(br)
		r.Contained = readU32(br)
		for c := range r.NCopy {
			r.NCopy[c] = readU32(br)
		}
		r.Flags = readU16(br)
	}
	for i := uint32(1); i <= n; i++ {
		r := &rs.Reads[i]
		if r.NHit == 0 {
			continue
		}
		r.Hit = make([]uint32, r.NHit)
		for j := range r.Hit {
			r.Hit[j] = readU32(br)
		}
		r.Dx = make([]uint16, r.NHit)
		for j := range r.Dx {
			r.Dx[j] = readU16(br)
		}
	}
	return rs
}

func readU16(r io.Reader) uint16 {
	var b [2]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		log.Panicf("readset: short read: %v", err)
	}
	return binary.LittleEndian.Uint16(b[:])
}

func readU32(r io.Reader) uint32 {
	var b [4]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		log.Panicf("readset: short read: %v", err)
	}
	return binary.LittleEndian.Uint32(b[:])
}

func readU64(r io.Reader) uint64 {
	var b [8]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		log.Panicf("readset: short read: %v", err)
	}
	return binary.LittleEndian.Uint64(b[:])
}

package modset

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"io"

	"github.com/golang/snappy"
	"github.com/grailbio/base/log"
	"github.com/klauspost/compress/zstd"

	"github.com/modimizer/core/hash"
)

// modMagic is the fixed header of a .mod file (spec.md §6).
const modMagic = "MSHSTv1\x00"

// Codec selects the compression of everything following the magic and
// codec byte. The codec byte is written for every codec, None included, so
// no .mod file has table_bits directly after the magic; with None the rest
// of the file is stored uncompressed. Zstd and Snappy trade write-time cost
// for smaller files when a modset is shipped between hosts.
type Codec uint8

const (
	CodecNone Codec = iota
	CodecZstd
	CodecSnappy
)

// WriteTo serializes m in the .mod format (spec.md §6): magic, a one-byte
// codec, table_bits, size = max+1, the hasher block, the index array, then
// value/depth/info for ids 0..max (id 0 is the unused sentinel, included so
// offsets in the file match dense ids directly).
//
// Everything after the codec byte is optionally compressed as a whole --
// compression is transparent to the logical layout.
func (m *Modset) WriteTo(w io.Writer, codec Codec) error {
	if _, err := w.Write([]byte(modMagic)); err != nil {
		return err
	}
	if _, err := w.Write([]byte{byte(codec)}); err != nil {
		return err
	}

	var body bytes.Buffer
	binary.Write(&body, binary.LittleEndian, uint32(m.tableBits))
	binary.Write(&body, binary.LittleEndian, m.max+1)
	if err := m.hasher.WriteTo(&body); err != nil {
		return err
	}
	binary.Write(&body, binary.LittleEndian, m.index)
	for i := uint32(0); i <= m.max; i++ {
		binary.Write(&body, binary.LittleEndian, m.value[i])
	}
	for i := uint32(0); i <= m.max; i++ {
		binary.Write(&body, binary.LittleEndian, m.depth[i])
	}
	body.Write(m.info[:m.max+1])
	return writeBody(w, codec, body.Bytes())
}

// ReadFrom deserializes a .mod file written by WriteTo. It is fatal on a
// magic mismatch, unknown codec, or short/corrupt body (spec.md §7,
// "Corrupt serialized form").
func ReadFrom(r io.Reader) *Modset {
	var magicBuf [8]byte
	if _, err := io.ReadFull(r, magicBuf[:]); err != nil {
		log.Panicf("modset: reading magic: %v", err)
	}
	if string(magicBuf[:]) != modMagic {
		log.Panicf("modset: bad magic %q, want %q", magicBuf, modMagic)
	}
	var codecBuf [1]byte
	if _, err := io.ReadFull(r, codecBuf[:]); err != nil {
		log.Panicf("modset: reading codec: %v", err)
	}
	codec := Codec(codecBuf[0])

	body, err := readBody(r, codec)
	if err != nil {
		log.Panicf("modset: reading body: %v", err)
	}
	br := bytes.NewReader(body)

	tableBits := int(readU32(br))
	size := readU32(br)

	h := hash.ReadFrom(br)

	m := NewSized(h, tableBits, int(size)-1)
	tableSize := int(m.tableSize)
	if len(m.index) != tableSize {
		log.Panicf("modset: table_size mismatch: index has %d cells, table_bits implies %d", len(m.index), tableSize)
	}
	for i := range m.index {
		m.index[i] = readU32(br)
	}
	m.max = size - 1
	for i := uint32(0); i < size; i++ {
		m.value[i] = readU64(br)
	}
	for i := uint32(0); i < size; i++ {
		m.depth[i] = readU16(br)
	}
	for i := uint32(0); i < size; i++ {
		m.info[i] = readU8(br)
	}
	return m
}

func readU8(r io.Reader) uint8 {
	var b [1]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		log.Panicf("modset: short read: %v", err)
	}
	return b[0]
}

func readU16(r io.Reader) uint16 {
	var b [2]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		log.Panicf("modset: short read: %v", err)
	}
	return binary.LittleEndian.Uint16(b[:])
}

func readU32(r io.Reader) uint32 {
	var b [4]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		log.Panicf("modset: short read: %v", err)
	}
	return binary.LittleEndian.Uint32(b[:])
}

func readU64(r io.Reader) uint64 {
	var b [8]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		log.Panicf("modset: short read: %v", err)
	}
	return binary.LittleEndian.Uint64(b[:])
}

func writeBody(w io.Writer, codec Codec, body []byte) error {
	switch codec {
	case CodecNone:
		_, err := w.Write(body)
		return err
	case CodecZstd:
		zw, err := zstd.NewWriter(w)
		if err != nil {
			return err
		}
		if _, err := zw.Write(body); err != nil {
			return err
		}
		return zw.Close()
	case CodecSnappy:
		_, err := w.Write(snappy.Encode(nil, body))
		return err
	default:
		log.Panicf("modset: unknown codec %d", codec)
		return nil
	}
}

func readBody(r io.Reader, codec Codec) ([]byte, error) {
	switch codec {
	case CodecNone:
		return io.ReadAll(r)
	case CodecZstd:
		zr, err := zstd.NewReader(bufio.NewReader(r))
		if err != nil {
			return nil, err
		}
		defer zr.Close()
		return io.ReadAll(zr)
	case CodecSnappy:
		compressed, err := io.ReadAll(r)
		if err != nil {
			return nil, err
		}
		return snappy.Decode(nil, compressed)
	default:
		log.Panicf("modset: unknown codec %d", codec)
		return nil, nil
	}
}

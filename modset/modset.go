// Package modset implements the modset: an open-addressed hash table
// mapping modimizer k-mer hashes to dense integer ids, with per-id
// saturating depth and an 8-bit info byte (copy-class plus annotation
// flags). See spec.md §3 and §4.3.
//
// The table shape mirrors the teacher's kmerIndex
// (github.com/grailbio/bio/fusion/kmer_index.go): a flat, open-addressed
// table of fixed power-of-two size, linear/double-hash probing, and parallel
// arrays indexed by a dense id rather than pointer-chasing.
package modset

import (
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"

	"github.com/modimizer/core/hash"
)

// errIncompatibleHashers is returned by Merge when the two modsets were
// built with different hashers (spec.md §7: merge is the one fatal-by-default
// operation downgraded to a recoverable error).
var errIncompatibleHashers = errors.E("modset: incompatible hashers (k, w, factor1, or backend differ)")

// CopyClass is one of {0,1,2,M}: likely error, unique in reference, diploid
// unique, multi-copy. Encoded in the low 2 bits of an entry's Info byte.
type CopyClass uint8

const (
	CopyError  CopyClass = 0
	CopyUnique CopyClass = 1
	CopyDiploid CopyClass = 2
	CopyMulti  CopyClass = 3
)

// Info flag bits, occupying bits 2-5 of the info byte (spec.md §3).
const (
	FlagMinor    uint8 = 1 << 2
	FlagRepeat   uint8 = 1 << 3
	FlagInternal uint8 = 1 << 4
	FlagRDNA     uint8 = 1 << 5

	copyClassMask uint8 = 0x3
	flagsMask     uint8 = FlagMinor | FlagRepeat | FlagInternal | FlagRDNA
)

// CopyClassOf extracts the copy-class from an info byte.
func CopyClassOf(info uint8) CopyClass { return CopyClass(info & copyClassMask) }

// SetCopyClass returns info with its copy-class bits replaced.
func SetCopyClass(info uint8, c CopyClass) uint8 {
	return (info &^ copyClassMask) | uint8(c)&copyClassMask
}

// MinTableBits and MaxTableBits bound table_bits (spec.md §3).
const (
	MinTableBits = 20
	MaxTableBits = 34
)

// MaxDepth is the saturating cap on a 16-bit depth counter (spec.md §9).
const MaxDepth = 0xFFFF

// Modset is the dense-id hash table described in spec.md §3/§4.3.
type Modset struct {
	hasher *hash.Hasher

	tableBits int
	tableSize uint64
	tableMask uint64

	index []uint32 // table_size cells; 0 = empty, else dense id

	value []uint64 // value[i], i in [1,max]; value[0] unused sentinel
	depth []uint16
	info  []uint8

	max uint32 // highest assigned dense id; ids are 1..max
	cap uint32 // allocation capacity of value/depth/info (>= max+1)
}

// New creates an empty Modset with the given table_bits, owning (not
// sharing) hasher. It is fatal if tableBits is outside [MinTableBits,
// MaxTableBits] (spec.md §7, "Parameter domain error").
func New(hasher *hash.Hasher, tableBits int) *Modset {
	return NewSized(hasher, tableBits, 0)
}

// NewSized is like New but pre-allocates the parallel arrays to hold at
// least `size` entries (size 0 picks a default based on the 25% load
// factor).
func NewSized(hasher *hash.Hasher, tableBits int, size int) *Modset {
	if tableBits < MinTableBits || tableBits > MaxTableBits {
		log.Panicf("modset: table_bits=%d out of range [%d,%d]", tableBits, MinTableBits, MaxTableBits)
	}
	tableSize := uint64(1) << uint(tableBits)
	maxCap := tableSize >> 2
	if size <= 0 || uint64(size) > maxCap {
		size = int(maxCap)
	}
	cap := uint32(size) + 1
	return &Modset{
		hasher:    hasher,
		tableBits: tableBits,
		tableSize: tableSize,
		tableMask: tableSize - 1,
		index:     make([]uint32, tableSize),
		value:     make([]uint64, cap),
		depth:     make([]uint16, cap),
		info:      make([]uint8, cap),
		max:       0,
		cap:       cap,
	}
}

// Hasher returns the modset's hasher. It is referenced, not owned, if the
// caller shares it across modsets (spec.md §3); serialization always writes
// a private copy.
func (m *Modset) Hasher() *hash.Hasher { return m.hasher }

// TableBits, Max, and TableSize expose the table dimensions.
func (m *Modset) TableBits() int  { return m.tableBits }
func (m *Modset) Max() uint32     { return m.max }
func (m *Modset) TableSize() uint64 { return m.tableSize }

// Value, Depth, Info return the parallel-array fields for dense id i, i in
// [1, Max()]. Id 0 is the null/sentinel and must not be queried.
func (m *Modset) Value(i uint32) uint64 { return m.value[i] }
func (m *Modset) Depth(i uint32) uint16 { return m.depth[i] }
func (m *Modset) Info(i uint32) uint8   { return m.info[i] }

// SetInfo overwrites the info byte for dense id i.
func (m *Modset) SetInfo(i uint32, info uint8) { m.info[i] = info }

// growIfNeeded extends the parallel arrays so dense id m.max+1 can be
// written, preserving existing contents.
func (m *Modset) growIfNeeded() {
	if m.max+1 < m.cap {
		return
	}
	newCap := m.cap * 2
	if newCap < 16 {
		newCap = 16
	}
	maxAllowed := uint32(m.tableSize >> 2)
	if newCap > maxAllowed+1 {
		newCap = maxAllowed + 1
	}
	value := make([]uint64, newCap)
	depth := make([]uint16, newCap)
	info := make([]uint8, newCap)
	copy(value, m.value)
	copy(depth, m.depth)
	copy(info, m.info)
	m.value, m.depth, m.info, m.cap = value, depth, info, newCap
}

// probe walks the double-hash probe sequence for H (spec.md §4.3): initial
// offset H&table_mask, then on each miss offset += d where
// d = ((H>>table_bits)&table_mask)|1 (always odd, coprime to a power-of-two
// table size, so the probe visits every slot before repeating).
//
// visit is called with each candidate table offset in turn; it returns
// (stop, result) -- probe stops and returns result as soon as visit reports
// stop.
func (m *Modset) probe(h uint64, visit func(offset uint64) (stop bool, result uint32)) uint32 {
	offset := h & m.tableMask
	var d uint64
	haveD := false
	for {
		if stop, result := visit(offset); stop {
			return result
		}
		if !haveD {
			d = ((h >> uint(m.tableBits)) & m.tableMask) | 1
			haveD = true
		}
		offset = (offset + d) & m.tableMask
	}
}

// Find looks up hash H and returns its dense id, or 0 if absent. It never
// mutates the table (spec.md §5: a read-only operation safe to run
// concurrently across disjoint queries while the modset is frozen).
func (m *Modset) Find(h uint64) uint32 {
	return m.findOrAdd(h, false)
}

// FindOrAdd looks up hash H, inserting it (assigning a new dense id) if
// absent and isAdd is true. It is fatal if isAdd and the table would exceed
// its capacity (spec.md §7, "Capacity exhaustion").
func (m *Modset) FindOrAdd(h uint64, isAdd bool) uint32 {
	return m.findOrAdd(h, isAdd)
}

func (m *Modset) findOrAdd(h uint64, isAdd bool) uint32 {
	maxAllowed := uint32(m.tableSize >> 2)
	var result uint32
	m.probe(h, func(offset uint64) (bool, uint32) {
		id := m.index[offset]
		if id == 0 {
			if !isAdd {
				return true, 0
			}
			if m.max >= maxAllowed {
				log.Panicf("modset: capacity exhausted at table_bits=%d (max=%d)", m.tableBits, m.max)
			}
			m.growIfNeeded()
			m.max++
			newID := m.max
			m.value[newID] = h
			m.index[offset] = newID
			result = newID
			return true, newID
		}
		if m.value[id] == h {
			result = id
			return true, id
		}
		return false, 0
	})
	return result
}

// IncrDepth saturating-increments depth[id] (spec.md §9: incrementing at
// 65535 leaves it at 65535).
func (m *Modset) IncrDepth(id uint32) {
	if m.depth[id] < MaxDepth {
		m.depth[id]++
	}
}

// Pack trims the parallel arrays to exactly Max()+1 entries. A no-op if
// already packed. Idempotent (spec.md §8).
func (m *Modset) Pack() {
	newCap := m.max + 1
	if uint32(len(m.value)) == newCap {
		return
	}
	m.value = append([]uint64(nil), m.value[:newCap]...)
	m.depth = append([]uint16(nil), m.depth[:newCap]...)
	m.info = append([]uint8(nil), m.info[:newCap]...)
	m.cap = newCap
}

// Prune rebuilds the table in place, retaining only ids whose depth is in
// [dmin, dmax) (dmax == 0 means unbounded), and renumbers the survivors
// densely starting at 1 (spec.md §4.3).
//
// Because dense ids are assigned in increasing order during the rebuild and
// a surviving id's new number is always <= its old number, it is safe to
// read old_value[i]/old_depth[i]/old_info[i] before overwriting slot i (the
// rebuild never needs old data past the point it has already been
// consumed).
func (m *Modset) Prune(dmin uint16, dmax uint16) {
	oldValue, oldDepth, oldInfo := m.value, m.depth, m.info
	n := m.max

	for i := range m.index {
		m.index[i] = 0
	}
	m.max = 0

	inRange := func(d uint16) bool {
		if dmax == 0 {
			return d >= dmin
		}
		return d >= dmin && d < dmax
	}

	for i := uint32(1); i <= n; i++ {
		d := oldDepth[i]
		if !inRange(d) {
			continue
		}
		newID := m.findOrAdd(oldValue[i], true)
		m.depth[newID] = d
		m.info[newID] = oldInfo[i]
	}
}

// Merge adds the contents of other into m. It fails (returns a non-nil
// error, per spec.md §7's "Incompatible merge ... the target is
// unchanged") if the two modsets' hashers are incompatible (different k, w,
// or factor1). Depths are added with 16-bit saturation; copy-class bits are
// combined as described in spec.md §4.3.
func (m *Modset) Merge(other *Modset) error {
	if !m.hasher.Compatible(other.hasher) {
		return errIncompatibleHashers
	}
	for i := uint32(1); i <= other.max; i++ {
		id := m.findOrAdd(other.value[i], true)
		sum := uint32(m.depth[id]) + uint32(other.depth[i])
		if sum > MaxDepth {
			sum = MaxDepth
		}
		m.depth[id] = uint16(sum)

		oldClass := CopyClassOf(m.info[id])
		otherClass := CopyClassOf(other.info[i])
		combinedClass := oldClass + otherClass
		if combinedClass > CopyMulti {
			combinedClass = CopyMulti
		}
		combinedFlags := (m.info[id] | other.info[i]) & flagsMask
		m.info[id] = uint8(combinedClass) | combinedFlags
	}
	return nil
}

// ForEach calls fn for every live dense id, in increasing order.
func (m *Modset) ForEach(fn func(id uint32, value uint64, depth uint16, info uint8)) {
	for i := uint32(1); i <= m.max; i++ {
		fn(i, m.value[i], m.depth[i], m.info[i])
	}
}

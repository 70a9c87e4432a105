package hash

import (
	"encoding/binary"

	"github.com/blainsmith/seahash"
	farm "github.com/dgryski/go-farm"
)

// farmHash64 hashes a packed k-mer using farmhash, the same hash and calling
// convention the teacher's kmer_index shard table uses: no input bytes, the
// k-mer value itself as the seed.
func farmHash64(x uint64) uint64 {
	return farm.Hash64WithSeed(nil, x)
}

// seaHash64 hashes the 8-byte little-endian encoding of a packed k-mer using
// seahash.
func seaHash64(x uint64) uint64 {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], x)
	return seahash.Sum64(buf[:])
}

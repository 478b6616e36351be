package rng

import (
	"crypto/sha256"
	"encoding/binary"
)

const (
	blockSeedDomain  = "dice/v1/block-seed"
	actionSeedDomain = "dice/v1/action-seed"
	roundSeedDomain  = "dice/v1/round-seed"
)

// BlockSeed derives a block's entropy from its height and hash.
func BlockSeed(chainID string, height int64, blockHash []byte) Seed {
	var h8 [8]byte
	binary.LittleEndian.PutUint64(h8[:], uint64(height))
	return hashDomain(blockSeedDomain, []byte(chainID), h8[:], blockHash)
}

// ActionSeed derives the seed for the index-th input delivered in a block.
func ActionSeed(block Seed, index uint32) Seed {
	var i4 [4]byte
	binary.LittleEndian.PutUint32(i4[:], index)
	return hashDomain(actionSeedDomain, block[:], i4[:])
}

// RoundSeed derives a round's seed from the entropy of its anchor block.
func RoundSeed(anchor Seed) Seed {
	return hashDomain(roundSeedDomain, anchor[:])
}

func hashDomain(domain string, parts ...[]byte) Seed {
	h := sha256.New()
	_, _ = h.Write([]byte(domain))

	// Length-prefix each part to avoid ambiguous concatenations.
	var lenBuf [4]byte
	for _, p := range parts {
		binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(p)))
		_, _ = h.Write(lenBuf[:])
		_, _ = h.Write(p)
	}

	var out Seed
	copy(out[:], h.Sum(nil))
	return out
}

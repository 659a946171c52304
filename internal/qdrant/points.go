package qdrant

import "hash/fnv"

// PointID maps a chunk-id string to the numeric point id the store keys on:
// FNV-1a over the string, folded into [0, 2^31). Stable across runs, so
// re-upserting a chunk overwrites its previous point.
//
// The 31-bit space makes a collision likely once a collection holds tens
// of thousands of chunks (the birthday bound reaches 50% near 55,000).
// A wider id space would need a collection migration.
func PointID(chunkID string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(chunkID))
	return h.Sum32() & 0x7fffffff
}

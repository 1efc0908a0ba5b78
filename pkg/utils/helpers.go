package utils

import (
	"encoding/hex"
)

func ConvertBytesToString(b []byte) string {
	return "0x" + hex.EncodeToString(b)
}

func Map[A any, B any](coll []A, mapper func(i A, index uint64) B) []B {
	out := make([]B, len(coll))
	for i, item := range coll {
		out[i] = mapper(item, uint64(i))
	}
	return out
}

// Chunk splits coll into slices of at most size elements, preserving order.
func Chunk[A any](coll []A, size int) [][]A {
	if size <= 0 || len(coll) == 0 {
		return [][]A{}
	}
	chunks := make([][]A, 0, (len(coll)+size-1)/size)
	for size < len(coll) {
		coll, chunks = coll[size:], append(chunks, coll[0:size:size])
	}
	return append(chunks, coll)
}

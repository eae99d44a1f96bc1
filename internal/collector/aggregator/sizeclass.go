package aggregator

import "math/bits"

// NumBuckets is the number of size classes, one per bit of a 32-bit size.
const NumBuckets = 32

// Classify maps a message size to its bucket: 0 for size 0, otherwise one
// plus the position of the highest set bit, so [2^k, 2^(k+1)) lands in
// bucket k+1. Negative sizes classify as 0.
func Classify(size int32) int {
	if size <= 0 {
		return 0
	}
	b := bits.Len32(uint32(size))
	if b > NumBuckets-1 {
		b = NumBuckets - 1
	}
	return b
}

// BucketSize returns the smallest size held by bucket i.
func BucketSize(i int) int64 {
	if i <= 0 {
		return 0
	}
	return int64(1) << (i - 1)
}

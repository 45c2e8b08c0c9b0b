package mathx

import "math"

func AbsInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func ClampF(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func mix64(z uint64) uint64 {
	z += 0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

// HashString is FNV-1a over s.
func HashString(s string) uint64 {
	h := uint64(14695981039346656037)
	for i := 0; i < len(s); i++ {
		h ^= uint64(s[i])
		h *= 1099511628211
	}
	return h
}

func Hash3(seed int64, tick uint64, key string, idx int) uint64 {
	v := uint64(seed) ^ (tick * 0x9e3779b97f4a7c15) ^ (HashString(key) * 0xc2b2ae3d27d4eb4f) ^ (uint64(uint32(int32(idx))) * 0xbf58476d1ce4e5b9)
	return mix64(v)
}

// Unit maps a (seed, tick, key, idx) tuple to a deterministic value in [0, 1).
func Unit(seed int64, tick uint64, key string, idx int) float64 {
	return float64(Hash3(seed, tick, key, idx)>>11) / float64(uint64(1)<<53)
}

package feature

import "math"

// ShannonEntropy 计算字节值分布的香农熵（单位 bit），取值范围 [0, 8]。
//
// 公式：H = -Σ p_i · log2(p_i)，p_i = count_i / len，只累加出现过的字节值。
// 空输入返回 0。
func ShannonEntropy(data []byte) float64 {
	if len(data) == 0 {
		return 0
	}
	var counts [256]int
	for _, b := range data {
		counts[b]++
	}
	n := float64(len(data))
	h := 0.0
	for _, c := range counts {
		if c == 0 {
			continue
		}
		p := float64(c) / n
		h -= p * math.Log2(p)
	}
	// 单一字节值时 -1·log2(1) 为 -0，统一成 0
	if h <= 0 {
		return 0
	}
	return h
}

// ByteRuns 统计相同字节连续出现的最大段数。
// 空输入为 0；单字节或全部相同为 1；"abab" 为 4；"aabb" 为 2。
func ByteRuns(data []byte) int {
	if len(data) == 0 {
		return 0
	}
	runs := 1
	prev := data[0]
	for _, b := range data[1:] {
		if b != prev {
			runs++
			prev = b
		}
	}
	return runs
}

// NumDigits 统计 ASCII 数字字节（0x30-0x39）的个数，纯字节判断，不做编码解析。
func NumDigits(data []byte) int {
	n := 0
	for _, b := range data {
		if b >= '0' && b <= '9' {
			n++
		}
	}
	return n
}

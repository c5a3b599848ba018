package index

import "math"

// L2Norm tính độ dài Euclid của vector
func L2Norm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

// Normalize trả về bản sao unit-length của vector. Vector zero trả về
// nil vì không chuẩn hóa được.
func Normalize(v []float32) []float32 {
	norm := L2Norm(v)
	if norm == 0 {
		return nil
	}
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(float64(x) / norm)
	}
	return out
}

// Cosine tính cosine similarity giữa hai vector cùng chiều.
// Trả về 0 nếu chiều lệch nhau hoặc một trong hai là vector zero.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// IsUnitNorm kiểm tra vector có unit-length trong sai số epsilon không
func IsUnitNorm(v []float32, epsilon float64) bool {
	return math.Abs(L2Norm(v)-1.0) <= epsilon
}

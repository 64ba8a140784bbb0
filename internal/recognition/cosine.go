package recognition

import "math"

// CosineSimilarity computes the cosine similarity between two vectors,
// clamped into [0, 1]. Face embeddings produce non-negative cosines in
// practice; negative values are floored to 0 rather than propagated.
// Zero-magnitude vectors and length mismatches score 0.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	similarity := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	// Clamp to [0, 1] to handle floating point errors and degenerate inputs.
	if similarity > 1 {
		similarity = 1
	}
	if similarity < 0 {
		similarity = 0
	}

	return similarity
}

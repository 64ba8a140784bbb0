// Package recognition implements nearest-match identification over a gallery
// of enrolled face embeddings. The gallery is scanned linearly; at the
// evaluated scale (hundreds to low thousands of identities) this is the
// scalability ceiling and no index structure is needed.
package recognition

import (
	"github.com/kozaktomas/face-attendance/internal/database"
)

// Match is the result of a successful gallery lookup.
type Match struct {
	IdentityID  string
	DisplayName string
	Similarity  float64
}

// BestMatch scans the gallery in order and returns the entry with the highest
// cosine similarity to the probe, provided it is strictly greater than
// threshold. A probe exactly at the threshold does not match.
//
// Entries only replace the current best on strict improvement, so ties
// resolve to the first gallery entry reaching that similarity. Entries with
// a mismatched dimension score 0 and are effectively skipped.
func BestMatch(probe []float32, gallery []database.Enrollment, threshold float64) (Match, bool) {
	var best Match
	for i := range gallery {
		sim := CosineSimilarity(probe, gallery[i].Embedding)
		if sim > best.Similarity {
			best = Match{
				IdentityID:  gallery[i].IdentityID,
				DisplayName: gallery[i].DisplayName,
				Similarity:  sim,
			}
		}
	}

	if best.IdentityID == "" || best.Similarity <= threshold {
		return Match{}, false
	}
	return best, true
}

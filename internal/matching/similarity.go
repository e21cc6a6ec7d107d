package matching

// Similarity returns a ratio in [0,1] describing how alike two company names are.
// Both names are normalized first; if either normalizes to the empty string the
// result is 0. Identical normalized names score 1.
func Similarity(a, b string) float64 {
	return NormalizedSimilarity(NormalizeName(a), NormalizeName(b))
}

// NormalizedSimilarity is Similarity for names that are already normalized.
// It is used with precomputed pools to avoid normalizing registry names repeatedly.
//
// The ratio is 2*M/T where T is the combined rune length and M the total size of
// the matching blocks, found by taking the longest common substring and recursing
// on the unmatched text to its left and right.
func NormalizedSimilarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 1
	}

	ra, rb := []rune(a), []rune(b)
	m := newBlockMatcher(ra, rb)
	matched := m.matchedRunes()

	return 2 * float64(matched) / float64(len(ra)+len(rb))
}

// blockMatcher finds matching blocks between two rune sequences.
type blockMatcher struct {
	a, b []rune

	// b2j maps each rune of b to its ascending positions in b.
	b2j map[rune][]int

	// prev and cur hold, at index j+1, the length of the match ending at a[i-1]/b[j]
	// and a[i]/b[j] respectively. Only touched slots are reset between rows.
	prev, cur               []int
	touchedPrev, touchedCur []int
}

func newBlockMatcher(a, b []rune) *blockMatcher {
	b2j := make(map[rune][]int, len(b))
	for j, r := range b {
		b2j[r] = append(b2j[r], j)
	}
	return &blockMatcher{
		a:    a,
		b:    b,
		b2j:  b2j,
		prev: make([]int, len(b)+1),
		cur:  make([]int, len(b)+1),
	}
}

// matchedRunes returns the total size of all matching blocks.
func (m *blockMatcher) matchedRunes() int {
	type span struct{ alo, ahi, blo, bhi int }

	total := 0
	queue := []span{{0, len(m.a), 0, len(m.b)}}
	for len(queue) > 0 {
		s := queue[len(queue)-1]
		queue = queue[:len(queue)-1]

		i, j, k := m.longestMatch(s.alo, s.ahi, s.blo, s.bhi)
		if k == 0 {
			continue
		}
		total += k
		if s.alo < i && s.blo < j {
			queue = append(queue, span{s.alo, i, s.blo, j})
		}
		if i+k < s.ahi && j+k < s.bhi {
			queue = append(queue, span{i + k, s.ahi, j + k, s.bhi})
		}
	}
	return total
}

// longestMatch returns the longest block a[i:i+k] == b[j:j+k] inside
// a[alo:ahi] and b[blo:bhi]. Among equally long blocks it returns the one that
// starts earliest in a, and of those the one that starts earliest in b.
func (m *blockMatcher) longestMatch(alo, ahi, blo, bhi int) (besti, bestj, bestk int) {
	besti, bestj = alo, blo

	for i := alo; i < ahi; i++ {
		m.touchedCur = m.touchedCur[:0]
		for _, j := range m.b2j[m.a[i]] {
			if j < blo {
				continue
			}
			if j >= bhi {
				break
			}
			k := m.prev[j] + 1
			m.cur[j+1] = k
			m.touchedCur = append(m.touchedCur, j+1)
			if k > bestk {
				besti, bestj, bestk = i-k+1, j-k+1, k
			}
		}

		for _, idx := range m.touchedPrev {
			m.prev[idx] = 0
		}
		m.prev, m.cur = m.cur, m.prev
		m.touchedPrev, m.touchedCur = m.touchedCur, m.touchedPrev
	}

	for _, idx := range m.touchedPrev {
		m.prev[idx] = 0
	}
	m.touchedPrev = m.touchedPrev[:0]

	return besti, bestj, bestk
}

package analyzer

// Best scans keys in order and returns the key with the highest value.
// Keys for which value reports false are skipped. A later key replaces the
// current pick only on a strictly higher value, so the earliest key wins
// ties.
func Best[K any](keys []K, value func(K) (float64, bool)) (K, float64, bool) {
	return pick(keys, value, func(a, b float64) bool { return a > b })
}

// Worst is Best with the lowest value winning.
func Worst[K any](keys []K, value func(K) (float64, bool)) (K, float64, bool) {
	return pick(keys, value, func(a, b float64) bool { return a < b })
}

func pick[K any](keys []K, value func(K) (float64, bool), better func(a, b float64) bool) (K, float64, bool) {
	var (
		bestKey K
		bestVal float64
		found   bool
	)
	for _, k := range keys {
		v, ok := value(k)
		if !ok {
			continue
		}
		if !found || better(v, bestVal) {
			bestKey, bestVal, found = k, v, true
		}
	}
	return bestKey, bestVal, found
}

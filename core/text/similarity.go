package text

// Jaccard returns |A∩B| / |A∪B| over two token sets, 0 when the union is
// empty.
func Jaccard(a, b map[string]struct{}) float64 {
	small, big := a, b
	if len(b) < len(a) {
		small, big = b, a
	}

	intersection := 0
	for t := range small {
		if _, ok := big[t]; ok {
			intersection++
		}
	}

	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

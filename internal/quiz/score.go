package quiz

// Result is the outcome of scoring a completed answer set.
type Result struct {
	// Primary is the tag with the highest count.
	Primary Tag
	// Secondary is set only when another tag exactly ties Primary's count.
	// It never holds a general runner-up.
	Secondary Tag
	// Counts is the raw tag tally.
	Counts map[Tag]int
}

// Score classifies an answer set into a primary persona and an optional
// tied secondary persona.
//
// Ties are broken by scanning tags in the canonical A, B, C, D order: the
// first tag to reach the maximum count wins primary, and the next tag at
// the same count (if any) becomes secondary. The rule is deliberately
// independent of map iteration order so repeated calls with the same
// answers always return the same result.
func Score(answers map[int]Tag) Result {
	counts := make(map[Tag]int, len(CanonicalTags))
	for _, tag := range answers {
		counts[tag]++
	}

	result := Result{Counts: counts}
	max := -1
	for _, tag := range CanonicalTags {
		if counts[tag] > max {
			max = counts[tag]
			result.Primary = tag
		}
	}
	for _, tag := range CanonicalTags {
		if tag == result.Primary {
			continue
		}
		if counts[tag] == max && max > 0 {
			result.Secondary = tag
			break
		}
	}
	return result
}

package match

// Decision is the aggregate outcome of a multi-frame capture burst.
type Decision struct {
	StudentID int64
	Accepted  bool
	// Frames is the number of frames that produced a verdict (undecodable
	// frames are skipped before voting).
	Frames int
	// Votes is the winning candidate's vote count when accepted.
	Votes int
}

// Decide applies strict-majority voting over per-frame verdicts. The winning
// candidate must be a real student (not the no-match bucket) and must hold
// strictly more than half of the votes; a plurality is not enough. Requiring
// a strict majority across consecutive frames suppresses one-off
// misidentifications from lighting or pose noise without demanding
// unanimity. An empty verdict list is rejected immediately.
func Decide(verdicts []Verdict) Decision {
	if len(verdicts) == 0 {
		return Decision{}
	}

	counts := make(map[int64]int)
	bestID := int64(0)
	bestCount := 0
	for _, v := range verdicts {
		if !v.Matched {
			continue
		}
		counts[v.StudentID]++
		// Strict > keeps the earliest candidate to reach a count on ties.
		if counts[v.StudentID] > bestCount {
			bestCount = counts[v.StudentID]
			bestID = v.StudentID
		}
	}

	n := len(verdicts)
	if bestCount <= n/2 {
		return Decision{Frames: n}
	}

	return Decision{
		StudentID: bestID,
		Accepted:  true,
		Frames:    n,
		Votes:     bestCount,
	}
}

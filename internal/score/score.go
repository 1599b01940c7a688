// Package score keeps the running tally of a round.
package score

import "math"

// Summary is a point-in-time view of the tally.
type Summary struct {
	Score    int `json:"score"`
	Shots    int `json:"shots"`
	Hits     int `json:"hits"`
	Accuracy int `json:"accuracy"`
}

// Aggregator counts actions and hits. Shots and hits only grow until Reset.
type Aggregator struct {
	score int
	shots int
	hits  int
}

// RecordShot counts one fired action.
func (a *Aggregator) RecordShot() {
	a.shots++
}

// RecordHit counts one resolved hit worth points.
func (a *Aggregator) RecordHit(points int) {
	a.hits++
	a.score += points
}

// Accuracy returns hits as a rounded percentage of shots, 0 with no shots.
func (a *Aggregator) Accuracy() int {
	if a.shots == 0 {
		return 0
	}
	acc := int(math.Round(float64(a.hits) / float64(a.shots) * 100))
	return max(0, min(100, acc))
}

// Summary returns the current tally.
func (a *Aggregator) Summary() Summary {
	return Summary{
		Score:    a.score,
		Shots:    a.shots,
		Hits:     a.hits,
		Accuracy: a.Accuracy(),
	}
}

// Reset zeroes the tally.
func (a *Aggregator) Reset() {
	*a = Aggregator{}
}

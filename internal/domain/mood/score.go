package mood

const (
	MinScore     = 0
	MaxScore     = 5
	DefaultScore = 3
)

var labels = [...]string{"Terrible", "Bad", "Meh", "Okay", "Good", "Excellent"}

func ValidScore(n int) bool { return n >= MinScore && n <= MaxScore }

// Label names a score; out-of-range scores are "Unknown".
func Label(n int) string {
	if !ValidScore(n) {
		return "Unknown"
	}
	return labels[n]
}

// Clamp maps out-of-range scores to DefaultScore.
func Clamp(n int) int {
	if !ValidScore(n) {
		return DefaultScore
	}
	return n
}

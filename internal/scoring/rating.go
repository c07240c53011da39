package scoring

// Rating is the categorical classification of a final score
type Rating struct {
	Label string `json:"label"`
	Color string `json:"color"`
}

// Canonical percent-based rating thresholds, evaluated on the 0-100 score.
var ratingTable = []struct {
	min    float64
	rating Rating
}{
	{85, Rating{Label: "Eccellente", Color: "#4caf50"}},
	{70, Rating{Label: "Molto Buono", Color: "#8bc34a"}},
	{55, Rating{Label: "Adeguato", Color: "#ffc107"}},
	{40, Rating{Label: "Critico", Color: "#ff9800"}},
}

var ratingInadequate = Rating{Label: "Inadeguato", Color: "#f44336"}

// Classify maps a final score to its rating
func Classify(finalScore float64) Rating {
	for _, entry := range ratingTable {
		if finalScore >= entry.min {
			return entry.rating
		}
	}
	return ratingInadequate
}

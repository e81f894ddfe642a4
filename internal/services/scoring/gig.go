package scoring

import (
	"time"

	"GigCredit/internal/domain/models"
)

// GigStabilityMetric scores platform-side information when present and falls
// back to the length of the earning history otherwise.
func GigStabilityMetric(txns []models.Transaction, gig *models.GigData, now time.Time) models.MetricResult {
	score, status := 50.0, "No Gig Data Available"

	if !gig.Empty() {
		if r := gig.PlatformRating; r != nil && *r > 0 {
			switch {
			case *r >= 4.5:
				score, status = 90, "Excellent Platform Rating"
			case *r >= 4.0:
				score, status = 75, "Good Platform Rating"
			case *r >= 3.5:
				score, status = 60, "Average Platform Rating"
			default:
				score, status = 40, "Below Average Rating"
			}
		}
	} else if months := len(groupByMonth(txns, true)); months > 0 {
		switch {
		case months >= 6:
			score, status = 70, "Long-term Earning History"
		case months >= 3:
			score, status = 55, "Moderate Earning History"
		default:
			score, status = 40, "Limited Earning History"
		}
	}

	return models.MetricResult{Value: score, Score: score, Status: status, LastUpdated: now}
}

package services

import (
	"math"
	"sort"

	"github.com/google/uuid"
	"github.com/skillbridge/tutoring-backend/internal/models"
)

// FeaturedLimit is how many tutors the featured list returns
const FeaturedLimit = 6

// RatingSummary is the rollup of one tutor's reviews
type RatingSummary struct {
	Average float64
	Count   int
}

// AverageRating is the mean of the ratings rounded to one decimal, or 0 when there are none
func AverageRating(ratings []int) float64 {
	if len(ratings) == 0 {
		return 0
	}
	sum := 0
	for _, r := range ratings {
		sum += r
	}
	return roundTo(float64(sum)/float64(len(ratings)), 1)
}

// Earnings sums hours x hourly rate over the rows, rounded to two decimals
func Earnings(rows []models.EarningRow) float64 {
	total := 0.0
	for _, row := range rows {
		slot := models.Slot{Start: row.StartTime, End: row.EndTime}
		total += slot.Hours() * row.HourlyRate
	}
	return roundTo(total, 2)
}

// SummariseRatings groups rating rows by tutor
func SummariseRatings(rows []models.RatingRow) map[uuid.UUID]RatingSummary {
	byTutor := make(map[uuid.UUID][]int)
	for _, row := range rows {
		byTutor[row.TutorID] = append(byTutor[row.TutorID], row.Rating)
	}

	summaries := make(map[uuid.UUID]RatingSummary, len(byTutor))
	for tutorID, ratings := range byTutor {
		summaries[tutorID] = RatingSummary{Average: AverageRating(ratings), Count: len(ratings)}
	}
	return summaries
}

// ApplyRatings fills AverageRating and TotalReviews on each listing
func ApplyRatings(listings []models.TutorListing, summaries map[uuid.UUID]RatingSummary) {
	for i := range listings {
		summary := summaries[listings[i].UserID]
		listings[i].AverageRating = summary.Average
		listings[i].TotalReviews = summary.Count
	}
}

// RankFeatured orders listings by average rating then review count, both
// descending, and keeps the first limit. Ties keep their input order.
func RankFeatured(listings []models.TutorListing, limit int) []models.TutorListing {
	ranked := make([]models.TutorListing, len(listings))
	copy(ranked, listings)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].AverageRating != ranked[j].AverageRating {
			return ranked[i].AverageRating > ranked[j].AverageRating
		}
		return ranked[i].TotalReviews > ranked[j].TotalReviews
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

func roundTo(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}

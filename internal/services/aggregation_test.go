package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/skillbridge/tutoring-backend/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestAverageRating(t *testing.T) {
	assert.Equal(t, 4.0, AverageRating([]int{5, 4, 3}))
	assert.Equal(t, 0.0, AverageRating(nil))
	assert.Equal(t, 4.7, AverageRating([]int{5, 5, 4}))
	assert.Equal(t, 3.5, AverageRating([]int{3, 4}))
}

func TestEarnings(t *testing.T) {
	start := time.Date(2026, 2, 10, 10, 0, 0, 0, time.UTC)
	rows := []models.EarningRow{
		{StartTime: start, EndTime: start.Add(90 * time.Minute), HourlyRate: 40},
		{StartTime: start, EndTime: start.Add(20 * time.Minute), HourlyRate: 33.33},
	}

	// 1.5h x 40 + 1/3h x 33.33 = 60 + 11.11
	assert.Equal(t, 71.11, Earnings(rows))
	assert.Equal(t, 0.0, Earnings(nil))
}

func TestSummariseAndApplyRatings(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	rows := []models.RatingRow{
		{TutorID: a, Rating: 5}, {TutorID: a, Rating: 4}, {TutorID: b, Rating: 2},
	}

	summaries := SummariseRatings(rows)
	assert.Equal(t, RatingSummary{Average: 4.5, Count: 2}, summaries[a])
	assert.Equal(t, RatingSummary{Average: 2, Count: 1}, summaries[b])

	listings := []models.TutorListing{
		{TutorProfile: models.TutorProfile{UserID: a}},
		{TutorProfile: models.TutorProfile{UserID: c}},
	}
	ApplyRatings(listings, summaries)
	assert.Equal(t, 4.5, listings[0].AverageRating)
	assert.Equal(t, 2, listings[0].TotalReviews)
	assert.Equal(t, 0.0, listings[1].AverageRating)
	assert.Equal(t, 0, listings[1].TotalReviews)
}

func TestRankFeatured(t *testing.T) {
	listing := func(id int64, avg float64, count int) models.TutorListing {
		return models.TutorListing{
			TutorProfile:  models.TutorProfile{ID: id},
			AverageRating: avg,
			TotalReviews:  count,
		}
	}

	input := []models.TutorListing{
		listing(1, 4.0, 10),
		listing(2, 4.8, 2),
		listing(3, 4.0, 30),
		listing(4, 0, 0),
		listing(5, 5.0, 1),
		listing(6, 3.9, 50),
		listing(7, 4.8, 2),
		listing(8, 1.0, 1),
	}

	ranked := RankFeatured(input, FeaturedLimit)

	var ids []int64
	for _, l := range ranked {
		ids = append(ids, l.ID)
	}
	assert.Equal(t, []int64{5, 2, 7, 3, 1, 6}, ids)
	assert.Equal(t, int64(1), input[0].ID, "input order is not modified")

	assert.Len(t, RankFeatured(input[:2], FeaturedLimit), 2)
}

package usecase

import (
	"math"
	"time"

	"foodtruck-market/internal/data/entity"
)

// RentalDays counts both the start and end date
func RentalDays(start, end time.Time) int {
	return int(end.Sub(start).Hours()/24) + 1
}

// CalculateTotalPrice charges full weeks at the weekly rate when the listing
// has one, and every remaining day at the daily rate.
func CalculateTotalPrice(listing *entity.Listing, start, end time.Time) float64 {
	days := RentalDays(start, end)
	if days < 1 {
		return 0
	}

	if listing.WeeklyRate == nil || *listing.WeeklyRate <= 0 {
		return roundCents(float64(days) * listing.DailyRate)
	}

	weeks := days / 7
	rest := days % 7
	return roundCents(float64(weeks)*(*listing.WeeklyRate) + float64(rest)*listing.DailyRate)
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

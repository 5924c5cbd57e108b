package utils

import "math"

const (
	baseTrustScore       = 50
	maxRentalsBonus      = 20
	kycApprovedBonus     = 10
	ratingPointsPerStar  = 10
	minReviewsForRating  = 1
	neutralRating        = 3.0
	rentalBonusPerRental = 2
)

// TrustScore derives the 0..100 reputation shown on profiles.
// It starts at 50, moves 10 points per star away from a neutral 3-star average,
// adds 2 per completed rental (capped at 20) and 10 for an approved KYC.
func TrustScore(avgRating float64, reviewCount, completedRentals int32, kycApproved bool) int32 {
	score := float64(baseTrustScore)

	if reviewCount >= minReviewsForRating {
		score += (avgRating - neutralRating) * ratingPointsPerStar
	}

	bonus := int(completedRentals) * rentalBonusPerRental
	if bonus > maxRentalsBonus {
		bonus = maxRentalsBonus
	}
	score += float64(bonus)

	if kycApproved {
		score += kycApprovedBonus
	}

	score = math.Round(score)
	switch {
	case score < 0:
		return 0
	case score > 100:
		return 100
	}
	return int32(score)
}

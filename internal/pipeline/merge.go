package pipeline

import "github.com/localaudit/localaudit/internal/model"

// MergeFacts combines a baseline record with a deep-data record. The deep
// source wins every field it actually filled; the baseline fills the gaps.
// Hours and attributes from both sources are unioned key by key with deep
// values winning collisions. Competitors always come from the baseline
// record, since the deep source never carries them and they are fetched
// separately.
func MergeFacts(base, deep *model.BusinessFacts) *model.BusinessFacts {
	if base == nil {
		return deep
	}
	if deep == nil {
		return base
	}

	merged := model.NewBusinessFacts()
	merged.BusinessName = pick(deep.BusinessName, base.BusinessName)
	merged.BusinessAddress = pick(deep.BusinessAddress, base.BusinessAddress)
	merged.GooglePlaceID = pick(deep.GooglePlaceID, base.GooglePlaceID)
	merged.PrimaryCategory = pick(deep.PrimaryCategory, base.PrimaryCategory)
	merged.Description = pick(deep.Description, base.Description)
	merged.Phone = pick(deep.Phone, base.Phone)
	merged.WebsiteURL = pick(deep.WebsiteURL, base.WebsiteURL)

	merged.SecondaryCategories = base.SecondaryCategories
	if len(deep.SecondaryCategories) > 0 {
		merged.SecondaryCategories = deep.SecondaryCategories
	}

	for key, value := range base.Hours {
		merged.Hours[key] = value
	}
	for key, value := range deep.Hours {
		merged.Hours[key] = value
	}

	for key, value := range base.Attributes {
		merged.Attributes[key] = value
	}
	for key, value := range deep.Attributes {
		merged.Attributes[key] = value
	}

	merged.Services = base.Services
	if len(deep.Services) > 0 {
		merged.Services = deep.Services
	}

	merged.PhotoCount = pickInt(deep.PhotoCount, base.PhotoCount)
	merged.OwnerPhotoCount = pickInt(deep.OwnerPhotoCount, base.OwnerPhotoCount)
	merged.HasLogo = deep.HasLogo || base.HasLogo
	merged.HasCoverPhoto = deep.HasCoverPhoto || base.HasCoverPhoto

	merged.ReviewCount = pickInt(deep.ReviewCount, base.ReviewCount)
	merged.AverageRating = pickFloat(deep.AverageRating, base.AverageRating)
	merged.RecentReviewDate = deep.RecentReviewDate
	if merged.RecentReviewDate == nil {
		merged.RecentReviewDate = base.RecentReviewDate
	}
	merged.MonthlyReviewVelocity = pickFloat(deep.MonthlyReviewVelocity, base.MonthlyReviewVelocity)
	// Deep response rate is authoritative even at zero: zero there means
	// the owner really never responded, not that the field was missing.
	merged.ResponseRate = deep.ResponseRate

	merged.LastPostDate = deep.LastPostDate
	if merged.LastPostDate == nil {
		merged.LastPostDate = base.LastPostDate
	}
	merged.PostFrequency = base.PostFrequency
	if deep.PostFrequency != model.PostUnknown {
		merged.PostFrequency = deep.PostFrequency
	}

	merged.WebsiteHTTPS = deep.WebsiteHTTPS || base.WebsiteHTTPS
	merged.WebsiteLoads = deep.WebsiteLoads || base.WebsiteLoads
	merged.WebsiteMobile = deep.WebsiteMobile
	merged.WebsiteHasNAP = deep.WebsiteHasNAP || base.WebsiteHasNAP

	merged.Competitors = base.Competitors

	merged.Source = "merged"
	merged.SourceCID = base.SourceCID
	return merged
}

func pick(deep, base string) string {
	if deep != "" {
		return deep
	}
	return base
}

func pickInt(deep, base int) int {
	if deep != 0 {
		return deep
	}
	return base
}

func pickFloat(deep, base float64) float64 {
	if deep != 0 {
		return deep
	}
	return base
}

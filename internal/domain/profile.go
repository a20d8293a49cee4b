// File: internal/domain/profile.go
package domain

import "time"

// Profile holds the public-facing collaborator profile for a user.
type Profile struct {
	ID             uint     `gorm:"primaryKey" json:"id"`
	UserID         uint     `gorm:"uniqueIndex;not null" json:"user_id"`
	FullName       string   `gorm:"size:100" json:"full_name"`
	Headline       string   `gorm:"size:200" json:"headline"`
	AvatarURL      string   `gorm:"size:500" json:"avatar_url"`
	University     string   `gorm:"size:200" json:"university"`
	Major          string   `gorm:"size:200" json:"major"`
	GraduationYear int      `json:"graduation_year"`
	Bio            string   `gorm:"type:text" json:"bio"`
	Skills         []string `gorm:"serializer:json" json:"skills"`
	TechStack      []string `gorm:"serializer:json" json:"tech_stack"`
	Roles          []string `gorm:"serializer:json" json:"roles"`
	Availability   string   `gorm:"size:50" json:"availability"`
	HoursPerWeek   int      `json:"hours_per_week"`
	Timezone       string   `gorm:"size:50" json:"timezone"`
	GitHubURL      string   `gorm:"size:500" json:"github_url"`
	LinkedInURL    string   `gorm:"size:500" json:"linkedin_url"`
	PortfolioURL   string   `gorm:"size:500" json:"portfolio_url"`
	Interests      []string `gorm:"serializer:json" json:"interests"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Availability values accepted on profiles.
const (
	AvailabilityActivelyLooking = "actively_looking"
	AvailabilityOpenToOffers    = "open_to_offers"
	AvailabilityNotAvailable    = "not_available"
)

// Completeness scores the profile 0-100 by the share of filled fields.
func (p *Profile) Completeness() int {
	fields := []bool{
		p.FullName != "",
		len(p.Skills) > 0,
		p.University != "",
		p.Major != "",
		p.GraduationYear != 0,
		p.Bio != "",
		len(p.TechStack) > 0,
		len(p.Roles) > 0,
		p.Availability != "",
		p.HoursPerWeek != 0,
		p.GitHubURL != "" || p.LinkedInURL != "" || p.PortfolioURL != "",
	}
	filled := 0
	for _, ok := range fields {
		if ok {
			filled++
		}
	}
	return filled * 100 / len(fields)
}

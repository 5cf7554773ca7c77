package models

import "strings"

type SectionType string

const (
	SectionSummary        SectionType = "summary"
	SectionExperience     SectionType = "experience"
	SectionEducation      SectionType = "education"
	SectionSkills         SectionType = "skills"
	SectionCertifications SectionType = "certifications"
	SectionProjects       SectionType = "projects"
	SectionLanguages      SectionType = "languages"
	SectionOther          SectionType = "other"
)

// ParseSectionType maps free-form section labels onto the closed vocabulary.
// Anything unrecognized becomes SectionOther so it still gets a weight.
func ParseSectionType(s string) SectionType {
	switch SectionType(strings.ToLower(strings.TrimSpace(s))) {
	case SectionSummary:
		return SectionSummary
	case SectionExperience:
		return SectionExperience
	case SectionEducation:
		return SectionEducation
	case SectionSkills:
		return SectionSkills
	case SectionCertifications:
		return SectionCertifications
	case SectionProjects:
		return SectionProjects
	case SectionLanguages:
		return SectionLanguages
	default:
		return SectionOther
	}
}

type ContactInfo struct {
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Location string `json:"location,omitempty"`
	LinkedIn string `json:"linkedin,omitempty"`
	Website  string `json:"website,omitempty"`
}

// CVSection is one display block of a CV. Multiple sections may share a
// section_type; order is display order.
type CVSection struct {
	SectionType SectionType `json:"section_type"`
	RawText     string      `json:"raw_text"`
	Items       []string    `json:"items,omitempty"`
}

// StructuredCV is the parsed CV plus enrichment fields. RawText keeps the
// full original text for traceability; enrichment fields are set once at
// parse time and never mutated afterwards.
type StructuredCV struct {
	Contact  ContactInfo `json:"contact"`
	Sections []CVSection `json:"sections"`
	RawText  string      `json:"raw_text,omitempty"`

	HardSkills           []string `json:"hard_skills,omitempty"`
	SoftSkills           []string `json:"soft_skills,omitempty"`
	Tools                []string `json:"tools,omitempty"`
	LanguagesSpoken      []string `json:"languages_spoken,omitempty"`
	TotalYearsExperience *float64 `json:"total_years_experience,omitempty"`
	EducationLevel       string   `json:"education_level,omitempty"`
	Certifications       []string `json:"certifications,omitempty"`
}

func (c *StructuredCV) HasSection(t SectionType) bool {
	for _, s := range c.Sections {
		if s.SectionType == t {
			return true
		}
	}
	return false
}

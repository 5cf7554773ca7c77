package models

type RequiredSkill struct {
	Skill    string `json:"skill"`
	Required bool   `json:"required"`
}

// StructuredJob mirrors StructuredCV's shape for the job side.
type StructuredJob struct {
	Title            string          `json:"title"`
	Company          string          `json:"company,omitempty"`
	EmploymentType   string          `json:"employment_type,omitempty"`
	RequiredSkills   []RequiredSkill `json:"required_skills,omitempty"`
	Responsibilities []string        `json:"responsibilities,omitempty"`
	Qualifications   []string        `json:"qualifications,omitempty"`
	RawText          string          `json:"raw_text,omitempty"`

	HardSkills           []string `json:"hard_skills,omitempty"`
	SoftSkills           []string `json:"soft_skills,omitempty"`
	Tools                []string `json:"tools,omitempty"`
	LanguagesSpoken      []string `json:"languages_spoken,omitempty"`
	TotalYearsExperience *float64 `json:"total_years_experience,omitempty"`
	EducationLevel       string   `json:"education_level,omitempty"`
	Certifications       []string `json:"certifications,omitempty"`
}

// SkillNames returns every listed skill name, required or not.
func (j *StructuredJob) SkillNames() []string {
	names := make([]string, 0, len(j.RequiredSkills))
	for _, s := range j.RequiredSkills {
		if s.Skill != "" {
			names = append(names, s.Skill)
		}
	}
	return names
}

// MandatorySkillNames returns only the skills marked required.
func (j *StructuredJob) MandatorySkillNames() []string {
	var names []string
	for _, s := range j.RequiredSkills {
		if s.Required && s.Skill != "" {
			names = append(names, s.Skill)
		}
	}
	return names
}

package services

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"alfredoptarigan/cv-optimizer/internal/models"
)

// ValidatorService is the deterministic truth-guard over a rewrite. No LLM,
// no embedding: a lexical check that every noun-phrase-like token the
// rewrite introduces already appears somewhere in the original CV, plus
// structural sanity rules. A heuristic, not a proof — false positives
// (legitimate paraphrases) are expected and tolerated; the result is a
// warning annotation, never a pipeline stop.
type ValidatorService interface {
	Validate(original *models.StructuredCV, optimized *models.OptimizedCV) *models.ValidationResult
}

type validatorService struct{}

func NewValidatorService() ValidatorService {
	return &validatorService{}
}

var tokenRe = regexp.MustCompile(`[A-Za-z0-9+#.]+`)

// Validate implements ValidatorService.
func (v *validatorService) Validate(original *models.StructuredCV, optimized *models.OptimizedCV) *models.ValidationResult {
	violations := make([]string, 0)

	violations = append(violations, checkNovelTokens(original, optimized)...)

	if original.Contact.Email != "" && optimized.Contact.Email == "" {
		violations = append(violations, "optimized CV dropped the contact email")
	}

	hasExperience := false
	hasSkills := false
	for _, section := range optimized.Sections {
		switch section.SectionType {
		case models.SectionExperience:
			hasExperience = true
		case models.SectionSkills:
			hasSkills = true
		}
	}
	if !hasExperience && !hasSkills {
		violations = append(violations, "optimized CV has neither an experience nor a skills section")
	}

	for i, section := range optimized.Sections {
		if strings.TrimSpace(section.RawText) == "" && len(section.Items) == 0 {
			violations = append(violations, fmt.Sprintf("section %d (%s) is empty", i+1, section.SectionType))
		}
	}

	originalChars := totalSectionChars(original.Sections)
	optimizedChars := totalSectionChars(optimized.Sections)
	if originalChars > 0 && float64(optimizedChars) < 0.5*float64(originalChars) {
		violations = append(violations,
			fmt.Sprintf("optimized CV shrank to %d%% of the original content", optimizedChars*100/originalChars))
	}

	return &models.ValidationResult{
		Passed:     len(violations) == 0,
		Violations: violations,
	}
}

// checkNovelTokens flags candidate tokens in the optimized sections whose
// stem appears nowhere in the original CV's raw text, sections, enrichment
// lists, or contact fields.
func checkNovelTokens(original *models.StructuredCV, optimized *models.OptimizedCV) []string {
	known := originalTokenSet(original)
	flagged := make(map[string]bool)

	var violations []string
	for _, section := range optimized.Sections {
		texts := append([]string{section.RawText}, section.Items...)
		for _, text := range texts {
			for _, token := range tokenRe.FindAllString(text, -1) {
				if !isCandidateToken(token) {
					continue
				}
				stem := stemToken(normalizeToken(token))
				if stem == "" || known[stem] || flagged[stem] {
					continue
				}
				flagged[stem] = true
				violations = append(violations,
					fmt.Sprintf("section %q introduces %q, which does not appear in the original CV", section.SectionType, token))
			}
		}
	}

	return violations
}

func originalTokenSet(cv *models.StructuredCV) map[string]bool {
	var corpus []string
	corpus = append(corpus, cv.RawText)
	for _, section := range cv.Sections {
		corpus = append(corpus, section.RawText)
		corpus = append(corpus, section.Items...)
	}
	corpus = append(corpus, cv.HardSkills...)
	corpus = append(corpus, cv.SoftSkills...)
	corpus = append(corpus, cv.Tools...)
	corpus = append(corpus, cv.LanguagesSpoken...)
	corpus = append(corpus, cv.Certifications...)
	corpus = append(corpus, cv.EducationLevel,
		cv.Contact.Name, cv.Contact.Email, cv.Contact.Phone,
		cv.Contact.Location, cv.Contact.LinkedIn, cv.Contact.Website)

	known := make(map[string]bool)
	for _, text := range corpus {
		for _, token := range tokenRe.FindAllString(text, -1) {
			if stem := stemToken(normalizeToken(token)); stem != "" {
				known[stem] = true
			}
		}
	}
	return known
}

// isCandidateToken keeps the check to noun-phrase-like tokens: capitalized
// words, acronyms, and anything carrying digits or +/# (EC2, C++, C#).
func isCandidateToken(token string) bool {
	if utf8.RuneCountInString(token) < 3 {
		return false
	}

	first, _ := utf8.DecodeRuneInString(token)
	if unicode.IsUpper(first) {
		return true
	}
	for _, r := range token {
		if unicode.IsDigit(r) || r == '+' || r == '#' {
			return true
		}
	}
	return false
}

func normalizeToken(token string) string {
	return strings.Trim(strings.ToLower(token), ".")
}

// stemToken cuts one common suffix so plural or tense changes between the
// original and the rewrite do not count as new facts.
func stemToken(token string) string {
	for _, suffix := range []string{"ing", "ed", "es", "s"} {
		if strings.HasSuffix(token, suffix) && len(token)-len(suffix) >= 3 {
			return token[:len(token)-len(suffix)]
		}
	}
	return token
}

func totalSectionChars(sections []models.CVSection) int {
	total := 0
	for _, section := range sections {
		total += utf8.RuneCountInString(section.RawText)
		for _, item := range section.Items {
			total += utf8.RuneCountInString(item)
		}
	}
	return total
}

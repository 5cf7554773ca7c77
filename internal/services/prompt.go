package services

import (
	"fmt"
	"strings"

	"alfredoptarigan/cv-optimizer/internal/models"
)

type PromptBuilder struct{}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// BuildCVParsePrompt creates the prompt for turning raw CV text into a StructuredCV.
func (pb *PromptBuilder) BuildCVParsePrompt(rawText string) string {
	return fmt.Sprintf(`You are an expert CV parser. Extract structured data from the CV text below.

CV TEXT:
%s

Return your response in the following JSON format:
{
  "contact": {"name": "", "email": "", "phone": "", "location": "", "linkedin": "", "website": ""},
  "sections": [
    {"section_type": "<summary|experience|education|skills|certifications|projects|languages|other>", "raw_text": "<the section's text, verbatim from the CV>", "items": ["<one entry per bullet point, role, or line>"]}
  ],
  "hard_skills": ["<technical skills mentioned anywhere in the CV>"],
  "soft_skills": ["<soft skills mentioned anywhere in the CV>"],
  "tools": ["<tools, frameworks, platforms mentioned anywhere in the CV>"],
  "languages_spoken": ["<human languages the candidate speaks>"],
  "total_years_experience": <number or null>,
  "education_level": "<highest education level, or empty string>",
  "certifications": ["<certification names>"]
}

Rules:
1. Use only information present in the CV text. Never invent data.
2. Keep each section's raw_text verbatim from the source.
3. Preserve the order sections appear in the CV.
4. Use "other" for sections that fit no listed type.
5. Omit nothing: every part of the CV belongs to exactly one section.

Return ONLY valid JSON. Do not include explanations, markdown, or text before or after the JSON.`, rawText)
}

// BuildJobNormalizePrompt creates the prompt for turning a raw job posting into a StructuredJob.
func (pb *PromptBuilder) BuildJobNormalizePrompt(rawText string) string {
	return fmt.Sprintf(`You are an expert recruiter. Normalize the job posting below into structured data.

JOB POSTING:
%s

Return your response in the following JSON format:
{
  "title": "<job title>",
  "company": "<company name, or empty string>",
  "employment_type": "<full-time|part-time|contract|internship|temporary|other>",
  "required_skills": [{"skill": "<skill name>", "required": <true if mandatory, false if nice-to-have>}],
  "responsibilities": ["<one entry per responsibility>"],
  "qualifications": ["<one entry per qualification>"],
  "hard_skills": ["<technical skills the posting mentions>"],
  "soft_skills": ["<soft skills the posting mentions>"],
  "tools": ["<tools, frameworks, platforms the posting mentions>"],
  "languages_spoken": ["<human languages the posting requires>"],
  "total_years_experience": <required years of experience as a number, or null>,
  "education_level": "<required education level, or empty string>",
  "certifications": ["<required certifications>"]
}

Rules:
1. Use only information present in the posting. Never invent requirements.
2. Mark a skill required=true only when the posting treats it as mandatory.

Return ONLY valid JSON. Do not include explanations, markdown, or text before or after the JSON.`, rawText)
}

// BuildMatchAnalysisPrompt creates the prompt for the LLM scoring layer.
// Both entities arrive pre-serialized without their raw_text.
func (pb *PromptBuilder) BuildMatchAnalysisPrompt(cvJSON, jobJSON string) string {
	return fmt.Sprintf(`You are an expert recruiter scoring how well a candidate matches a job.

CANDIDATE (structured JSON):
%s

JOB (structured JSON):
%s

Score the following dimensions, each between 0.0 and 1.0:
1. skills_score - overlap between the candidate's skills/tools and the job's required skills
2. experience_score - years and relevance of experience against the job's expectations
3. education_score - education level against the job's qualifications
4. languages_score - spoken languages against the job's requirements (1.0 when the job requires none)

For every skill in the job's required_skills list, report whether the candidate has it and quote the CV evidence.

Return your response in the following JSON format:
{
  "skills_score": <0.0-1.0>,
  "experience_score": <0.0-1.0>,
  "education_score": <0.0-1.0>,
  "languages_score": <0.0-1.0>,
  "overall_llm_score": <0.0-1.0>,
  "skill_details": [{"skill": "<name>", "found_in_cv": <true|false>, "cv_evidence": "<short quote, or empty string>"}],
  "strengths": ["<strength grounded in the CV>"],
  "gaps": ["<gap relative to the job>"],
  "reasoning": "<2-4 sentences explaining the scores>"
}

Base every judgment only on the provided JSON. Do not assume experience that is not stated.
Return ONLY valid JSON. Do not include explanations, markdown, or text before or after the JSON.`, cvJSON, jobJSON)
}

// BuildExplanationPrompt creates the prompt for the gap explainer.
func (pb *PromptBuilder) BuildExplanationPrompt(cv *models.StructuredCV, job *models.StructuredJob, score *models.SimilarityScore) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "JOB TITLE: %s\n", job.Title)
	if names := job.SkillNames(); len(names) > 0 {
		fmt.Fprintf(&sb, "JOB SKILLS: %s\n", strings.Join(names, ", "))
	}

	sb.WriteString("\nCV SECTIONS:\n")
	for _, section := range cv.Sections {
		fmt.Fprintf(&sb, "- [%s] %s\n", section.SectionType, truncateText(section.RawText, 300))
	}

	fmt.Fprintf(&sb, "\nMATCH SCORES:\n- overall: %.4f\n- embedding layer: %.4f\n", score.Overall, score.EmbeddingScore)
	for _, s := range score.SectionScores {
		fmt.Fprintf(&sb, "- section %s: %.4f\n", s.SectionType, s.Score)
	}
	if score.LLMAnalysis != nil {
		a := score.LLMAnalysis
		fmt.Fprintf(&sb, "- skills: %.2f, experience: %.2f, education: %.2f, languages: %.2f\n",
			a.SkillsScore, a.ExperienceScore, a.EducationScore, a.LanguagesScore)
		if len(a.Gaps) > 0 {
			fmt.Fprintf(&sb, "- known gaps: %s\n", strings.Join(a.Gaps, "; "))
		}
	} else {
		sb.WriteString("- LLM analysis unavailable; reason from the section scores\n")
	}

	return fmt.Sprintf(`You are an expert career advisor explaining why a CV scored the way it did against a job.

%s
List every concrete mismatch between what the job expects and what the CV shows.
Ground each mismatch in a specific field of the CV or job above. Order the list
from most to least severe.

Return your response in the following JSON format:
{
  "mismatches": [
    {"field": "<skill, experience, education, or section name>", "cv_value": "<what the CV shows, or 'missing'>", "job_expectation": "<what the job expects>", "explanation": "<1-2 sentences>"}
  ],
  "summary": "<2-3 sentence overview of the main gaps>"
}

Return ONLY valid JSON. Do not include explanations, markdown, or text before or after the JSON.`, sb.String())
}

// BuildRewritePrompt creates the prompt for the CV rewriter, carrying the
// truth constraint the validator later checks.
func (pb *PromptBuilder) BuildRewritePrompt(cvJSON, jobJSON, explanationJSON string) string {
	return fmt.Sprintf(`You are an expert CV writer improving a candidate's CV for a specific job.

ORIGINAL CV (structured JSON):
%s

TARGET JOB (structured JSON):
%s

IDENTIFIED MISMATCHES:
%s

Rewrite the CV so it presents the candidate as strongly as the facts allow:
1. Address every mismatch above that can be addressed without inventing anything.
2. HARD RULE: never add a skill, employer, job title, duration, or quantified achievement
   that is not present in the original CV. Rewording, reordering, and emphasizing existing
   facts is allowed; fabrication is not.
3. Keep the same section_type vocabulary (summary, experience, education, skills,
   certifications, projects, languages, other).
4. Keep the candidate's real contact details unchanged.
5. For each edit, add one entry to changes_summary saying what changed and which
   mismatch it addresses.

Return your response in the following JSON format:
{
  "contact": {"name": "", "email": "", "phone": "", "location": "", "linkedin": "", "website": ""},
  "sections": [{"section_type": "<type>", "raw_text": "<rewritten section text>", "items": ["<rewritten entries>"]}],
  "changes_summary": ["<what changed and why>"]
}

Return ONLY valid JSON. Do not include explanations, markdown, or text before or after the JSON.`, cvJSON, jobJSON, explanationJSON)
}

// BuildNarrativePrompt creates the prompt for the final report narrative.
func (pb *PromptBuilder) BuildNarrativePrompt(improved *models.ImprovedScore, explanation *models.ExplanationReport, optimized *models.OptimizedCV) string {
	var gaps []string
	for _, m := range explanation.Mismatches {
		gaps = append(gaps, fmt.Sprintf("%s (expected: %s)", m.Field, m.JobExpectation))
	}

	return fmt.Sprintf(`You are a career advisor summarizing the outcome of a CV optimization.

BEFORE SCORE: %.1f%%
AFTER SCORE: %.1f%%
CHANGE: %+.1f percentage points

GAPS THAT WERE IDENTIFIED:
%s

CHANGES MADE:
%s

Write a short narrative (2-4 paragraphs, plain text) for the candidate: how well the
original CV matched, what was changed and why, and what genuine gaps remain that no
rewrite can fix. Be encouraging but honest; do not promise outcomes.

Return ONLY the narrative text, no JSON, no markdown headings.`,
		improved.Before.Overall*100,
		improved.After.Overall*100,
		improved.Delta*100,
		formatList(gaps),
		formatList(optimized.ChangesSummary))
}

func formatList(items []string) string {
	if len(items) == 0 {
		return "- none"
	}
	var sb strings.Builder
	for _, item := range items {
		fmt.Fprintf(&sb, "- %s\n", item)
	}
	return strings.TrimRight(sb.String(), "\n")
}

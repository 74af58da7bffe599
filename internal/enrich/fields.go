package enrich

import "fmt"

// FieldSpec declares one inference-backed derived field. The open-ended set
// of fields lives in this table rather than a fixed call sequence, so adding
// or removing a field never touches the orchestrator.
type FieldSpec struct {
	// Key is the derived field name written to the cleaned record.
	Key string

	// Requires lists input fields that must all be non-empty for the field
	// to be worth inferring. When any is empty, Default is attached without
	// a backend call.
	Requires []string

	// Default is the value attached when a required input is empty.
	Default string

	// Labels, when non-empty, is the closed set of acceptable answers. The
	// raw response is normalized against it; an unrecognizable response
	// becomes "Unknown".
	Labels []string

	// Prompt builds the instruction from the record being enriched. It reads
	// via a getter so fields computed earlier in the table (department, for
	// persona) are already visible.
	Prompt func(get func(string) string) string
}

// InferenceFields is the full derived-field table, applied in order.
var InferenceFields = []FieldSpec{
	{
		Key:      "job_title_normalized",
		Requires: []string{"job_title"},
		Prompt: func(get func(string) string) string {
			return fmt.Sprintf("Normalize this job title: '%s'. Only return the cleaned job title.", get("job_title"))
		},
	},
	{
		Key:      "company_normalized",
		Requires: []string{"company"},
		Prompt: func(get func(string) string) string {
			return fmt.Sprintf("Clean and standardize this company name: '%s'. Only return the corrected name.", get("company"))
		},
	},
	{
		Key:      "department",
		Requires: []string{"job_title"},
		Prompt: func(get func(string) string) string {
			return fmt.Sprintf("Guess the department of a person named '%s' with the title '%s'. Only return the department.", get("name"), get("job_title"))
		},
	},
	{
		Key:      "intent",
		Requires: []string{"note"},
		Default:  "Other",
		Labels:   []string{"Inquiry", "Complaint", "Follow-up", "Unsubscribe", "Other"},
		Prompt: func(get func(string) string) string {
			return fmt.Sprintf("What is the intent of this CRM note: '%s'? Return only one of: Inquiry, Complaint, Follow-up, Unsubscribe, Other.", get("note"))
		},
	},
	{
		Key:      "name_valid",
		Requires: []string{"name"},
		Labels:   []string{"Yes", "No"},
		Prompt: func(get func(string) string) string {
			return fmt.Sprintf("Is '%s' a valid full name? Reply only with 'yes' or 'no'.", get("name"))
		},
	},
	{
		Key:      "note_summary",
		Requires: []string{"note"},
		Prompt: func(get func(string) string) string {
			return fmt.Sprintf("Rephrase this CRM note professionally: '%s'", get("note"))
		},
	},
	{
		Key:      "note_language",
		Requires: []string{"note"},
		Prompt: func(get func(string) string) string {
			return fmt.Sprintf("What language is this text written in: '%s'? Return only the language name.", get("note"))
		},
	},
	{
		Key:      "note_translated",
		Requires: []string{"note"},
		Prompt: func(get func(string) string) string {
			return fmt.Sprintf("Translate this to English: '%s'", get("note"))
		},
	},
	{
		Key:      "seniority",
		Requires: []string{"job_title"},
		Labels:   []string{"Entry-level", "Mid", "Senior", "Executive", "Unknown"},
		Prompt: func(get func(string) string) string {
			return fmt.Sprintf("What is the seniority level in this job title: '%s'? Reply with one of: Entry-level, Mid, Senior, Executive, Unknown.", get("job_title"))
		},
	},
	{
		Key:      "industry",
		Requires: []string{"company"},
		Prompt: func(get func(string) string) string {
			return fmt.Sprintf("Based on the company name '%s' and job title '%s', what is the likely industry? Return a single industry name like 'Healthcare', 'Tech', 'Finance', etc.", get("company"), get("job_title"))
		},
	},
	{
		Key:      "phone_cleaned",
		Requires: []string{"phone"},
		Prompt: func(get func(string) string) string {
			return fmt.Sprintf("Standardize this phone number: '%s'. Use international E.164 format if possible. Only return the cleaned number.", get("phone"))
		},
	},
	{
		Key:      "location",
		Requires: []string{"note"},
		Prompt: func(get func(string) string) string {
			return fmt.Sprintf("Extract the geographic location (e.g., city or country) mentioned in this CRM note: '%s'. Return only the location or 'Unknown'.", get("note"))
		},
	},
	{
		Key:      "next_action",
		Requires: []string{"note"},
		Prompt: func(get func(string) string) string {
			return fmt.Sprintf("Based on this CRM note: '%s', suggest a follow-up action (e.g., Call, Email, Close, Escalate). Return only the suggested action.", get("note"))
		},
	},
	{
		Key:      "lead_stage",
		Requires: []string{"note"},
		Labels:   []string{"Cold", "Warm", "Hot", "Closed", "Nurturing"},
		Prompt: func(get func(string) string) string {
			return fmt.Sprintf("Given the note: '%s', and job title: '%s', classify the lead stage. Reply with one of: Cold, Warm, Hot, Closed, Nurturing.", get("note"), get("job_title"))
		},
	},
	{
		Key:      "company_size_guess",
		Requires: []string{"company"},
		Default:  "Unknown",
		Labels:   []string{"Small (1-50)", "Medium (51-500)", "Large (500+)", "Unknown"},
		Prompt: func(get func(string) string) string {
			return fmt.Sprintf("Based on the company name '%s', what is the most likely size? Reply with: Small (1-50), Medium (51-500), Large (500+), or Unknown.", get("company"))
		},
	},
	{
		Key:      "persona",
		Requires: []string{"job_title"},
		Labels:   []string{"Decision Maker", "Influencer", "Champion", "Gatekeeper", "User", "Unknown"},
		Prompt: func(get func(string) string) string {
			// Department and company size were computed earlier in this table.
			return fmt.Sprintf("What buyer persona does this describe? Title: '%s', Department: '%s', Company size: '%s'. Return one persona like 'Decision Maker', 'Influencer', 'Champion', 'Gatekeeper', 'User', or 'Unknown'.", get("job_title"), get("department"), get("company_size_guess"))
		},
	},
	{
		Key:      "lead_quality",
		Requires: []string{"job_title"},
		Labels:   []string{"High", "Medium", "Low"},
		Prompt: func(get func(string) string) string {
			return fmt.Sprintf("Based on job title '%s', company '%s', and CRM note '%s', how would you rate the lead quality? Reply with: High, Medium, or Low.", get("job_title"), get("company"), get("note"))
		},
	},
	{
		Key:      "meeting_date",
		Requires: []string{"note"},
		Prompt: func(get func(string) string) string {
			return fmt.Sprintf("Does this note contain a meeting or call date? If yes, extract the date in ISO format (YYYY-MM-DD), otherwise return 'None'. Note: '%s'", get("note"))
		},
	},
	{
		Key:      "sentiment",
		Requires: []string{"note"},
		Labels:   []string{"Positive", "Neutral", "Negative"},
		Prompt: func(get func(string) string) string {
			return fmt.Sprintf("What is the sentiment of this CRM note: '%s'? Return: Positive, Neutral, or Negative.", get("note"))
		},
	},
	{
		Key:      "interest",
		Requires: []string{"note"},
		Prompt: func(get func(string) string) string {
			return fmt.Sprintf("Based on this CRM note: '%s', what product or service is the person showing interest in? Return a short answer like 'CRM software', 'Pricing plan', 'Training', or 'Unknown'.", get("note"))
		},
	},
	{
		Key:      "skills",
		Requires: []string{"note"},
		Prompt: func(get func(string) string) string {
			return fmt.Sprintf("What job-related skills or keywords are mentioned or implied in this note: '%s'? Return a comma-separated list of 1-5 concise skills.", get("note"))
		},
	},
	{
		Key:      "email_type",
		Requires: []string{"email"},
		Default:  "Unknown",
		Labels:   []string{"Corporate", "Personal"},
		Prompt: func(get func(string) string) string {
			return fmt.Sprintf("Is this email address '%s' corporate or personal? Reply with: Corporate or Personal.", get("email"))
		},
	},
	{
		Key:      "hiring_intent",
		Requires: []string{"note"},
		Default:  "Unknown",
		Labels:   []string{"Yes", "No", "Unclear"},
		Prompt: func(get func(string) string) string {
			return fmt.Sprintf("Does this CRM note and job title indicate a potential hiring or recruitment need? Note: '%s', Title: '%s'. Reply with: Yes, No, or Unclear.", get("note"), get("job_title"))
		},
	},
	{
		Key:      "churn_risk",
		Requires: []string{"note"},
		Default:  "Unknown",
		Labels:   []string{"High", "Medium", "Low"},
		Prompt: func(get func(string) string) string {
			return fmt.Sprintf("Based on this note, how likely is this contact to stop engaging with us or churn? Note: '%s'. Reply with: High, Medium, Low.", get("note"))
		},
	},
	{
		Key:      "geo_match",
		Requires: []string{"company", "city"},
		Default:  "Unknown",
		Labels:   []string{"Likely", "Unlikely", "Unknown"},
		Prompt: func(get func(string) string) string {
			return fmt.Sprintf("Is it common or expected for the company '%s' to operate in the city '%s'? Reply with: Likely, Unlikely, or Unknown.", get("company"), get("city"))
		},
	},
	{
		Key:      "domain_category",
		Requires: []string{"website"},
		Default:  "Unknown",
		Prompt: func(get func(string) string) string {
			return fmt.Sprintf("What is the category or industry of this website: '%s'? Return a single word like 'Tech', 'Retail', 'Education', etc.", get("website"))
		},
	},
	{
		Key:      "timezone",
		Requires: []string{"city"},
		Default:  "Unknown",
		Prompt: func(get func(string) string) string {
			return fmt.Sprintf("What is the time zone for the city '%s'? Return only the time zone name like 'PST', 'EST', 'CET', etc.", get("city"))
		},
	},
}

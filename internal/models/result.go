package models

type UploadResponse struct {
	ID           string `json:"id"`
	Filename     string `json:"filename"`
	OriginalName string `json:"original_name"`
	Format       string `json:"format"`
}

type MatchFilters struct {
	Enabled           bool     `json:"enabled"`
	MinExperience     float64  `json:"min_experience"`
	RequiredEducation []string `json:"required_education"`
}

type MatchRequest struct {
	DocumentIDs         []string      `json:"document_ids" validate:"required"`
	RequirementsText    string        `json:"requirements_text" validate:"required"`
	SimilarityThreshold float64       `json:"similarity_threshold"`
	Filters             *MatchFilters `json:"filters,omitempty"`
}

type MatchResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type CandidateResultData struct {
	OriginalFilename string   `json:"original_filename"`
	MatchedFilename  string   `json:"matched_filename"`
	SimilarityScore  float64  `json:"similarity_score"`
	ExperienceYears  float64  `json:"experience_years"`
	Education        []string `json:"education"`
}

type ResultResponse struct {
	ID           string                `json:"id"`
	Status       string                `json:"status"`
	Results      []CandidateResultData `json:"results,omitempty"`
	Diagnostics  []string              `json:"diagnostics,omitempty"`
	ErrorMessage *string               `json:"error_message,omitempty"`
}

type SearchRequest struct {
	Query string `json:"query" validate:"required"`
	Limit int    `json:"limit"`
}

type SearchHit struct {
	DocumentID string  `json:"document_id"`
	Filename   string  `json:"filename"`
	Score      float32 `json:"score"`
	Snippet    string  `json:"snippet,omitempty"`
}

type SearchResponse struct {
	Hits []SearchHit `json:"hits"`
}

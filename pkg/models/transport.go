package models

// AnalysisRequest represents a request for analysing a remote image
type AnalysisRequest struct {
	URL         string `json:"url" binding:"required"`
	SuggestCrop bool   `json:"suggest_crop,omitempty"`
}

// BatchAnalysisRequest represents a request for analysing several remote images
type BatchAnalysisRequest struct {
	URLs        []string `json:"urls" binding:"required,min=1"`
	SuggestCrop bool     `json:"suggest_crop,omitempty"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// AnalysisResponse wraps a report with its identifier and derived guidance
type AnalysisResponse struct {
	ID                string          `json:"id"`
	Source            string          `json:"source"`
	ProcessingTimeSec float64         `json:"processing_time_sec"`
	Metadata          ImageMetadata   `json:"metadata"`
	Report            TechnicalReport `json:"report"`
	Issues            []QualityIssue  `json:"issues"`
	Suggestions       []string        `json:"suggestions"`
}

// BatchItemResult is one entry of a batch response. Exactly one of
// Response and Error is set.
type BatchItemResult struct {
	Source   string            `json:"source"`
	Response *AnalysisResponse `json:"response,omitempty"`
	Error    string            `json:"error,omitempty"`
}

// BatchAnalysisResponse represents the response of a batch analysis
type BatchAnalysisResponse struct {
	Results           []BatchItemResult `json:"results"`
	Succeeded         int               `json:"succeeded"`
	Failed            int               `json:"failed"`
	ProcessingTimeSec float64           `json:"processing_time_sec"`
}

package models

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Page holds skip/limit pagination parameters
type Page struct {
	Skip  int `form:"skip"`
	Limit int `form:"limit"`
}

const (
	DefaultPageLimit = 100
	MaxPageLimit     = 1000
)

// MergeCounts reports how a batch was applied by the upsert engine
type MergeCounts struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
}

// BulkCreateResponse is returned by reference-data bulk endpoints
type BulkCreateResponse struct {
	Inserted int      `json:"inserted"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors"`
}

// UploadResult is the per-row report of a holdings spreadsheet upload
type UploadResult struct {
	SuccessCount int      `json:"success_count"`
	CreateCount  int      `json:"create_count"`
	UpdateCount  int      `json:"update_count"`
	ErrorCount   int      `json:"error_count"`
	Errors       []string `json:"errors"`
}

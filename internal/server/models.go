package server

// TroubleshootRequest is the body of POST /troubleshoot.
type TroubleshootRequest struct {
	Query string `json:"query" validate:"required,max=8000"`
	DBDir string `json:"db_dir" validate:"omitempty,max=1024"`
	// Strict defaults to true when omitted.
	Strict   *bool  `json:"strict"`
	AllowWeb bool   `json:"allow_web"`
	Locale   string `json:"locale" validate:"omitempty,oneof=en ko"`
}

// HTTPError is the JSON body of every error response.
type HTTPError struct {
	Error string `json:"error"`
}

package models

// Product is the extraction result for a single product page.
type Product struct {
	// Title is never empty on a successful extraction.
	Title string `json:"title"`

	// Price may legitimately be empty; not every page exposes a single price node.
	Price string `json:"price"`
}

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// StatusResponse is the response for GET /.
type StatusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// SyncResponse is the response for a successful POST /sync.
type SyncResponse struct {
	OK   bool `json:"ok"`
	Rows int  `json:"rows"`
}

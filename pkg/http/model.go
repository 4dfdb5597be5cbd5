package http

// APIResponse represents standard API response.
type APIResponse struct {
	Status  int         `json:"status" example:"200"`
	Message string      `json:"message" example:"OK"`
	Data    interface{} `json:"data,omitempty"`
}

// ValidationError represents validation error detail.
type ValidationError struct {
	Code    string                 `json:"code,omitempty" example:"ERR_LTE"`
	Field   string                 `json:"field,omitempty" example:"Limit"`
	Message string                 `json:"message,omitempty" example:"Limit must be less than or equal to 200"`
	Params  map[string]interface{} `json:"params,omitempty"`
}

// ListDataResponse is a list plus the size of the unfiltered collection.
type ListDataResponse struct {
	Rows  interface{} `json:"rows"`
	Total int64       `json:"total"`
}

package models

// Requests for the platform HTTP endpoints. Defined in domain for consistency and reuse.

type QueryRequest struct {
	Question string `json:"question" validate:"required,min=3,max=2000"`
	K        int    `json:"k" default:"5" validate:"gte=1,lte=50"`
}

type DocumentCreateRequest struct {
	Title    string `json:"title" validate:"required,min=3,max=200"`
	Content  string `json:"content" validate:"required,min=20"`
	Category string `json:"category" default:"general" validate:"min=3,max=64"`
}

type StreamDataRequest struct {
	Limit int `query:"limit" json:"limit" default:"20" validate:"gte=1,lte=500"`
}

type AlertsRequest struct {
	Limit int `query:"limit" json:"limit" default:"10" validate:"gte=1,lte=200"`
}

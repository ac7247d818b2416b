package models

type ContextPostRequest struct {
	Text string `json:"text"`
}

type ContextPostResponse struct {
	Results []ContextDocument `json:"results"`
}

type ContextDocument struct {
	Text     string  `json:"text"`
	Distance float32 `json:"distance"`
}

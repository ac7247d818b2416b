package models

type QueryPostRequest struct {
	// Text of the question to answer.
	Text string `json:"text"`

	// NoContext skips retrieval, so the generation model receives an
	// empty context block.
	NoContext bool `json:"no-context"`
}

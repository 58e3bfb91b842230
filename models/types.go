package models

// Vote polarity constants
const (
	PolarityUp   = 1
	PolarityDown = -1
)

// Request types

type SubmitVoteRequest struct {
	Polarity int `json:"polarity"`
}

// Response types

// Tally is the aggregate vote state for one song as seen by one caller.
// MyVote is 0 when the caller has not voted.
type Tally struct {
	Upvotes   int `json:"upvotes"`
	Downvotes int `json:"downvotes"`
	MyVote    int `json:"my_vote"`
}

type HealthResponse struct {
	Status       string `json:"status"`
	Started      string `json:"started"`
	Database     string `json:"database"`
	DatabaseSize string `json:"database_size,omitempty"`
}

type ReadyResponse struct {
	Ready bool `json:"ready"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

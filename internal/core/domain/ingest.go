package domain

// Upload is a single file submitted for ingestion.
type Upload struct {
	Content  string `json:"content"`
	Filename string `json:"filename" validate:"required"`
}

// IngestRequest is a batch of uploads for one owner.
type IngestRequest struct {
	OwnerID string   `json:"ownerId" validate:"required"`
	Files   []Upload `json:"files" validate:"required,min=1,dive"`
}

// IngestResult is the verdict of an ingestion run.
// Counts reflect work actually completed, even on failure.
type IngestResult struct {
	Success                bool   `json:"success"`
	ConversationsProcessed int    `json:"conversationsProcessed"`
	ChunksCreated          int    `json:"chunksCreated"`
	Error                  string `json:"error,omitempty"`

	// FilesFailed counts uploads that could not be parsed.
	FilesFailed int `json:"filesFailed,omitempty"`
}

// RetrieveRequest asks for memories relevant to a query.
type RetrieveRequest struct {
	Query   string `json:"query" validate:"required"`
	OwnerID string `json:"ownerId" validate:"required"`

	// Message is the natural-language text a temporal range is derived from.
	// It defaults to Query.
	Message string `json:"message,omitempty"`
}

// SessionRequest saves a live conversation into memory.
type SessionRequest struct {
	OwnerID   string    `json:"ownerId" validate:"required"`
	SessionID string    `json:"sessionId" validate:"required"`
	Messages  []Message `json:"messages"`
}

package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/recall/internal/core/domain"
)

// SearchInput is the input schema for the search_memories tool.
type SearchInput struct {
	Query   string `json:"query" jsonschema:"what to look for in past conversations"`
	Message string `json:"message,omitempty" jsonschema:"the user's full message, used to detect Italian time references such as ieri or la settimana scorsa"`
	Owner   string `json:"owner,omitempty" jsonschema:"owner whose memories are searched (defaults to the configured owner)"`
}

// IngestFile is a single file in an ingest_export call.
type IngestFile struct {
	Filename string `json:"filename" jsonschema:"file name, whose extension selects the parser"`
	Content  string `json:"content" jsonschema:"raw file content"`
}

// IngestInput is the input schema for the ingest_export tool.
type IngestInput struct {
	Files []IngestFile `json:"files" jsonschema:"exported conversation files"`
	Owner string       `json:"owner,omitempty" jsonschema:"owner the memories belong to (defaults to the configured owner)"`
}

// SessionInput is the input schema for the save_session tool.
type SessionInput struct {
	SessionID string           `json:"session_id" jsonschema:"identifier of the live session"`
	Messages  []domain.Message `json:"messages" jsonschema:"session turns in order, with role user or assistant"`
	Owner     string           `json:"owner,omitempty" jsonschema:"owner the session belongs to (defaults to the configured owner)"`
}

// SessionOutput is the output schema for the save_session tool.
type SessionOutput struct {
	Saved bool `json:"saved"`
}

// TextInput is the input schema for the analysis tools.
type TextInput struct {
	Message string `json:"message" jsonschema:"Italian text to analyse"`
}

// MoodOutput is the output schema for the analyze_mood tool.
type MoodOutput struct {
	Detected bool                 `json:"detected"`
	Analysis *domain.MoodAnalysis `json:"analysis,omitempty"`
}

// TemporalOutput is the output schema for the parse_temporal tool.
type TemporalOutput struct {
	Detected bool                  `json:"detected"`
	Range    *domain.TemporalRange `json:"range,omitempty"`
}

// registerTools registers all tool handlers with the MCP server.
// Tools whose port is missing are left out.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search_memories",
		Description: "Search the user's past conversations, honouring Italian time references",
	}, s.handleSearch)

	if s.ports.Ingest != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "ingest_export",
			Description: "Import exported conversations (Claude JSON, markdown, plain text) into memory",
		}, s.handleIngest)
	}

	if s.ports.Session != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "save_session",
			Description: "Save the current conversation into memory as one entry",
		}, s.handleSaveSession)
	}

	if s.ports.Insight != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "analyze_mood",
			Description: "Estimate the emotional state expressed in an Italian message",
		}, s.handleAnalyzeMood)

		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "parse_temporal",
			Description: "Extract the calendar range an Italian message refers to",
		}, s.handleParseTemporal)
	}
}

func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, domain.RetrievalResult, error) {
	owner, err := s.ports.owner(input.Owner)
	if err != nil {
		return nil, domain.RetrievalResult{}, err
	}

	res, err := s.ports.Retrieval.RetrieveForMessage(ctx, domain.RetrieveRequest{
		Query:   input.Query,
		OwnerID: owner,
		Message: input.Message,
	}, s.ports.now())
	if err != nil {
		return nil, domain.RetrievalResult{}, err
	}
	return nil, *res, nil
}

func (s *Server) handleIngest(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input IngestInput,
) (*mcp.CallToolResult, domain.IngestResult, error) {
	owner, err := s.ports.owner(input.Owner)
	if err != nil {
		return nil, domain.IngestResult{}, err
	}

	files := make([]domain.Upload, len(input.Files))
	for i, f := range input.Files {
		files[i] = domain.Upload{Filename: f.Filename, Content: f.Content}
	}

	res, err := s.ports.Ingest.Ingest(ctx, domain.IngestRequest{OwnerID: owner, Files: files})
	if err != nil {
		return nil, domain.IngestResult{}, err
	}
	return nil, *res, nil
}

func (s *Server) handleSaveSession(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SessionInput,
) (*mcp.CallToolResult, SessionOutput, error) {
	owner, err := s.ports.owner(input.Owner)
	if err != nil {
		return nil, SessionOutput{}, err
	}

	err = s.ports.Session.Save(ctx, domain.SessionRequest{
		OwnerID:   owner,
		SessionID: input.SessionID,
		Messages:  input.Messages,
	})
	if err != nil {
		return nil, SessionOutput{}, err
	}
	return nil, SessionOutput{Saved: true}, nil
}

func (s *Server) handleAnalyzeMood(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input TextInput,
) (*mcp.CallToolResult, MoodOutput, error) {
	a := s.ports.Insight.AnalyzeMood(input.Message)
	return nil, MoodOutput{Detected: a != nil, Analysis: a}, nil
}

func (s *Server) handleParseTemporal(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input TextInput,
) (*mcp.CallToolResult, TemporalOutput, error) {
	r := s.ports.Insight.ParseTemporal(input.Message, s.ports.now())
	return nil, TemporalOutput{Detected: r != nil, Range: r}, nil
}

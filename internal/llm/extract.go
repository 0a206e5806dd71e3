package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/harshshukla07/SwiftCV/internal/resume"
)

// Parse failure classes for extraction replies.
var (
	// ErrParse means the reply was not valid JSON after fence stripping.
	ErrParse = errors.New("ai response is not valid json")
	// ErrSchema means the reply parsed but is not a JSON object.
	ErrSchema = errors.New("ai response is not a json object")
)

// Extraction is the model's structured view of a resume. The document fields
// flatten into the same JSON keys the extraction prompt specifies.
type Extraction struct {
	Title string `json:"title"`
	resume.Document
}

// EnhanceSummary rewrites a professional summary. The reply is returned as
// untrusted free text with no further validation.
func (c *Client) EnhanceSummary(ctx context.Context, content string) (string, error) {
	return c.Generate(ctx, summarySystemPrompt, content)
}

// EnhanceJobDescription rewrites a job description into resume bullet points.
func (c *Client) EnhanceJobDescription(ctx context.Context, content string) (string, error) {
	return c.Generate(ctx, jobDescriptionSystemPrompt, content)
}

// ExtractResume sends resumeText through the structured-extraction prompt and
// parses the reply into an Extraction. The raw reply may be wrapped in a
// markdown fence; it is stripped before parsing.
func (c *Client) ExtractResume(ctx context.Context, resumeText string) (*Extraction, error) {
	reply, err := c.Generate(ctx, extractionSystemPrompt, extractionUserPrompt(resumeText))
	if err != nil {
		return nil, err
	}
	return ParseExtraction(reply)
}

// ParseExtraction decodes a raw model reply into an Extraction, distinguishing
// malformed JSON from JSON of the wrong shape.
func ParseExtraction(reply string) (*Extraction, error) {
	cleaned := CleanResponse(reply)

	var probe any
	if err := json.Unmarshal([]byte(cleaned), &probe); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	if _, ok := probe.(map[string]any); !ok {
		return nil, fmt.Errorf("%w: got %T", ErrSchema, probe)
	}

	var ext Extraction
	if err := json.Unmarshal([]byte(cleaned), &ext); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchema, err)
	}

	ext.Normalize()
	return &ext, nil
}

package store

import (
	"context"
	"time"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit   int       // max results (0 = unlimited)
	After   int64     // sequence > After
	From    time.Time // timestamp >= From
	Purpose string    // exact purpose match, LLM events only
}

// LLMRequestEventData captures the data for a single model request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMEvent is a stored model request.
type LLMEvent struct {
	ID           int       `sql:"id"`
	Sequence     int64     `sql:"sequence"`
	Timestamp    time.Time `sql:"timestamp"`
	Provider     string    `sql:"provider"`
	Model        string    `sql:"model"`
	Purpose      string    `sql:"purpose"`
	InputTokens  int       `sql:"input_tokens"`
	OutputTokens int       `sql:"output_tokens"`
	LatencyMs    int64     `sql:"latency_ms"`
	Success      bool      `sql:"success"`
	ErrorMessage string    `sql:"error_message"`
	RequestBody  string    `sql:"request_body"`
	ResponseBody string    `sql:"response_body"`
}

// PurposeUsage aggregates token usage for one purpose label.
type PurposeUsage struct {
	Purpose      string `sql:"purpose"`
	Calls        int    `sql:"calls"`
	InputTokens  int    `sql:"input_tokens"`
	OutputTokens int    `sql:"output_tokens"`
	AvgLatencyMs int64  `sql:"avg_latency_ms"`
}

// ModelUsage aggregates token usage for one model.
type ModelUsage struct {
	Model        string `sql:"model"`
	Calls        int    `sql:"calls"`
	InputTokens  int    `sql:"input_tokens"`
	OutputTokens int    `sql:"output_tokens"`
}

// EventRepo records and inspects model calls.
type EventRepo interface {
	// AppendLLMRequest records a model API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error
	// QueryLLMEvents returns events newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMEvent, error)
	// GetLLMEvent returns nil when no event has the id.
	GetLLMEvent(ctx context.Context, id int) (*LLMEvent, error)
	LLMUsageByPurpose(ctx context.Context) ([]PurposeUsage, error)
	LLMUsageByModel(ctx context.Context) ([]ModelUsage, error)
}

// FeedbackData is one regeneration reason.
type FeedbackData struct {
	SessionID     string
	QuestionIndex int
	Question      string
	Reason        string
}

// Feedback is a stored regeneration reason.
type Feedback struct {
	ID            int       `sql:"id"`
	Sequence      int64     `sql:"sequence"`
	Timestamp     time.Time `sql:"timestamp"`
	SessionID     string    `sql:"session_id"`
	QuestionIndex int       `sql:"question_index"`
	Question      string    `sql:"question"`
	Reason        string    `sql:"reason"`
}

type FeedbackRepo interface {
	AppendFeedback(ctx context.Context, data FeedbackData) error
	ListFeedback(ctx context.Context, opts QueryOpts) ([]Feedback, error)
}

// ExportData describes one written DOCX or PDF.
type ExportData struct {
	SessionID     string
	Title         string
	Level         string
	Format        string // "docx" or "pdf"
	Method        string
	Path          string
	ContentKey    string
	QuestionCount int
}

// Export is a stored export record.
type Export struct {
	ID            int       `sql:"id"`
	Sequence      int64     `sql:"sequence"`
	Timestamp     time.Time `sql:"timestamp"`
	SessionID     string    `sql:"session_id"`
	Title         string    `sql:"title"`
	Level         string    `sql:"level"`
	Format        string    `sql:"format"`
	Method        string    `sql:"method"`
	Path          string    `sql:"path"`
	ContentKey    string    `sql:"content_key"`
	QuestionCount int       `sql:"question_count"`
}

type ExportRepo interface {
	RecordExport(ctx context.Context, data ExportData) error
	RecentExports(ctx context.Context, limit int) ([]Export, error)
}

// UpdateCheckData is the outcome of one manifest check.
type UpdateCheckData struct {
	CurrentVersion string
	LatestVersion  string
	Available      bool
	Notes          string
	ErrorMessage   string
}

// UpdateCheckRecord is a stored manifest check.
type UpdateCheckRecord struct {
	ID             int       `sql:"id"`
	Sequence       int64     `sql:"sequence"`
	Timestamp      time.Time `sql:"timestamp"`
	CurrentVersion string    `sql:"current_version"`
	LatestVersion  string    `sql:"latest_version"`
	Available      bool      `sql:"available"`
	Notes          string    `sql:"notes"`
	ErrorMessage   string    `sql:"error_message"`
}

type UpdateRepo interface {
	RecordUpdateCheck(ctx context.Context, data UpdateCheckData) error
	// LastUpdateCheck returns nil when no check was recorded.
	LastUpdateCheck(ctx context.Context) (*UpdateCheckRecord, error)
}

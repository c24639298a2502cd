package domain

import (
	"strings"
	"time"
)

// DocumentType selects the output format of a project's document.
type DocumentType string

const (
	DocumentTypeDOCX DocumentType = "docx"
	DocumentTypePPTX DocumentType = "pptx"
)

// ParseDocumentType accepts the two recognised formats, case-insensitively.
func ParseDocumentType(s string) (DocumentType, error) {
	switch t := DocumentType(strings.ToLower(strings.TrimSpace(s))); t {
	case DocumentTypeDOCX, DocumentTypePPTX:
		return t, nil
	default:
		return "", Validationf("document_type must be %q or %q", DocumentTypeDOCX, DocumentTypePPTX)
	}
}

// Project is the top-level unit owned by a user. It always owns exactly one Document.
type Project struct {
	ID           string       `json:"id"`
	OwnerID      string       `json:"-"`
	Title        string       `json:"title"`
	Description  *string      `json:"description,omitempty"`
	DocumentType DocumentType `json:"document_type"`
	DocumentID   string       `json:"document_id"`
	CreatedAt    time.Time    `json:"created_at"`
}

// Document mirrors its project's type and holds the ordered sections.
type Document struct {
	ID        string       `json:"id"`
	ProjectID string       `json:"project_id"`
	Type      DocumentType `json:"type"`

	// Denormalised from the owning project for export and prompting.
	ProjectTitle       string  `json:"project_title"`
	ProjectDescription *string `json:"project_description,omitempty"`

	Sections []Section `json:"sections,omitempty"`
}

// Filename is the export name, "{project title}.{type}".
func (d *Document) Filename() string {
	return d.ProjectTitle + "." + string(d.Type)
}

// Feedback is the reader's verdict on a section's content.
type Feedback string

const (
	FeedbackNone       Feedback = ""
	FeedbackHelpful    Feedback = "helpful"
	FeedbackNotHelpful Feedback = "not_helpful"
)

func ParseFeedback(s string) (Feedback, error) {
	switch f := Feedback(strings.ToLower(strings.TrimSpace(s))); f {
	case FeedbackNone, FeedbackHelpful, FeedbackNotHelpful:
		return f, nil
	default:
		return "", Validationf("feedback must be %q, %q or empty", FeedbackHelpful, FeedbackNotHelpful)
	}
}

type Comment struct {
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// RefinementEntry records the content a refinement replaced.
type RefinementEntry struct {
	Instruction     string    `json:"instruction"`
	PreviousContent string    `json:"previous_content"`
	CreatedAt       time.Time `json:"created_at"`
}

// Section is one titled unit of a document. Content is nil until the first
// generation completes.
type Section struct {
	ID                string            `json:"id"`
	DocumentID        string            `json:"document_id"`
	Title             string            `json:"title"`
	Order             int               `json:"order"`
	Content           *string           `json:"content"`
	State             GenerationState   `json:"generation_state"`
	Feedback          Feedback          `json:"feedback,omitempty"`
	Comments          []Comment         `json:"comments"`
	RefinementHistory []RefinementEntry `json:"refinement_history"`
	UpdatedAt         time.Time         `json:"updated_at"`
}

// ContentOrEmpty returns the content, or "" while the section is still empty.
func (s *Section) ContentOrEmpty() string {
	if s.Content == nil {
		return ""
	}
	return *s.Content
}

// OutlineDraft is a proposed, not yet committed, list of section titles.
type OutlineDraft struct {
	ID           string       `json:"id"`
	DocumentID   string       `json:"document_id,omitempty"`
	Topic        string       `json:"topic"`
	DocumentType DocumentType `json:"document_type"`
	Titles       []string     `json:"titles"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// DefaultManualTitles is the suggested starting list for a manual outline.
func DefaultManualTitles() []string {
	return []string{"Introduction", "Body", "Conclusion"}
}

// NormalizeTitles trims every title and rejects an empty list or blank entries.
func NormalizeTitles(titles []string) ([]string, error) {
	if len(titles) == 0 {
		return nil, Validationf("at least one section title is required")
	}
	out := make([]string, len(titles))
	for i, t := range titles {
		t = strings.TrimSpace(t)
		if t == "" {
			return nil, Validationf("section title at position %d is empty", i)
		}
		out[i] = t
	}
	return out, nil
}

// SectionEvent announces a section's state change to live viewers of its document.
type SectionEvent struct {
	DocumentID string          `json:"document_id"`
	SectionID  string          `json:"section_id"`
	State      GenerationState `json:"generation_state"`
	At         time.Time       `json:"at"`
}

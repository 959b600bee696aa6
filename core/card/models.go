package card

import (
	"github.com/google/uuid"

	"github.com/rm-a0/flippit-sub000/core"
)

// ContentType tells how a question or an answer must be rendered.
type ContentType string

const (
	ContentText     ContentType = "Text"
	ContentPictures ContentType = "Pictures"
	ContentURL      ContentType = "Url"
)

// Sortable fields
const (
	SortQuestion = "question"
	SortAnswer   = "answer"
)

var sortable = []string{SortQuestion, SortAnswer}

// DefaultOrdering is used by the repositories when no ordering is requested; ties are broken by id.
var DefaultOrdering = []core.Ordering{{Field: SortQuestion, Ascending: true}}

type Card struct {
	ID           uuid.UUID
	QuestionType ContentType
	AnswerType   ContentType
	Question     string
	Answer       string
	Description  *string
	CreatorID    uuid.UUID
	CollectionID uuid.UUID
}

type ListModel struct {
	ID           uuid.UUID   `json:"id"`
	Question     string      `json:"question"`
	Answer       string      `json:"answer"`
	QuestionType ContentType `json:"questionType"`
	AnswerType   ContentType `json:"answerType"`
	CollectionID uuid.UUID   `json:"collectionId"`
}

type DetailModel struct {
	ID           uuid.UUID   `json:"id"`
	QuestionType ContentType `json:"questionType" validate:"omitempty,oneof=Text Pictures Url"`
	AnswerType   ContentType `json:"answerType" validate:"omitempty,oneof=Text Pictures Url"`
	Question     string      `json:"question" validate:"required,notblank"`
	Answer       string      `json:"answer" validate:"required,notblank"`
	Description  *string     `json:"description"`
	CreatorID    uuid.UUID   `json:"creatorId" validate:"required"`
	CollectionID uuid.UUID   `json:"collectionId" validate:"required"`
}

func (m *DetailModel) clean() {
	m.Question = core.CleanString(m.Question)
	m.Answer = core.CleanString(m.Answer)
	if m.Description != nil {
		m.Description = core.StringPtr(core.CleanString(*m.Description))
	}
	if m.QuestionType == "" {
		m.QuestionType = ContentText
	}
	if m.AnswerType == "" {
		m.AnswerType = ContentText
	}
}

// QueryFilter narrows a card listing; zero fields are ignored.
// Search does a case-insensitive match on one of Card.Question, Card.Answer or Card.Description.
type QueryFilter struct {
	Search       string
	CollectionID uuid.UUID
	CreatorID    uuid.UUID
}

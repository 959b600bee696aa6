package lesson

import (
	"github.com/google/uuid"

	"github.com/rm-a0/flippit-sub000/core"
)

// CompletedLesson records the answers & statistics of a user who went through a collection.
// AnswersJSON and StatisticsJSON are opaque documents produced by the client.
type CompletedLesson struct {
	ID             uuid.UUID
	AnswersJSON    string
	StatisticsJSON string
	UserID         uuid.UUID
	CollectionID   uuid.UUID
}

type ListModel struct {
	ID           uuid.UUID `json:"id"`
	UserID       uuid.UUID `json:"userId"`
	CollectionID uuid.UUID `json:"collectionId"`
}

type DetailModel struct {
	ID             uuid.UUID `json:"id"`
	AnswersJSON    string    `json:"answersJson" validate:"required,notblank,jsondoc"`
	StatisticsJSON string    `json:"statisticsJson" validate:"required,notblank,jsondoc"`
	UserID         uuid.UUID `json:"userId" validate:"required"`
	CollectionID   uuid.UUID `json:"collectionId" validate:"required"`
}

func (m *DetailModel) clean() {
	m.AnswersJSON = core.CleanString(m.AnswersJSON)
	m.StatisticsJSON = core.CleanString(m.StatisticsJSON)
}

// QueryFilter narrows a completed lesson listing; zero fields are ignored.
// Search does a case-insensitive match on the textual form of UserID or CollectionID,
// Content on AnswersJSON or StatisticsJSON.
type QueryFilter struct {
	Search       string
	Content      string
	UserID       uuid.UUID
	CollectionID uuid.UUID
}

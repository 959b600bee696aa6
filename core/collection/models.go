package collection

import (
	"time"

	"github.com/google/uuid"

	"github.com/rm-a0/flippit-sub000/core"
	"github.com/rm-a0/flippit-sub000/core/card"
)

// Sortable fields
const (
	SortName      = "name"
	SortStartTime = "startTime"
	SortEndTime   = "endTime"
)

var sortable = []string{SortName, SortStartTime, SortEndTime}

// DefaultOrdering is used by the repositories when no ordering is requested; ties are broken by id.
var DefaultOrdering = []core.Ordering{{Field: SortName, Ascending: true}}

// Collection is a timed lesson set of cards.
type Collection struct {
	ID        uuid.UUID
	Name      string
	CreatorID uuid.UUID
	StartTime time.Time // UTC
	EndTime   time.Time // UTC
}

type ListModel struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatorID uuid.UUID `json:"creatorId"`
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime"`
}

type DetailModel struct {
	ID        uuid.UUID        `json:"id"`
	Name      string           `json:"name" validate:"required,notblank"`
	CreatorID uuid.UUID        `json:"creatorId" validate:"required"`
	StartTime time.Time        `json:"startTime"`
	EndTime   time.Time        `json:"endTime" validate:"gtefield=StartTime"`
	Cards     []card.ListModel `json:"cards"`
}

func (m *DetailModel) clean() {
	m.Name = core.CleanString(m.Name)
	m.StartTime = m.StartTime.UTC()
	m.EndTime = m.EndTime.UTC()
}

// QueryFilter narrows a collection listing; zero fields are ignored.
// Search does a case-insensitive match on Collection.Name.
type QueryFilter struct {
	Search    string
	CreatorID uuid.UUID
}

package collection

import "github.com/rm-a0/flippit-sub000/core/card"

func ToListModel(col Collection) ListModel {
	return ListModel{
		ID:        col.ID,
		Name:      col.Name,
		CreatorID: col.CreatorID,
		StartTime: col.StartTime,
		EndTime:   col.EndTime,
	}
}

func ToListModels(cols []Collection) []ListModel {
	models := make([]ListModel, 0, len(cols))
	for _, col := range cols {
		models = append(models, ToListModel(col))
	}
	return models
}

func ToDetailModel(col Collection, cards []card.Card) DetailModel {
	return DetailModel{
		ID:        col.ID,
		Name:      col.Name,
		CreatorID: col.CreatorID,
		StartTime: col.StartTime,
		EndTime:   col.EndTime,
		Cards:     card.ToListModels(cards),
	}
}

// toEntity maps m onto a Collection; Cards are managed through the card service.
func (m DetailModel) toEntity() Collection {
	return Collection{
		ID:        m.ID,
		Name:      m.Name,
		CreatorID: m.CreatorID,
		StartTime: m.StartTime,
		EndTime:   m.EndTime,
	}
}

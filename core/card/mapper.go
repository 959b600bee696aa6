package card

func ToListModel(c Card) ListModel {
	return ListModel{
		ID:           c.ID,
		Question:     c.Question,
		Answer:       c.Answer,
		QuestionType: c.QuestionType,
		AnswerType:   c.AnswerType,
		CollectionID: c.CollectionID,
	}
}

func ToListModels(cards []Card) []ListModel {
	models := make([]ListModel, 0, len(cards))
	for _, c := range cards {
		models = append(models, ToListModel(c))
	}
	return models
}

func ToDetailModel(c Card) DetailModel {
	return DetailModel{
		ID:           c.ID,
		QuestionType: c.QuestionType,
		AnswerType:   c.AnswerType,
		Question:     c.Question,
		Answer:       c.Answer,
		Description:  c.Description,
		CreatorID:    c.CreatorID,
		CollectionID: c.CollectionID,
	}
}

func (m DetailModel) toEntity() Card {
	return Card{
		ID:           m.ID,
		QuestionType: m.QuestionType,
		AnswerType:   m.AnswerType,
		Question:     m.Question,
		Answer:       m.Answer,
		Description:  m.Description,
		CreatorID:    m.CreatorID,
		CollectionID: m.CollectionID,
	}
}

package lesson

func ToListModel(l CompletedLesson) ListModel {
	return ListModel{
		ID:           l.ID,
		UserID:       l.UserID,
		CollectionID: l.CollectionID,
	}
}

func ToListModels(lessons []CompletedLesson) []ListModel {
	models := make([]ListModel, 0, len(lessons))
	for _, l := range lessons {
		models = append(models, ToListModel(l))
	}
	return models
}

func ToDetailModel(l CompletedLesson) DetailModel {
	return DetailModel{
		ID:             l.ID,
		AnswersJSON:    l.AnswersJSON,
		StatisticsJSON: l.StatisticsJSON,
		UserID:         l.UserID,
		CollectionID:   l.CollectionID,
	}
}

func (m DetailModel) toEntity() CompletedLesson {
	return CompletedLesson{
		ID:             m.ID,
		AnswersJSON:    m.AnswersJSON,
		StatisticsJSON: m.StatisticsJSON,
		UserID:         m.UserID,
		CollectionID:   m.CollectionID,
	}
}

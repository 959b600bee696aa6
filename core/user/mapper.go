package user

func ToListModel(usr User) ListModel {
	return ListModel{
		ID:       usr.ID,
		Name:     usr.Name,
		PhotoURL: usr.PhotoURL,
		Role:     usr.Role,
	}
}

func ToListModels(users []User) []ListModel {
	models := make([]ListModel, 0, len(users))
	for _, usr := range users {
		models = append(models, ToListModel(usr))
	}
	return models
}

func ToDetailModel(usr User) DetailModel {
	return DetailModel{
		ID:       usr.ID,
		Name:     usr.Name,
		PhotoURL: usr.PhotoURL,
		Role:     usr.Role,
		Username: usr.Username,
	}
}

// toEntity maps the writable fields of m onto a User.
func (m DetailModel) toEntity() User {
	return User{
		ID:       m.ID,
		Name:     m.Name,
		PhotoURL: m.PhotoURL,
		Role:     m.Role,
	}
}

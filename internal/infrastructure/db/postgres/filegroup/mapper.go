package filegroup

import (
	domain "filesharing-api/internal/domain/filegroup"
)

func fromDBModel(model *FileGroup) *domain.FileGroup {
	var fg = &domain.FileGroup{
		ID: model.ID,

		OriginalNames: model.OriginalNames,
		StoragePaths:  model.StoragePaths,

		ExpiresAt: model.ExpiresAt,
		CreatedAt: model.CreatedAt,
	}

	return fg
}

func fromDBModels(models *FileGroups) domain.FileGroups {
	fgs := make(domain.FileGroups, len(*models))
	for idx, m := range *models {
		fgs[idx] = fromDBModel(m)
	}

	return fgs
}

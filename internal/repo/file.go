package repo

import "SecureDrop/model"

// GetFileByID loads file metadata by primary key.
func GetFileByID(id uint64) (*model.File, error) {
	var file model.File
	err := Db.Where("id = ?", id).First(&file).Error
	if err != nil {
		return nil, err
	}
	return &file, nil
}

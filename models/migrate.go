package models

import "gorm.io/gorm"

// Migrate registers the custom link tables and migrates every model.
func Migrate(db *gorm.DB) error {
	joins := []struct {
		model any
		field string
		join  any
	}{
		{&EduCenter{}, "Subjects", &EduCenterSubject{}},
		{&EduCenter{}, "Fields", &EduCenterField{}},
		{&Branch{}, "Subjects", &BranchSubject{}},
		{&Branch{}, "Fields", &BranchField{}},
	}
	for _, j := range joins {
		if err := db.SetupJoinTable(j.model, j.field, j.join); err != nil {
			return err
		}
	}

	return db.AutoMigrate(
		&Region{},
		&User{},
		&Subject{},
		&Field{},
		&ResourceCategory{},
		&EduCenter{},
		&Branch{},
		&EduCenterSubject{},
		&EduCenterField{},
		&BranchSubject{},
		&BranchField{},
		&Comment{},
		&Like{},
		&Enrollment{},
		&Resource{},
		&Session{},
	)
}

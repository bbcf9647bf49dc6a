package services

import (
	"fmt"
	"slices"
	"strings"

	"gorm.io/gorm"
)

// ensureUnique rejects value when another row already holds it in column.
// exclude is the id of the row being updated, or nil on create.
func ensureUnique(tx *gorm.DB, model any, column, value string, exclude any, message string) error {
	q := tx.Model(model).Where(fmt.Sprintf("LOWER(%s) = LOWER(?)", column), value)
	if exclude != nil {
		q = q.Where("id <> ?", exclude)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return NewValidationError(message)
	}
	return nil
}

func ensureExists(tx *gorm.DB, model any, id any, message string) error {
	var count int64
	if err := tx.Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return &NotFoundError{Message: message}
	}
	return nil
}

// missingIDs returns the ids that do not resolve to a row of model.
func missingIDs(tx *gorm.DB, model any, ids []uint) ([]uint, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var found []uint
	if err := tx.Model(model).Where("id IN ?", ids).Pluck("id", &found).Error; err != nil {
		return nil, err
	}
	var missing []uint
	for _, id := range ids {
		if !slices.Contains(found, id) && !slices.Contains(missing, id) {
			missing = append(missing, id)
		}
	}
	return missing, nil
}

// relationRef names one relation array of a payload.
type relationRef struct {
	label string // "Subjects"
	model any
	ids   *[]uint
}

// checkRelations validates every relation array and reports all unknown ids together.
func checkRelations(tx *gorm.DB, refs ...relationRef) error {
	var problems []string
	for _, ref := range refs {
		if ref.ids == nil {
			continue
		}
		missing, err := missingIDs(tx, ref.model, *ref.ids)
		if err != nil {
			return err
		}
		if len(missing) > 0 {
			problems = append(problems, fmt.Sprintf("%s not found: %s", ref.label, joinIDs(missing)))
		}
	}
	if len(problems) > 0 {
		return &NotFoundError{Message: strings.Join(problems, "; ")}
	}
	return nil
}

func joinIDs(ids []uint) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprint(id)
	}
	return strings.Join(parts, ", ")
}

// dedupe keeps the first occurrence of every id.
func dedupe(ids []uint) []uint {
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}

// requireFields returns one "<name> is required" message per missing field.
func requireFields(fields map[string]bool) error {
	var messages []string
	for name, present := range fields {
		if !present {
			messages = append(messages, name+" is required")
		}
	}
	if len(messages) > 0 {
		slices.Sort(messages)
		return NewValidationError(messages...)
	}
	return nil
}

// exactlyOne enforces that a row targets either a center or a branch.
func exactlyOne(eduSet, branchSet bool) error {
	if eduSet == branchSet {
		return NewValidationError("Provide exactly one of edu_id or branch_id")
	}
	return nil
}

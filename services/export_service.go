package services

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"github.com/vnkhanh/educenter-backend/models"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Workbook is a generated spreadsheet ready to be streamed.
type Workbook struct {
	FileName string
	file     *excelize.File
}

func (w *Workbook) ContentType() string { return xlsxContentType }

func (w *Workbook) WriteTo(out io.Writer) (int64, error) {
	return w.file.WriteTo(out)
}

func (w *Workbook) Close() error { return w.file.Close() }

// newWorkbook writes headers then one row per record on a single sheet.
func newWorkbook(fileName, sheet string, headers []any, rows [][]any) (*Workbook, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		_ = f.Close()
		return nil, err
	}
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		_ = f.Close()
		return nil, err
	}

	all := append([][]any{headers}, rows...)
	for i, row := range all {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			_ = f.Close()
			return nil, err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	last, _ := excelize.CoordinatesToCellName(len(headers), 1)
	if err := f.SetCellStyle(sheet, "A1", last, style); err != nil {
		_ = f.Close()
		return nil, err
	}
	return &Workbook{FileName: fileName + ".xlsx", file: f}, nil
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

// ExportService builds the "my data" spreadsheets of the caller.
type ExportService struct {
	db  *gorm.DB
	agg *Aggregator
}

func NewExportService(db *gorm.DB, agg *Aggregator) *ExportService {
	return &ExportService{db: db, agg: agg}
}

func (s *ExportService) Comments(ctx context.Context, actor Actor) (*Workbook, error) {
	var comments []models.Comment
	err := s.db.WithContext(ctx).
		Preload("EduCenter", func(db *gorm.DB) *gorm.DB { return db.Select("id", "name") }).
		Preload("Branch", func(db *gorm.DB) *gorm.DB { return db.Select("id", "name") }).
		Where("user_id = ?", actor.ID).
		Order("created_at").
		Find(&comments).Error
	if err != nil {
		return nil, err
	}
	rows := make([][]any, 0, len(comments))
	for _, c := range comments {
		center, branch := "", ""
		if c.EduCenter != nil {
			center = c.EduCenter.Name
		}
		if c.Branch != nil {
			branch = c.Branch.Name
		}
		rows = append(rows, []any{c.ID, c.Text, c.Star, orNA(center), orNA(branch), c.UserID.String()})
	}
	return newWorkbook("my_comments", "Comments",
		[]any{"ID", "Text", "Stars", "Edu Center", "Branch", "User ID"}, rows)
}

func (s *ExportService) EduCenters(ctx context.Context, actor Actor) (*Workbook, error) {
	var centers []models.EduCenter
	err := s.db.WithContext(ctx).
		Preload("Region").
		Where("ceo_id = ?", actor.ID).
		Order("created_at").
		Find(&centers).Error
	if err != nil {
		return nil, err
	}
	if err := s.agg.DecorateEduCenters(ctx, centers); err != nil {
		return nil, err
	}
	rows := make([][]any, 0, len(centers))
	for _, c := range centers {
		region := ""
		if c.Region != nil {
			region = c.Region.Name
		}
		rows = append(rows, []any{
			c.ID.String(), c.Name, c.Phone, c.Address, orNA(region),
			c.BranchCount, c.CEOID.String(), c.Image, c.Description,
		})
	}
	return newWorkbook("my_edu_centers", "Edu Centers",
		[]any{"ID", "Name", "Phone", "Address", "Region", "Branch Count", "CEO ID", "Image", "Description"}, rows)
}

func (s *ExportService) Resources(ctx context.Context, actor Actor) (*Workbook, error) {
	var resources []models.Resource
	err := s.db.WithContext(ctx).
		Preload("Category").
		Where("user_id = ?", actor.ID).
		Order("created_at").
		Find(&resources).Error
	if err != nil {
		return nil, err
	}
	rows := make([][]any, 0, len(resources))
	for _, r := range resources {
		category := ""
		if r.Category != nil {
			category = r.Category.Name
		}
		rows = append(rows, []any{
			r.ID, r.Name, orNA(category), r.UserID.String(), r.Image, r.File, r.Link, r.Description,
		})
	}
	return newWorkbook("my_resources", "Resources",
		[]any{"ID", "Name", "Category", "User ID", "Image", "File", "Link", "Description"}, rows)
}

func (s *ExportService) Profile(ctx context.Context, actor Actor) (*Workbook, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", actor.ID).Error; err != nil {
		return nil, notFoundOr(err, "User not found")
	}
	rows := [][]any{{
		user.ID.String(), user.Fullname, user.Email, string(user.Role), user.Phone,
		user.CreatedAt.Format(time.RFC3339),
	}}
	return newWorkbook("my_profile", "Profile",
		[]any{"ID", "Fullname", "Email", "Role", "Phone", "Created At"}, rows)
}

// Enrollments lists the caller's enrollments; Type says whether the target is a branch or a center.
func (s *ExportService) Enrollments(ctx context.Context, actor Actor) (*Workbook, error) {
	var enrollments []models.Enrollment
	err := s.db.WithContext(ctx).
		Preload("EduCenter").
		Preload("Branch").
		Where("user_id = ?", actor.ID).
		Order("date").
		Find(&enrollments).Error
	if err != nil {
		return nil, err
	}
	rows := make([][]any, 0, len(enrollments))
	for _, e := range enrollments {
		name, address, kind := "", "", "Edu Center"
		switch {
		case e.Branch != nil:
			name, address, kind = e.Branch.Name, e.Branch.Address, "Branch"
		case e.EduCenter != nil:
			name, address = e.EduCenter.Name, e.EduCenter.Address
		}
		rows = append(rows, []any{e.ID, e.Date.Format("2006-01-02"), orNA(name), orNA(address), kind})
	}
	return newWorkbook("my_enrollments", "Enrollments",
		[]any{"ID", "Date", "Center/Branch Name", "Address", "Type"}, rows)
}

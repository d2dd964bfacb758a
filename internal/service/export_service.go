package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"
)

// ExportService renders submitted results as CSV.
type ExportService struct {
	results ResultStore
	loc     *time.Location
}

// NewExportService creates a new ExportService. Timestamps are rendered in loc.
func NewExportService(results ResultStore, loc *time.Location) *ExportService {
	if loc == nil {
		loc = time.UTC
	}
	return &ExportService{results: results, loc: loc}
}

var resultsHeader = []string{
	"Name", "Email", "Phone", "Type", "Institution", "Class",
	"Course", "Branch", "Semester", "Score", "SubmittedAt",
}

// WriteResultsCSV writes one row per submission, best score first.
func (s *ExportService) WriteResultsCSV(ctx context.Context, w io.Writer) error {
	rows, err := s.results.ListResults(ctx)
	if err != nil {
		return fmt.Errorf("list results: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(resultsHeader); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write([]string{
			r.Name,
			r.Email,
			r.Phone,
			string(r.InstitutionType),
			r.InstitutionName,
			r.ClassGrade,
			r.Course,
			r.Branch,
			r.Semester,
			strconv.Itoa(r.Score),
			r.SubmittedAt.In(s.loc).Format("2006-01-02 15:04:05"),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

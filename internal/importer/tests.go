// Package importer loads the diagnostic test catalog from lab CSV exports.
package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"care-booking/internal/data/entity"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const defaultCategory = "General"

type testUpserter interface {
	Upsert(ctx context.Context, test *entity.LabTest) (bool, error)
}

// Result summarises one import run.
type Result struct {
	Inserted int
	Updated  int
	Skipped  int
}

func (r Result) Total() int {
	return r.Inserted + r.Updated + r.Skipped
}

// headerAliases maps the column names seen in lab exports to catalog fields.
var headerAliases = map[string]string{
	"code":        "code",
	"test code":   "code",
	"name":        "name",
	"test name":   "name",
	"category":    "category",
	"mrp":         "mrp",
	"price":       "mrp",
	"sample_type": "sample_type",
	"sample type": "sample_type",
	"sample":      "sample_type",
	"tat":         "tat",
	"report time": "tat",
	"is_active":   "is_active",
	"active":      "is_active",
	"description": "description",
}

type TestImporter struct {
	repo testUpserter
	log  *zap.Logger
}

func NewTestImporter(repo testUpserter, log *zap.Logger) *TestImporter {
	return &TestImporter{
		repo: repo,
		log:  log.With(zap.String("component", "test_importer")),
	}
}

// Import upserts every usable row keyed by code. Rows without a code or name
// are skipped; a store error aborts the run.
func (im *TestImporter) Import(ctx context.Context, r io.Reader) (Result, error) {
	var result Result

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return result, errors.New("csv is empty")
	}
	if err != nil {
		return result, fmt.Errorf("read csv header: %w", err)
	}

	columns := mapHeader(header)
	if _, ok := columns["code"]; !ok {
		return result, errors.New("csv header has no code column")
	}
	if _, ok := columns["name"]; !ok {
		return result, errors.New("csv header has no name column")
	}

	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return result, fmt.Errorf("read csv line %d: %w", line, err)
		}

		test, reason := parseRow(columns, record)
		if test == nil {
			result.Skipped++
			im.log.Warn("Skipping row", zap.Int("line", line), zap.String("reason", reason))
			continue
		}

		inserted, err := im.repo.Upsert(ctx, test)
		if err != nil {
			return result, fmt.Errorf("upsert test %s on line %d: %w", test.Code, line, err)
		}
		if inserted {
			result.Inserted++
		} else {
			result.Updated++
		}
	}

	im.log.Info("Test import finished",
		zap.Int("inserted", result.Inserted),
		zap.Int("updated", result.Updated),
		zap.Int("skipped", result.Skipped),
	)
	return result, nil
}

func mapHeader(header []string) map[string]int {
	columns := make(map[string]int, len(header))
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		field, ok := headerAliases[key]
		if !ok {
			continue
		}
		if _, seen := columns[field]; !seen {
			columns[field] = i
		}
	}
	return columns
}

func parseRow(columns map[string]int, record []string) (*entity.LabTest, string) {
	get := func(field string) string {
		i, ok := columns[field]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	test := &entity.LabTest{
		BaseNoDelete: entity.BaseNoDelete{ID: uuid.New()},
		Code:         get("code"),
		Name:         get("name"),
		Category:     get("category"),
		SampleType:   get("sample_type"),
		TAT:          get("tat"),
		Description:  get("description"),
		IsActive:     true,
	}
	if test.Code == "" {
		return nil, "missing code"
	}
	if test.Name == "" {
		return nil, "missing name"
	}
	if test.Category == "" {
		test.Category = defaultCategory
	}

	if raw := get("mrp"); raw != "" {
		mrp, err := parsePrice(raw)
		if err != nil {
			return nil, "invalid mrp " + strconv.Quote(raw)
		}
		test.MRP = mrp
	}

	if raw := get("is_active"); raw != "" {
		active, ok := parseActive(raw)
		if !ok {
			return nil, "invalid is_active " + strconv.Quote(raw)
		}
		test.IsActive = active
	}

	return test, ""
}

func parsePrice(raw string) (float64, error) {
	cleaned := strings.NewReplacer("₹", "", "Rs.", "", "Rs", "", ",", "", " ", "").Replace(raw)
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, err
	}
	if v < 0 {
		return 0, errors.New("negative price")
	}
	return v, nil
}

func parseActive(raw string) (bool, bool) {
	switch strings.ToLower(raw) {
	case "true", "yes", "y", "1", "active":
		return true, true
	case "false", "no", "n", "0", "inactive":
		return false, true
	}
	return false, false
}

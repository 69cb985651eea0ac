package validation

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/harrison/adl/internal/models"
)

//go:embed report.schema.json
var reportSchemaJSON []byte

const reportSchemaURL = "report.schema.json"

var (
	reportSchemaOnce sync.Once
	reportSchema     *jsonschema.Schema
	reportSchemaErr  error
)

// Report is the JSON document emitted by "adl validate --json"
type Report struct {
	Valid   bool                      `json:"valid"`
	Results []models.ValidationResult `json:"results"`
}

// NewReport bundles results; the report is valid when every result is
func NewReport(results []models.ValidationResult) Report {
	report := Report{Valid: true, Results: results}
	if report.Results == nil {
		report.Results = []models.ValidationResult{}
	}
	for _, r := range results {
		if !r.Valid() {
			report.Valid = false
		}
	}
	return report
}

// MarshalReport encodes the report as indented JSON and checks the output
// against the embedded report schema.
func MarshalReport(report Report) ([]byte, error) {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal report: %w", err)
	}
	if err := ValidateReportJSON(data); err != nil {
		return nil, err
	}
	return data, nil
}

// ValidateReportJSON checks that data is a well-formed validation report
func ValidateReportJSON(data []byte) error {
	schema, err := compiledReportSchema()
	if err != nil {
		return err
	}

	instance, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to parse report: %w", err)
	}
	if err := schema.Validate(instance); err != nil {
		return fmt.Errorf("report does not match schema: %w", err)
	}
	return nil
}

func compiledReportSchema() (*jsonschema.Schema, error) {
	reportSchemaOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(reportSchemaJSON))
		if err != nil {
			reportSchemaErr = fmt.Errorf("failed to parse report schema: %w", err)
			return
		}

		c := jsonschema.NewCompiler()
		if err := c.AddResource(reportSchemaURL, doc); err != nil {
			reportSchemaErr = fmt.Errorf("failed to add report schema: %w", err)
			return
		}
		reportSchema, reportSchemaErr = c.Compile(reportSchemaURL)
	})
	return reportSchema, reportSchemaErr
}

package ats

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schema.json
var reportSchemaJSON string

// ErrInvalidReport is returned when a report does not satisfy the report schema.
var ErrInvalidReport = errors.New("invalid score report")

var reportSchema = sync.OnceValues(func() (*gojsonschema.Schema, error) {
	return gojsonschema.NewSchema(gojsonschema.NewStringLoader(reportSchemaJSON))
})

// ValidateReport checks r against the published report schema.
func ValidateReport(r Report) error {
	schema, err := reportSchema()
	if err != nil {
		return fmt.Errorf("load report schema: %w", err)
	}
	result, err := schema.Validate(gojsonschema.NewGoLoader(r))
	if err != nil {
		return fmt.Errorf("validate report: %w", err)
	}
	if result.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		msgs = append(msgs, desc.Field()+": "+desc.Description())
	}
	return fmt.Errorf("%w: %s", ErrInvalidReport, strings.Join(msgs, "; "))
}

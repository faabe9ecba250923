package cli

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/pcbshop/boardopts/pkg/header"
	"github.com/pcbshop/boardopts/pkg/validator"
)

// Subjects of a ValidationReport.
const (
	subjectAttributes = "attributes"
	subjectOffer      = "offer"
)

// ValidationReport is the document written by the attributes and offer commands.
type ValidationReport struct {
	header.Header `json:",inline" yaml:",inline"`

	Subject    string         `json:"subject" yaml:"subject"`
	Vendor     string         `json:"vendor,omitempty" yaml:"vendor,omitempty"`
	Valid      bool           `json:"valid" yaml:"valid"`
	SnapshotID string         `json:"snapshotId,omitempty" yaml:"snapshotId,omitempty"`
	Violation  *ReportedError `json:"violation,omitempty" yaml:"violation,omitempty"`
}

// ReportedError describes the violation that made a report invalid.
type ReportedError struct {
	Kind    string         `json:"kind" yaml:"kind"`
	Label   string         `json:"label" yaml:"label"`
	Message string         `json:"message" yaml:"message"`
	Details map[string]any `json:"details,omitempty" yaml:"details,omitempty"`
}

func newReport(subject string) *ValidationReport {
	r := &ValidationReport{Subject: subject, Valid: true}
	r.Init(header.KindValidation, version)
	return r
}

// record folds a validation result into the report. Errors that are not
// validation failures are returned unchanged so the command can abort.
func (r *ValidationReport) record(err error) error {
	if err == nil {
		return nil
	}
	var ve *validator.ValidationError
	if !errors.As(err, &ve) {
		return err
	}
	r.Valid = false
	r.Violation = &ReportedError{
		Kind:    string(ve.Kind),
		Label:   ve.Label,
		Message: ve.Error(),
		Details: ve.Details(),
	}
	return nil
}

// result returns the error a command exits with once the report is written.
func (r *ValidationReport) result(failOnError bool) error {
	if r.Valid || !failOnError {
		return nil
	}
	return fmt.Errorf("%s validation failed: %s", r.Subject, r.Violation.Message)
}

// TableHeader implements serializer.Tabular.
func (r *ValidationReport) TableHeader() []string {
	return []string{"subject", "valid", "kind", "label", "message"}
}

// TableRows implements serializer.Tabular.
func (r *ValidationReport) TableRows() [][]string {
	row := []string{r.Subject, strconv.FormatBool(r.Valid), "", "", ""}
	if r.Violation != nil {
		row[2], row[3], row[4] = r.Violation.Kind, r.Violation.Label, r.Violation.Message
	}
	return [][]string{row}
}

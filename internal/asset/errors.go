package asset

import (
	"errors"
	"fmt"
)

var (
	// ErrIngestionFailed marks errors that abort an upload.
	ErrIngestionFailed = errors.New("ingestion failed")
	// ErrExportFailed marks errors raised while serializing a table.
	ErrExportFailed = errors.New("export failed")
)

// IngestionError describes why a spreadsheet could not be loaded.
type IngestionError struct {
	Source string
	Reason string
	Err    error
}

func (e *IngestionError) Error() string {
	msg := "ingestion failed"
	if e.Source != "" {
		msg += " for " + e.Source
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *IngestionError) Unwrap() error { return e.Err }

func (e *IngestionError) Is(target error) bool { return target == ErrIngestionFailed }

// ExportError wraps a serialization failure.
type ExportError struct {
	Err error
}

func (e *ExportError) Error() string { return fmt.Sprintf("export failed: %v", e.Err) }

func (e *ExportError) Unwrap() error { return e.Err }

func (e *ExportError) Is(target error) bool { return target == ErrExportFailed }

// WarningKind classifies recoverable ingestion conditions.
type WarningKind string

const (
	WarningHeaderNotFound      WarningKind = "header_not_found"
	WarningRoleUnresolved      WarningKind = "role_unresolved"
	WarningCellCoercionSkipped WarningKind = "cell_coercion_skipped"
	WarningNoValidYear         WarningKind = "no_valid_year"
)

// Warning is a recoverable condition absorbed during ingestion.
type Warning struct {
	Kind    WarningKind `json:"kind"`
	Role    string      `json:"role,omitempty"`
	Column  string      `json:"column,omitempty"`
	Count   int         `json:"count,omitempty"`
	Message string      `json:"message"`
}

func (w Warning) String() string { return w.Message }

// Package defaults provides canonical default values for the entire codebase.
// This is the SINGLE SOURCE OF TRUTH for report limits, labels and service
// defaults.
//
// Usage:
//
//	value := strutil.Cut(raw, defaults.MetricValueWidth)
//	w.Header().Set("Content-Type", defaults.ContentTypePDF)
//
// DO NOT use hardcoded values like `[:30]` anywhere.
// Instead, reference the appropriate constant from this package.
package defaults

import "fmt"

// Version is the current amlreport version
const Version = "1.3.0"

// ToolName is the binary and service name.
const ToolName = "amlreport"

// ============================================================================
// REPORT LABELS
// ============================================================================
//
// Fixed text that appears on every generated document.
// ============================================================================

const (
	// ProductLabel is the running header label on every page.
	ProductLabel = "AML WALLET SCREENING — COMPLIANCE REPORT"

	// ReportTitle is the title on the first page.
	ReportTitle = "AML Screening Report"

	// NotAvailable is displayed for absent optional values.
	NotAvailable = "N/A"

	// ComplianceCaveat is appended to every data-supplied disclaimer.
	ComplianceCaveat = "This report is generated automatically and does not constitute legal advice. " +
		"Compliance decisions must be taken by a qualified professional. " +
		"Accuracy depends on the consulted sources and their respective limits. " +
		"Results from free sources may have partial coverage."

	// DateLayout formats report and build timestamps (always rendered in UTC).
	DateLayout = "02/01/2006 15:04:05 UTC"
)

// ============================================================================
// DISPLAY LIMITS
// ============================================================================
//
// Truncation limits applied at presentation time only. Stored data is never
// altered.
// ============================================================================

const (
	// MaxInteractionLines caps each DeFi detail list (5)
	MaxInteractionLines = 5

	// MetricValueWidth caps on-chain metric values in the grid (30 runes)
	MetricValueWidth = 30

	// AuditDetailWidth caps audit entry details in the trail table (100 runes)
	AuditDetailWidth = 100

	// HashPrefixWidth is the visible prefix of abbreviated hashes (20 runes)
	HashPrefixWidth = 20
)

// ============================================================================
// INPUT LIMITS
// ============================================================================

const (
	// MaxPayloadBytes bounds a single input document (2 MiB)
	MaxPayloadBytes int64 = 2 << 20

	// ConcurrencyRender is the default number of parallel builds in batch mode
	ConcurrencyRender = 4
)

// ============================================================================
// HTTP CONTENT TYPES
// ============================================================================

const (
	ContentTypeJSON = "application/json"
	ContentTypePDF  = "application/pdf"
	ContentTypeMD   = "text/markdown; charset=utf-8"
)

// ============================================================================
// SERVICE DEFAULTS
// ============================================================================

const (
	// ServerAddr is the default listen address for `amlreport serve`
	ServerAddr = ":8080"

	// RateLimitPerSecond is the default sustained request rate (10/s)
	RateLimitPerSecond = 10

	// RateLimitBurst is the default burst size (20)
	RateLimitBurst = 20

	// ArchiveListLimit is the default page size for archive listings (50)
	ArchiveListLimit = 50
)

// UserAgent returns the amlreport user agent with context.
func UserAgent(component string) string {
	if component == "" {
		return fmt.Sprintf("%s/%s", ToolName, Version)
	}
	return fmt.Sprintf("%s/%s (%s)", ToolName, Version, component)
}

// AttachmentName returns the download filename for a rendered report.
func AttachmentName(reportID, ext string) string {
	if reportID == "" || reportID == NotAvailable {
		reportID = "AML-REPORT"
	}
	return fmt.Sprintf("aml-report-%s.%s", reportID, ext)
}

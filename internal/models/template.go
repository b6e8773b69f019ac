// Package models defines the domain types for Raido.
package models

import "time"

// Severity levels a canonical template can carry. Anything else collapses
// to SeverityUnknown during normalization.
const (
	SeverityCritical = "critical"
	SeverityHigh     = "high"
	SeverityMedium   = "medium"
	SeverityLow      = "low"
	SeverityInfo     = "info"
	SeverityUnknown  = "unknown"
)

// SeverityRank orders severities for sorting, highest first.
var SeverityRank = map[string]int{
	SeverityCritical: 5,
	SeverityHigh:     4,
	SeverityMedium:   3,
	SeverityLow:      2,
	SeverityInfo:     1,
	SeverityUnknown:  0,
}

// Severities lists every valid severity in rank order.
var Severities = []string{
	SeverityCritical,
	SeverityHigh,
	SeverityMedium,
	SeverityLow,
	SeverityInfo,
	SeverityUnknown,
}

// StatusFlagOrder is the canonical order of derived status flags. A
// template's StatusFlags list is always a subset of this, in this order.
var StatusFlagOrder = []string{"draft", "early", "new", "github", "pdteam", "pdresearch", "pdtemplate"}

// RawRecord is one loosely typed entry of the source document. Fields are
// deliberately `any`: the upstream feed mixes scalars, lists, and missing
// values freely, and normalization is responsible for making sense of them.
type RawRecord struct {
	ID             any            `json:"id"`
	Name           any            `json:"name"`
	Description    any            `json:"description"`
	Severity       any            `json:"severity"`
	Ref            any            `json:"ref"`
	Author         any            `json:"author"`
	Tags           any            `json:"tags"`
	References     any            `json:"references"`
	Classification map[string]any `json:"classification"`
	Metadata       map[string]any `json:"metadata"`
	Raw            any            `json:"raw"`
	URI            any            `json:"uri"`
	Type           any            `json:"type"`
	IsDraft        any            `json:"is_draft"`
	IsEarly        any            `json:"is_early"`
	IsNew          any            `json:"is_new"`
	IsPDResearch   any            `json:"is_pdresearch"`
	IsPDTeam       any            `json:"is_pdteam"`
	IsGitHub       any            `json:"is_github"`
	IsPDTemplate   any            `json:"is_pdtemplate"`
	CreatedAt      any            `json:"created_at"`
	UpdatedAt      any            `json:"updated_at"`
}

// Template is the canonical, engine-owned representation of one catalog
// entry. Built once by normalization and never mutated afterwards.
type Template struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	Description    string         `json:"description"`
	Severity       string         `json:"severity"`
	Ref            string         `json:"ref"`
	Author         []string       `json:"author"`
	Tags           []string       `json:"tags"`
	References     []string       `json:"references"`
	Classification map[string]any `json:"classification"`
	Metadata       map[string]any `json:"metadata"`
	RawContent     string         `json:"raw_content"`
	Path           *string        `json:"path"` // derived origin URL, null when ref/uri absent
	Type           string         `json:"type"`
	IsDraft        bool           `json:"is_draft"`
	IsEarly        bool           `json:"is_early"`
	IsNew          bool           `json:"is_new"`
	IsPDResearch   bool           `json:"is_pdresearch"`
	IsPDTeam       bool           `json:"is_pdteam"`
	IsGitHub       bool           `json:"is_github"`
	IsPDTemplate   bool           `json:"is_pdtemplate"`
	StatusFlags    []string       `json:"status_flags"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// ExportRecord is the external serialization of a Template with the
// internal-only derived fields (parsed instants, status list) stripped.
type ExportRecord struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	Description    string         `json:"description"`
	Severity       string         `json:"severity"`
	Ref            string         `json:"ref"`
	Author         []string       `json:"author"`
	Tags           []string       `json:"tags"`
	References     []string       `json:"references"`
	Classification map[string]any `json:"classification"`
	Metadata       map[string]any `json:"metadata"`
	RawContent     string         `json:"raw_content"`
	Path           *string        `json:"path"`
	Type           string         `json:"type"`
	IsDraft        bool           `json:"is_draft"`
	IsEarly        bool           `json:"is_early"`
	IsNew          bool           `json:"is_new"`
	IsPDResearch   bool           `json:"is_pdresearch"`
	IsPDTeam       bool           `json:"is_pdteam"`
	IsGitHub       bool           `json:"is_github"`
	IsPDTemplate   bool           `json:"is_pdtemplate"`
}

// Export strips the derived fields from a template.
func (t Template) Export() ExportRecord {
	return ExportRecord{
		ID:             t.ID,
		Name:           t.Name,
		Description:    t.Description,
		Severity:       t.Severity,
		Ref:            t.Ref,
		Author:         t.Author,
		Tags:           t.Tags,
		References:     t.References,
		Classification: t.Classification,
		Metadata:       t.Metadata,
		RawContent:     t.RawContent,
		Path:           t.Path,
		Type:           t.Type,
		IsDraft:        t.IsDraft,
		IsEarly:        t.IsEarly,
		IsNew:          t.IsNew,
		IsPDResearch:   t.IsPDResearch,
		IsPDTeam:       t.IsPDTeam,
		IsGitHub:       t.IsGitHub,
		IsPDTemplate:   t.IsPDTemplate,
	}
}

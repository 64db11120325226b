package extraction

import (
	"encoding/json"
	"fmt"
	"strings"

	apperrors "edgarcli/internal/errors"
)

// GAAPTaxonomy is the facts namespace consulted during extraction.
const GAAPTaxonomy = "us-gaap"

// Document is one entity's raw disclosure document in the SEC
// companyfacts shape: concept tag → reporting unit → observation list.
type Document struct {
	CIK        *json.Number            `json:"cik"`
	EntityName string                  `json:"entityName"`
	Facts      map[string]TaxonomyTags `json:"facts"`
}

// TaxonomyTags maps a concept tag to its reported facts.
type TaxonomyTags map[string]ConceptFacts

// ConceptFacts holds one tag's observations, grouped by reporting unit.
type ConceptFacts struct {
	Label string                   `json:"label"`
	Units map[string][]Observation `json:"units"`
}

// Observation is one reported value for a tag and unit.
type Observation struct {
	Start string  `json:"start"`
	End   string  `json:"end"`
	Value float64 `json:"val"`
	FY    int     `json:"fy"`
	FP    string  `json:"fp"`
	Form  string  `json:"form"`
	Filed string  `json:"filed"`
}

// ParseDocument decodes a raw companyfacts JSON document. A document
// missing its required top-level keys (cik, facts) is malformed: the
// error is fatal for the entity but never for the batch.
func ParseDocument(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, apperrors.NewDocumentFormatError("failed to decode document", err)
	}

	if doc.CIK == nil {
		return nil, apperrors.NewDocumentFormatError("document missing required key: cik", nil)
	}
	if doc.Facts == nil {
		return nil, apperrors.NewDocumentFormatError("document missing required key: facts", nil)
	}

	return &doc, nil
}

// EntityID returns the document's CIK as a zero-padded 10-digit string.
func (d *Document) EntityID() string {
	raw := strings.TrimSpace(d.CIK.String())
	raw = strings.Trim(raw, `"`)
	if len(raw) >= 10 {
		return raw
	}
	return fmt.Sprintf("%010s", raw)
}

// GAAPTags returns the us-gaap tag set, which may be empty.
func (d *Document) GAAPTags() TaxonomyTags {
	return d.Facts[GAAPTaxonomy]
}

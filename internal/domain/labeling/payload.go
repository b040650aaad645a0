package labeling

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// CurrentSchemaVersion is the payload shape this package writes. Version 0
// documents predate the nested condition-score object and store a flat
// condition_score instead; NormalizePayload migrates them at read time.
const CurrentSchemaVersion = 1

// ConditionScores rates the property shown in a photo. Nil fields mean the
// labeler answered N/A.
type ConditionScores struct {
	PropertyCondition     *float64 `json:"property_condition"`
	QualityOfConstruction *string  `json:"quality_of_construction"`
	ImprovementCondition  *string  `json:"improvement_condition"`
}

// Payload is the structured annotation for one image.
//
// SpatialLabels are location paths from the taxonomy root. FeatureLabels use
// the "Location:Category:Feature" form. Attributes map normalized attribute
// names to values, nil meaning N/A.
type Payload struct {
	Notes           string             `json:"notes"`
	Flagged         bool               `json:"flagged"`
	SchemaVersion   int                `json:"schema_version"`
	LabeledBy       string             `json:"labeled_by"`
	SpatialLabels   []string           `json:"spatial_labels"`
	FeatureLabels   []string           `json:"feature_labels"`
	Attributes      map[string]*string `json:"attributes"`
	ConditionScores ConditionScores    `json:"condition_scores"`

	// LegacyConditionScore carries the flat score of schema version 0
	// documents. Only populated during normalization, never written back.
	LegacyConditionScore *float64 `json:"condition_score,omitempty"`
}

var ErrPayloadLabeledBy = errors.New("payload labeled_by is required")

// Validate checks the fields SaveLabels depends on.
func (p *Payload) Validate() error {
	if strings.TrimSpace(p.LabeledBy) == "" {
		return ErrPayloadLabeledBy
	}
	for _, f := range p.FeatureLabels {
		if strings.Count(f, ":") != 2 {
			return fmt.Errorf("feature label %q is not Location:Category:Feature", f)
		}
	}
	return nil
}

// NormalizePayload migrates historical schema variants to the current shape.
// Version 0 stored the property condition as a flat condition_score field.
func NormalizePayload(p Payload) Payload {
	if p.SchemaVersion >= CurrentSchemaVersion {
		p.LegacyConditionScore = nil
		return p
	}

	if p.LegacyConditionScore != nil && p.ConditionScores.PropertyCondition == nil {
		score := *p.LegacyConditionScore
		p.ConditionScores.PropertyCondition = &score
	}
	p.LegacyConditionScore = nil
	p.SchemaVersion = CurrentSchemaVersion
	return p
}

// DecodePayload parses a stored payload document and normalizes it.
func DecodePayload(raw []byte) (Payload, error) {
	var p Payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return Payload{}, fmt.Errorf("decode label payload: %w", err)
	}
	return NormalizePayload(p), nil
}

// EncodePayload serializes a payload at the current schema version.
func EncodePayload(p Payload) ([]byte, error) {
	p = NormalizePayload(p)
	raw, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encode label payload: %w", err)
	}
	return raw, nil
}

package labeling

import (
	"testing"
)

func TestNormalizePayloadMigratesLegacyConditionScore(t *testing.T) {
	score := 4.0
	p := Payload{
		SchemaVersion:        0,
		LabeledBy:            "alice",
		LegacyConditionScore: &score,
	}

	got := NormalizePayload(p)

	if got.SchemaVersion != CurrentSchemaVersion {
		t.Fatalf("schema version = %d, want %d", got.SchemaVersion, CurrentSchemaVersion)
	}
	if got.ConditionScores.PropertyCondition == nil || *got.ConditionScores.PropertyCondition != score {
		t.Fatalf("property condition = %v, want %v", got.ConditionScores.PropertyCondition, score)
	}
	if got.LegacyConditionScore != nil {
		t.Fatalf("legacy condition score should be dropped after migration")
	}
}

func TestNormalizePayloadKeepsNestedScore(t *testing.T) {
	nested := 2.5
	legacy := 5.0
	p := Payload{
		SchemaVersion:        0,
		LegacyConditionScore: &legacy,
		ConditionScores:      ConditionScores{PropertyCondition: &nested},
	}

	got := NormalizePayload(p)
	if *got.ConditionScores.PropertyCondition != nested {
		t.Fatalf("nested score must win over the legacy field, got %v", *got.ConditionScores.PropertyCondition)
	}
}

func TestDecodePayloadLegacyDocument(t *testing.T) {
	raw := []byte(`{"labeled_by":"bob","condition_score":3.5,"spatial_labels":["Residential Interior > Living Areas > Kitchen"]}`)

	p, err := DecodePayload(raw)
	if err != nil {
		t.Fatalf("DecodePayload() error = %v", err)
	}
	if p.SchemaVersion != CurrentSchemaVersion {
		t.Fatalf("schema version = %d", p.SchemaVersion)
	}
	if p.ConditionScores.PropertyCondition == nil || *p.ConditionScores.PropertyCondition != 3.5 {
		t.Fatalf("property condition = %v", p.ConditionScores.PropertyCondition)
	}
	if len(p.SpatialLabels) != 1 {
		t.Fatalf("spatial labels = %v", p.SpatialLabels)
	}
}

func TestPayloadValidate(t *testing.T) {
	p := Payload{LabeledBy: "alice", FeatureLabels: []string{"Kitchen:Appliances:Oven"}}
	if err := p.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	p.FeatureLabels = []string{"Oven"}
	if err := p.Validate(); err == nil {
		t.Fatalf("Validate() should reject malformed feature label")
	}

	p = Payload{}
	if err := p.Validate(); err == nil {
		t.Fatalf("Validate() should require labeled_by")
	}
}

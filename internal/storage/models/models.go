package models

import "time"

// CommunicationEvent is the persisted form of an ingested sample. The raw
// text is never stored; only the anonymized content and the fingerprint of
// the original content survive.
type CommunicationEvent struct {
	ID                string
	OrganizationID    string
	UnitID            string
	SourceID          string
	EventType         string
	Fingerprint       string
	AnonymizedContent string
	Metadata          string
	OccurredAt        time.Time
	ProcessedAt       time.Time
}

// AnalysisRecord is one immutable analysis run.
type AnalysisRecord struct {
	ID              string
	OrganizationID  string
	UnitID          string
	AnalysisType    string
	Metrics         string
	BaselineMetrics string
	VarianceScore   float64
	ConfidenceLevel float64
	WindowStart     time.Time
	WindowEnd       time.Time
	CreatedAt       time.Time
}

// BaselineRecord is the rolling reference maintained by an external process;
// the engine only reads the latest row per organization/unit.
type BaselineRecord struct {
	ID             string
	OrganizationID string
	UnitID         string
	BaselineType   string
	Data           string
	WindowDays     int
	LastUpdated    time.Time
}

// MissionRecord holds an organization's or unit's mission statement.
type MissionRecord struct {
	ID             string
	OrganizationID string
	UnitID         string
	Statement      string
	UpdatedAt      time.Time
}

// AlertRecord is a persisted alert with its narrative and action payloads.
type AlertRecord struct {
	ID                   string
	OrganizationID       string
	UnitID               string
	AlertType            string
	Severity             string
	Title                string
	Description          string
	InterpretiveAnalysis string
	RecommendedActions   string
	Status               string
	CreatedAt            time.Time
	ResolvedAt           *time.Time
}

// InterventionRecord is one suggested/implemented/completed intervention,
// owned by exactly one alert.
type InterventionRecord struct {
	ID                   string
	AlertID              string
	InterventionType     string
	Content              string
	ImplementationStatus string
	EffectivenessScore   *float64
	CreatedAt            time.Time
	ImplementedAt        *time.Time
}

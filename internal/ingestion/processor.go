// Package ingestion turns raw communication samples into stored, anonymized
// communication events and feeds them through the analysis engine. Content
// arrives as plain text or HTML exports from chat and mail systems.
package ingestion

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/topherchris420/signal-forge-pulse/internal/analysis"
	"github.com/topherchris420/signal-forge-pulse/internal/engine"
	"github.com/topherchris420/signal-forge-pulse/internal/metrics"
	"github.com/topherchris420/signal-forge-pulse/internal/storage/models"
	"github.com/topherchris420/signal-forge-pulse/internal/storage/sqlite"
	"github.com/topherchris420/signal-forge-pulse/pkg/fingerprint"
	"github.com/topherchris420/signal-forge-pulse/pkg/logger"
)

// Samples shorter than this carry too little signal to analyze.
const minContentLength = 10

const (
	ContentTypeText = "text"
	ContentTypeHTML = "html"
)

var ErrContentTooShort = errors.New("content too short to analyze")

var whitespaceRun = regexp.MustCompile(`\s+`)

// Store is the persistence surface the processor depends on.
type Store interface {
	InsertCommunicationEvent(ctx context.Context, event *models.CommunicationEvent) error
}

// Analyzer runs one analysis invocation over extracted content.
type Analyzer interface {
	Analyze(ctx context.Context, req engine.Request) (*engine.Result, error)
}

// Sample is one raw communication to ingest.
type Sample struct {
	Content        string            `json:"content"`
	ContentType    string            `json:"content_type"`
	OrganizationID string            `json:"organization_id"`
	UnitID         string            `json:"unit_id"`
	SourceID       string            `json:"source_id"`
	EventType      string            `json:"event_type"`
	Metadata       map[string]string `json:"metadata"`
	OccurredAt     time.Time         `json:"occurred_at"`
}

// Outcome reports what happened to one sample. A duplicate sample is stored
// nowhere and analyzed by nobody; Analysis is nil in that case.
type Outcome struct {
	EventID   string         `json:"event_id"`
	Duplicate bool           `json:"duplicate"`
	Analysis  *engine.Result `json:"analysis,omitempty"`
}

type Processor struct {
	store  Store
	engine Analyzer
}

func NewProcessor(store Store, analyzer Analyzer) *Processor {
	return &Processor{
		store:  store,
		engine: analyzer,
	}
}

// Process extracts text from the sample, fingerprints the original content,
// stores the anonymized event, and runs a full analysis. The fingerprint is
// computed over the content as received, so the same message re-exported
// through a different channel still dedupes.
func (p *Processor) Process(ctx context.Context, sample Sample) (*Outcome, error) {
	text := sample.Content
	if sample.ContentType == ContentTypeHTML {
		text = extractText(sample.Content)
	}
	text = strings.TrimSpace(text)

	if len(text) < minContentLength {
		return nil, ErrContentTooShort
	}

	fp := fingerprint.Of(sample.Content)

	metadataJSON := ""
	if len(sample.Metadata) > 0 {
		if data, err := json.Marshal(sample.Metadata); err == nil {
			metadataJSON = string(data)
		}
	}

	occurredAt := sample.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}

	event := &models.CommunicationEvent{
		ID:                uuid.NewString(),
		OrganizationID:    sample.OrganizationID,
		UnitID:            sample.UnitID,
		SourceID:          sample.SourceID,
		EventType:         sample.EventType,
		Fingerprint:       fp,
		AnonymizedContent: analysis.Anonymize(text),
		Metadata:          metadataJSON,
		OccurredAt:        occurredAt,
		ProcessedAt:       time.Now().UTC(),
	}

	err := p.store.InsertCommunicationEvent(ctx, event)
	if errors.Is(err, sqlite.ErrDuplicateFingerprint) {
		metrics.DuplicatesSkipped.Inc()
		logger.Debug("Duplicate communication skipped",
			zap.String("organization_id", sample.OrganizationID),
			zap.String("fingerprint", fp),
		)
		return &Outcome{Duplicate: true}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to store communication event: %w", err)
	}

	sourceType := sample.ContentType
	if sourceType == "" {
		sourceType = ContentTypeText
	}
	metrics.CommunicationsIngested.WithLabelValues(sourceType).Inc()

	result, err := p.engine.Analyze(ctx, engine.Request{
		Text:           text,
		OrganizationID: sample.OrganizationID,
		UnitID:         sample.UnitID,
		AnalysisType:   engine.TypeFull,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to analyze communication: %w", err)
	}

	logger.Info("Communication processed",
		zap.String("event_id", event.ID),
		zap.String("organization_id", sample.OrganizationID),
		zap.Int("alerts_opened", len(result.Alerts)),
	)

	return &Outcome{
		EventID:  event.ID,
		Analysis: result,
	}, nil
}

// extractText strips markup from HTML exports, dropping chrome elements that
// carry no conversational content.
func extractText(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}

	doc.Find("script, style, nav, footer, header, aside").Each(func(i int, s *goquery.Selection) {
		s.Remove()
	})

	text := doc.Find("body").Text()
	text = whitespaceRun.ReplaceAllString(text, " ")

	return strings.TrimSpace(text)
}

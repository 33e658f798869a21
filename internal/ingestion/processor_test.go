package ingestion

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/topherchris420/signal-forge-pulse/internal/engine"
	"github.com/topherchris420/signal-forge-pulse/internal/storage/models"
	"github.com/topherchris420/signal-forge-pulse/internal/storage/sqlite"
	"github.com/topherchris420/signal-forge-pulse/pkg/fingerprint"
	"github.com/topherchris420/signal-forge-pulse/pkg/logger"
)

func TestMain(m *testing.M) {
	if err := logger.Init("error", "console", "stdout"); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

type fakeEventStore struct {
	events    []*models.CommunicationEvent
	insertErr error
}

func (s *fakeEventStore) InsertCommunicationEvent(ctx context.Context, event *models.CommunicationEvent) error {
	if s.insertErr != nil {
		return s.insertErr
	}
	s.events = append(s.events, event)
	return nil
}

type fakeAnalyzer struct {
	called     bool
	lastReq    engine.Request
	result     *engine.Result
	analyzeErr error
}

func (a *fakeAnalyzer) Analyze(ctx context.Context, req engine.Request) (*engine.Result, error) {
	a.called = true
	a.lastReq = req
	if a.analyzeErr != nil {
		return nil, a.analyzeErr
	}
	if a.result != nil {
		return a.result, nil
	}
	return &engine.Result{AnalysisID: "analysis-1"}, nil
}

func TestProcessRejectsShortContent(t *testing.T) {
	processor := NewProcessor(&fakeEventStore{}, &fakeAnalyzer{})

	_, err := processor.Process(context.Background(), Sample{
		Content:        "short",
		OrganizationID: "org-1",
	})
	assert.ErrorIs(t, err, ErrContentTooShort)
}

func TestProcessStoresAnonymizedEvent(t *testing.T) {
	store := &fakeEventStore{}
	analyzer := &fakeAnalyzer{}
	processor := NewProcessor(store, analyzer)

	content := "John Smith flagged the rollout concern"
	outcome, err := processor.Process(context.Background(), Sample{
		Content:        content,
		OrganizationID: "org-1",
		UnitID:         "unit-2",
		SourceID:       "slack",
		EventType:      "message",
	})
	require.NoError(t, err)

	assert.False(t, outcome.Duplicate)
	assert.NotEmpty(t, outcome.EventID)
	require.NotNil(t, outcome.Analysis)

	require.Len(t, store.events, 1)
	event := store.events[0]
	assert.Equal(t, outcome.EventID, event.ID)
	assert.Equal(t, fingerprint.Of(content), event.Fingerprint)
	assert.NotContains(t, event.AnonymizedContent, "John")
	assert.Contains(t, event.AnonymizedContent, "[PERSON]")
	assert.False(t, event.OccurredAt.IsZero())

	assert.True(t, analyzer.called)
	assert.Equal(t, engine.TypeFull, analyzer.lastReq.AnalysisType)
	assert.Equal(t, content, analyzer.lastReq.Text)
	assert.Equal(t, "org-1", analyzer.lastReq.OrganizationID)
}

func TestProcessDuplicateSkipsAnalysis(t *testing.T) {
	store := &fakeEventStore{insertErr: sqlite.ErrDuplicateFingerprint}
	analyzer := &fakeAnalyzer{}
	processor := NewProcessor(store, analyzer)

	outcome, err := processor.Process(context.Background(), Sample{
		Content:        "the same message arriving twice",
		OrganizationID: "org-1",
	})
	require.NoError(t, err)

	assert.True(t, outcome.Duplicate)
	assert.Nil(t, outcome.Analysis)
	assert.False(t, analyzer.called)
}

func TestProcessExtractsTextFromHTML(t *testing.T) {
	store := &fakeEventStore{}
	analyzer := &fakeAnalyzer{}
	processor := NewProcessor(store, analyzer)

	html := `<html><body><script>var x = 1;</script><nav>menu</nav>` +
		`<p>Team morale is  good   today</p></body></html>`

	outcome, err := processor.Process(context.Background(), Sample{
		Content:        html,
		ContentType:    ContentTypeHTML,
		OrganizationID: "org-1",
	})
	require.NoError(t, err)
	require.NotNil(t, outcome.Analysis)

	assert.Equal(t, "Team morale is good today", analyzer.lastReq.Text)
	// The fingerprint covers the content as received, not the extraction.
	assert.Equal(t, fingerprint.Of(html), store.events[0].Fingerprint)
}

func TestProcessHTMLWithNoText(t *testing.T) {
	processor := NewProcessor(&fakeEventStore{}, &fakeAnalyzer{})

	_, err := processor.Process(context.Background(), Sample{
		Content:        "<html><body><script>only()</script></body></html>",
		ContentType:    ContentTypeHTML,
		OrganizationID: "org-1",
	})
	assert.ErrorIs(t, err, ErrContentTooShort)
}

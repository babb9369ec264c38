package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nofnotg/anamnesis/internal/anchor"
	"github.com/nofnotg/anamnesis/internal/dict"
	"github.com/nofnotg/anamnesis/internal/disclosure"
	"github.com/nofnotg/anamnesis/internal/dispute"
	"github.com/nofnotg/anamnesis/internal/episode"
	"github.com/nofnotg/anamnesis/internal/extract"
	"github.com/nofnotg/anamnesis/internal/ingest"
	"github.com/nofnotg/anamnesis/internal/llm"
	"github.com/nofnotg/anamnesis/internal/model"
	"github.com/nofnotg/anamnesis/internal/timeline"
)

// Runner orchestrates one document through the staged pipeline:
// ingest → anchors → entities → timeline → dispute scoring → episodes →
// disclosure. Each PipelineData instance is independent, so running many
// documents concurrently (one task per document) is safe by construction.
type Runner struct {
	cfg       *model.Config
	detector  *anchor.Detector
	extractor *extract.Extractor
	assembler *timeline.Assembler
	scorer    *dispute.Scorer
	episodes  *episode.Builder
	analyzer  *disclosure.Analyzer
	narrator  *llm.Narrator // nil when disabled
	log       zerolog.Logger
}

// NewRunner wires the pipeline from configuration. The disclosure
// dictionary starts from the embedded defaults, merged with the optional
// override file, behind a lookup cache.
func NewRunner(cfg *model.Config, log zerolog.Logger) (*Runner, error) {
	dictionary := dict.Default()
	if cfg.Dict.Path != "" {
		override, err := dict.LoadFile(cfg.Dict.Path)
		if err != nil {
			return nil, fmt.Errorf("load dictionary override: %w", err)
		}
		dictionary.Merge(override)
	}
	cached := dict.NewCachedDictionary(dictionary, cfg.Dict.CacheTTL, cfg.Dict.CacheCleanup)

	scorer := dispute.NewScorer(cfg.Scoring)

	var narrator *llm.Narrator
	if cfg.LLM.Provider != "" {
		n, err := llm.NewNarrator(cfg.LLM)
		if err != nil {
			log.Warn().Err(err).Msg("narrative provider unavailable, continuing without it")
		} else {
			narrator = n
		}
	}

	return &Runner{
		cfg:       cfg,
		detector:  anchor.NewDetector(),
		extractor: extract.NewExtractor(),
		assembler: timeline.NewAssembler(),
		scorer:    scorer,
		episodes:  episode.NewBuilder(cfg.Episode.WindowDays),
		analyzer:  disclosure.NewAnalyzer(cfg.Disclosure, cached, scorer, log),
		narrator:  narrator,
		log:       log,
	}, nil
}

// DocumentContext is the external claim-dispute context for one document
type DocumentContext struct {
	Contract    *model.ContractInfo
	Claim       *model.ClaimSpec
	RuleResults []model.RuleResult
}

// Process runs one document through every stage. Fatal failures come
// back as a StageError; recoverable problems accumulate as warnings on
// the returned PipelineData.
func (r *Runner) Process(ctx context.Context, path string, docCtx DocumentContext) (*model.PipelineData, error) {
	data := model.NewPipelineData(uuid.NewString(), path)

	// Ingest
	segments, err := ingest.ReadDocument(path)
	if err != nil {
		data.AddError(model.StageIngest, err.Error())
		return data, &StageError{Stage: model.StageIngest, Err: err}
	}
	data.Segments = segments
	r.log.Debug().Str("document", data.DocumentID).Int("segments", len(segments)).Msg("ingested")

	// Anchors
	data.MarkStage(model.StageAnchors)
	raw := r.detector.Detect(segments)
	for _, issue := range anchor.ValidateChronology(raw) {
		data.Warnings = append(data.Warnings, issue)
	}
	data.Anchors = anchor.SortAndDeduplicate(raw)
	data.Confidence["anchors"] = averageAnchorConfidence(data.Anchors)

	// Entities: invalid ones are rejected with warnings before any
	// downstream use
	data.MarkStage(model.StageEntities)
	for _, e := range r.extractor.Extract(segments, data.Anchors) {
		if report := e.Validate(); !report.Valid {
			data.AddWarning(model.StageEntities,
				fmt.Sprintf("entity %q rejected: %v", e.Core().OriginalText, report.Errors))
			continue
		}
		data.Entities = append(data.Entities, e)
	}
	data.Confidence["entities"] = averageEntityConfidence(data.Entities)

	// Timeline
	data.MarkStage(model.StageTimeline)
	data.Timeline = r.assembler.Build(data.Anchors, data.Entities)
	if report := data.Timeline.Validate(); !report.Valid {
		for _, msg := range report.Errors {
			data.AddWarning(model.StageTimeline, msg)
		}
	}

	// Dispute scoring, before episode grouping so episodes can aggregate
	// tags. Skipped without contract and claim context.
	data.MarkStage(model.StageDispute)
	if docCtx.Contract != nil && docCtx.Claim != nil {
		tagged, err := r.scorer.TagTimeline(data.Timeline.Events, data.EntityIndex(), docCtx.Claim, docCtx.Contract)
		if err != nil {
			data.AddWarning(model.StageDispute, fmt.Sprintf("dispute tagging skipped: %v", err))
		} else {
			data.Timeline.Events = tagged
		}
	}

	// Episodes
	data.MarkStage(model.StageEpisodes)
	data.Episodes = r.episodes.Group(data.Timeline.Events, data.EntityIndex())

	// Disclosure
	data.MarkStage(model.StageDisclosure)
	result, err := r.analyzer.Analyze(ctx, disclosure.Input{
		RuleResults: docCtx.RuleResults,
		Entities:    data.Entities,
		Timeline:    data.Timeline,
		Contract:    docCtx.Contract,
		Claim:       docCtx.Claim,
	})
	if err != nil {
		data.AddError(model.StageDisclosure, err.Error())
		return data, &StageError{Stage: model.StageDisclosure, Err: err}
	}
	for _, w := range result.Warnings {
		data.AddWarning(model.StageDisclosure, w)
	}
	data.Disclosure = result

	data.MarkStage(model.StageComplete)
	return data, nil
}

// BuildReport assembles the serialized per-document report, then asks the
// optional narrator for a reviewer summary. The narrative runs strictly
// after analysis and can never change a score; its failure degrades to a
// warning on the report.
func (r *Runner) BuildReport(ctx context.Context, data *model.PipelineData, docCtx DocumentContext) *model.Report {
	report := &model.Report{
		DocumentID:  data.DocumentID,
		SourcePath:  data.SourcePath,
		GeneratedAt: time.Now().UTC(),
		Contract:    docCtx.Contract,
		Claim:       docCtx.Claim,
		Anchors:     data.Anchors,
		Disclosure:  data.Disclosure,
		Warnings:    data.Warnings,
	}
	for _, e := range data.Entities {
		report.Entities = append(report.Entities, e.Serialize())
	}
	if data.Timeline != nil {
		report.Timeline = data.Timeline.Serialize()
	}
	for _, ep := range data.Episodes {
		report.Episodes = append(report.Episodes, model.EpisodeSummary{
			Episode: ep,
			Summary: episode.SummaryText(ep),
		})
	}

	if r.narrator != nil {
		narrative, err := r.narrator.Narrate(ctx, report)
		if err != nil {
			r.log.Warn().Err(err).Msg("narrative generation failed")
			report.Narrative = &model.Narrative{
				Enabled:  true,
				Warnings: []string{fmt.Sprintf("narrative generation failed: %v", err)},
			}
		} else {
			report.Narrative = narrative
		}
	}
	return report
}

func averageAnchorConfidence(anchors []model.Anchor) float64 {
	if len(anchors) == 0 {
		return 0
	}
	var sum float64
	for _, a := range anchors {
		sum += a.Confidence
	}
	return sum / float64(len(anchors))
}

func averageEntityConfidence(entities []model.Entity) float64 {
	if len(entities) == 0 {
		return 0
	}
	var sum float64
	for _, e := range entities {
		sum += e.Core().Confidence
	}
	return sum / float64(len(entities))
}

// Package reconcile gathers evidence about one entity from every source,
// merges it under a fixed source priority and records the fields that would
// change as a pending proposal.
package reconcile

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ppiankov/coasterscan/internal/diff"
	"github.com/ppiankov/coasterscan/internal/extract"
	"github.com/ppiankov/coasterscan/internal/facts"
	"github.com/ppiankov/coasterscan/internal/metrics"
	"github.com/ppiankov/coasterscan/internal/model"
	"github.com/ppiankov/coasterscan/internal/sources"
)

// Result messages
const (
	MessageNoChange = "no new information found"
	MessageProposal = "proposal created"
)

// Recorder persists provenance and proposals
type Recorder interface {
	SaveSourcePage(ctx context.Context, p *model.SourcePage) error
	SaveProposal(ctx context.Context, p *model.Proposal) error
}

// Result is the outcome of one run
type Result struct {
	Message      string
	SourcePageID string
	Proposal     *model.Proposal
	Diff         model.FieldMap
}

// Options tunes a run
type Options struct {
	Lang             string
	MaxSentences     int
	OfficialMaxChars int
	NotesMaxChars    int
}

// DefaultOptions returns the stock limits
func DefaultOptions() Options {
	return Options{
		Lang:             "en",
		MaxSentences:     80,
		OfficialMaxChars: 8000,
		NotesMaxChars:    800,
	}
}

// Deps are the collaborators of a Reconciler. Nil Metrics and Logger are
// replaced with no-op implementations.
type Deps struct {
	Official      sources.Provider[sources.Page]
	KnowledgeBase sources.Provider[sources.Record]
	Encyclopedia  sources.Provider[sources.Article]
	Extractor     *facts.Extractor
	Summarizer    *facts.Summarizer
	Recorder      Recorder
	Metrics       metrics.Recorder
	Logger        *zap.Logger
}

// Reconciler runs the pipeline for one entity at a time. It is safe for
// concurrent use on different entities.
type Reconciler struct {
	deps Deps
	opts Options
}

// New creates a Reconciler
func New(deps Deps, opts Options) *Reconciler {
	if deps.Metrics == nil {
		deps.Metrics = metrics.Nop{}
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Extractor == nil {
		deps.Extractor = facts.NewExtractor(nil, deps.Logger)
	}
	if deps.Summarizer == nil {
		deps.Summarizer = facts.NewSummarizer(nil, deps.Logger)
	}
	defaults := DefaultOptions()
	if opts.Lang == "" {
		opts.Lang = defaults.Lang
	}
	if opts.MaxSentences == 0 {
		opts.MaxSentences = defaults.MaxSentences
	}
	if opts.OfficialMaxChars <= 0 {
		opts.OfficialMaxChars = defaults.OfficialMaxChars
	}
	if opts.NotesMaxChars <= 0 {
		opts.NotesMaxChars = defaults.NotesMaxChars
	}
	return &Reconciler{deps: deps, opts: opts}
}

// evidence is everything gathered for one entity
type evidence struct {
	page     *sources.Page
	record   *sources.Record
	facts    model.Facts
	article  *sources.Article
	filtered string
	snippets []model.Snippet
	combined model.Candidate
	summary  *string
}

// Reconcile runs the full pipeline for e and returns either a no-change
// result or a persisted pending proposal. The entity itself is never modified.
func (r *Reconciler) Reconcile(ctx context.Context, e *model.Entity) (res *Result, err error) {
	start := time.Now()
	defer func() {
		r.deps.Metrics.RunCompleted(e.Kind, outcome(res, err), time.Since(start))
	}()

	prof, ok := profiles[e.Kind]
	if !ok {
		return nil, &ValidationError{Kind: e.Kind, ID: e.ID, Err: ErrUnsupportedKind}
	}
	website := e.Website()
	if website == "" {
		return nil, &ValidationError{Kind: e.Kind, ID: e.ID, Err: ErrNoWebsite}
	}

	log := r.deps.Logger.With(zap.String("kind", string(e.Kind)), zap.String("id", e.ID))
	ev := &evidence{}

	// official page
	ev.page = r.deps.Official.Fetch(ctx, sources.Query{URL: website, Kind: e.Kind, Lang: r.opts.Lang})
	provenance := r.officialProvenance(e, website, ev.page)
	if err := r.deps.Recorder.SaveSourcePage(ctx, provenance); err != nil {
		return nil, fmt.Errorf("save official source page: %w", err)
	}

	// knowledge base
	ev.record = r.deps.KnowledgeBase.Fetch(ctx, sources.Query{Name: e.Name, Kind: e.Kind, Lang: r.opts.Lang})
	if ev.record == nil {
		r.deps.Metrics.SourceDegraded(r.deps.KnowledgeBase.Name())
	}

	// facts from the official text
	ev.facts = r.deps.Extractor.ExtractFacts(ctx, e.Kind, pageText(ev.page), r.opts.Lang)
	keywords := filterKeywords(ev.facts, e.Name, ev.record)

	// encyclopedia
	searchName := e.Name
	if ev.record != nil && ev.record.Candidate.Name != nil && *ev.record.Candidate.Name != "" {
		searchName = *ev.record.Candidate.Name
	}
	ev.article = r.deps.Encyclopedia.Fetch(ctx, sources.Query{Name: searchName, Kind: e.Kind, Lang: r.opts.Lang})
	if ev.article == nil {
		r.deps.Metrics.SourceDegraded(r.deps.Encyclopedia.Name())
	} else {
		ev.filtered = extract.SelectRelevant(ev.article.Extract, keywords, ev.facts.CoasterNames(), r.opts.MaxSentences)
		wiki := &model.SourcePage{
			EntityKind: e.Kind,
			EntityID:   e.ID,
			URL:        ev.article.URL,
			StatusCode: 200,
			RawHTML:    ev.article.Extract,
			CleanText:  ev.filtered,
		}
		if err := r.deps.Recorder.SaveSourcePage(ctx, wiki); err != nil {
			return nil, fmt.Errorf("save encyclopedia source page: %w", err)
		}
	}

	// snippets, combined extraction and notes
	ev.snippets = r.snippets(e, ev, keywords)
	ev.combined = r.deps.Extractor.ExtractStructured(ctx, e.Kind, e.Name, ev.snippets, r.opts.Lang)
	ev.summary = r.deps.Summarizer.Summarize(ctx, e.Name, e.Kind, ev.snippets, r.opts.Lang, r.opts.NotesMaxChars)

	current := e.Fields()
	proposed := merge(e, prof, ev, log)
	changes := diff.Compute(current, proposed)

	if len(changes) == 0 {
		log.Info("no new information", zap.String("source_page_id", provenance.ID))
		return &Result{Message: MessageNoChange, SourcePageID: provenance.ID, Diff: changes}, nil
	}

	proposal := &model.Proposal{
		EntityKind: e.Kind,
		EntityID:   e.ID,
		SourceURL:  website,
		Current:    current,
		Suggested:  changes,
		Status:     model.StatusPending,
	}
	if err := r.deps.Recorder.SaveProposal(ctx, proposal); err != nil {
		return nil, fmt.Errorf("save proposal: %w", err)
	}
	log.Info("proposal created",
		zap.String("proposal_id", proposal.ID),
		zap.Strings("fields", diff.Keys(changes, model.FieldNames(e.Kind))))

	return &Result{
		Message:      MessageProposal,
		SourcePageID: provenance.ID,
		Proposal:     proposal,
		Diff:         changes,
	}, nil
}

func (r *Reconciler) officialProvenance(e *model.Entity, website string, page *sources.Page) *model.SourcePage {
	if page == nil {
		r.deps.Metrics.SourceDegraded(r.deps.Official.Name())
		return &model.SourcePage{
			EntityKind: e.Kind,
			EntityID:   e.ID,
			URL:        website,
			Error:      "unavailable",
		}
	}
	return page.Source(e.Kind, e.ID)
}

// snippets orders the evidence: knowledge base, official page, extracted
// facts, encyclopedia
func (r *Reconciler) snippets(e *model.Entity, ev *evidence, keywords []string) []model.Snippet {
	var out []model.Snippet
	if ev.record != nil {
		if s := ev.record.Snippet(); s.Text != "" {
			out = append(out, s)
		}
	}
	if ev.page != nil && ev.page.Text != "" {
		out = append(out, ev.page.Snippet(r.opts.OfficialMaxChars))
	}
	if text := factsText(e.Kind, ev.facts, keywords); text != "" {
		out = append(out, model.Snippet{Label: "Extracted facts from official website (AI)", Text: text})
	}
	if ev.article != nil && ev.filtered != "" {
		out = append(out, ev.article.Snippet(ev.filtered))
	}
	return out
}

func pageText(p *sources.Page) string {
	if p == nil {
		return ""
	}
	return p.Text
}

// filterKeywords extends the extracted keywords with the entity's own names
func filterKeywords(f model.Facts, name string, record *sources.Record) []string {
	keywords := append([]string{}, f.Keywords...)
	if name != "" {
		keywords = append(keywords, name)
	}
	if record != nil && record.Candidate.Name != nil && *record.Candidate.Name != "" {
		keywords = append(keywords, *record.Candidate.Name)
	}
	return keywords
}

func outcome(res *Result, err error) string {
	switch {
	case err != nil && IsValidation(err):
		return metrics.OutcomeInvalid
	case err != nil:
		return metrics.OutcomeError
	case res != nil && res.Proposal != nil:
		return metrics.OutcomeProposal
	default:
		return metrics.OutcomeNoChange
	}
}

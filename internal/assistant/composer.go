// Package assistant answers one chat message: it classifies the message,
// runs the matching search strategy and composes the reply, calling the
// generation service only with context built from the leads it found.
package assistant

import (
	"context"
	"errors"
	"strings"

	"github.com/spherical-ai/spherical/libs/lead-engine/internal/export"
	"github.com/spherical-ai/spherical/libs/lead-engine/internal/generation"
	"github.com/spherical-ai/spherical/libs/lead-engine/internal/leads"
	"github.com/spherical-ai/spherical/libs/lead-engine/internal/observability"
	"github.com/spherical-ai/spherical/libs/lead-engine/internal/retrieval"
)

// ErrEmptyMessage is returned for a blank message.
var ErrEmptyMessage = errors.New("empty message")

// DefaultStatsCommand is the message that returns directory stats without
// classification.
const DefaultStatsCommand = "__stats__"

// Classifier maps a message to an intent.
type Classifier interface {
	Classify(raw string) retrieval.Intent
}

// ContextBuilder renders the grounding context given to the generator.
type ContextBuilder interface {
	Build(results []leads.Lead) string
	BuildStats(stats leads.Stats) string
}

// Options bounds reply sizes.
type Options struct {
	ListCap      int
	DisplayCap   int
	SampleCap    int
	HistoryTurns int
	StatsCommand string
}

// DefaultOptions returns the standard caps.
func DefaultOptions() Options {
	return Options{
		ListCap:      10,
		DisplayCap:   10,
		SampleCap:    3,
		HistoryTurns: 6,
		StatsCommand: DefaultStatsCommand,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.ListCap <= 0 {
		o.ListCap = d.ListCap
	}
	if o.DisplayCap <= 0 {
		o.DisplayCap = d.DisplayCap
	}
	if o.SampleCap <= 0 {
		o.SampleCap = d.SampleCap
	}
	if o.HistoryTurns < 0 {
		o.HistoryTurns = d.HistoryTurns
	}
	if o.StatsCommand == "" {
		o.StatsCommand = d.StatsCommand
	}
	return o
}

// Request is one incoming chat message with the caller's recent history.
type Request struct {
	Message string               `json:"message"`
	History []generation.Message `json:"history,omitempty"`
}

// Reply is the composed answer. Only the fields relevant to the intent are
// set.
type Reply struct {
	Response string       `json:"response,omitempty"`
	Leads    []leads.Lead `json:"leads,omitempty"`
	File     *export.File `json:"file,omitempty"`
	Stats    *leads.Stats `json:"stats,omitempty"`

	Intent    retrieval.Intent `json:"-"`
	Generated bool             `json:"-"`
}

// Composer dispatches a classified message to its reply strategy. It holds
// no per-request state and is safe for concurrent use when its
// collaborators are.
type Composer struct {
	classifier Classifier
	index      retrieval.Searcher
	contexts   ContextBuilder
	generator  generation.Generator
	encoder    export.Encoder
	opts       Options
	logger     *observability.Logger
}

// NewComposer wires a composer. generator and encoder may be nil; the
// composer then answers with its deterministic replies.
func NewComposer(
	classifier Classifier,
	index retrieval.Searcher,
	contexts ContextBuilder,
	generator generation.Generator,
	encoder export.Encoder,
	opts Options,
	logger *observability.Logger,
) *Composer {
	if logger == nil {
		logger = observability.NopLogger()
	}
	if contexts == nil {
		contexts = retrieval.NewContextAssembler(retrieval.DefaultContextCap)
	}
	return &Composer{
		classifier: classifier,
		index:      index,
		contexts:   contexts,
		generator:  generator,
		encoder:    encoder,
		opts:       opts.withDefaults(),
		logger:     logger.WithOperation("compose"),
	}
}

// GenerationEnabled reports whether a generator is wired.
func (c *Composer) GenerationEnabled() bool {
	return c.generator != nil
}

// Stats returns the directory stats.
func (c *Composer) Stats() leads.Stats {
	return c.index.Stats()
}

// Respond answers one message. The only error is ErrEmptyMessage;
// collaborator failures fall back to deterministic replies.
func (c *Composer) Respond(ctx context.Context, req Request) (*Reply, error) {
	if strings.TrimSpace(req.Message) == "" {
		return nil, ErrEmptyMessage
	}

	if req.Message == c.opts.StatsCommand {
		stats := c.index.Stats()
		return &Reply{Stats: &stats}, nil
	}

	intent := c.classifier.Classify(req.Message)
	log := c.logger.WithContext(ctx)
	log.Debug().Str("intent", intent.String()).Msg("Message classified")

	t := turn{
		Composer: c,
		ctx:      ctx,
		req:      req,
		intent:   intent,
		history:  generation.TrimHistory(req.History, c.opts.HistoryTurns),
		log:      log,
	}

	var reply *Reply
	switch intent.Kind {
	case retrieval.IntentGreeting:
		reply = t.greeting()
	case retrieval.IntentHelp:
		reply = t.help()
	case retrieval.IntentListAll:
		reply = t.listAll()
	case retrieval.IntentExport:
		reply = t.export()
	case retrieval.IntentCount:
		reply = t.count()
	case retrieval.IntentSearchName:
		reply = t.search(c.index.ByName(intent.Term), noNameMatch(intent.Term))
	case retrieval.IntentSearchCity:
		reply = t.search(c.index.ByCity(intent.Term), noCityMatch(intent.Term))
	case retrieval.IntentSearchSegment:
		reply = t.search(c.index.BySegment(intent.Term), noSegmentMatch(intent.Term))
	case retrieval.IntentCreateEmail:
		reply = t.createEmail()
	case retrieval.IntentContactLookup:
		reply = t.contactLookup()
	default:
		reply = t.general()
	}

	reply.Intent = intent
	log.Info().
		Str("intent", string(intent.Kind)).
		Int("leads", len(reply.Leads)).
		Bool("generated", reply.Generated).
		Bool("file", reply.File != nil).
		Msg("Reply composed")
	return reply, nil
}

// turn carries one request through its reply strategy.
type turn struct {
	*Composer
	ctx     context.Context
	req     Request
	intent  retrieval.Intent
	history []generation.Message
	log     *observability.Logger
}

func (t *turn) greeting() *Reply {
	stats := t.index.Stats()
	return &Reply{Response: greetingText(stats)}
}

func (t *turn) help() *Reply {
	stats := t.index.Stats()
	return &Reply{Response: helpText(stats)}
}

func (t *turn) listAll() *Reply {
	all := t.index.All()
	if len(all) == 0 {
		return &Reply{Response: emptyDirectoryText}
	}
	shown := capLeads(all, t.opts.ListCap)
	return &Reply{
		Response: listAllText(len(all), shown),
		Leads:    shown,
	}
}

func (t *turn) export() *Reply {
	results := t.index.All()
	if f := t.intent.Filter; f != nil {
		results = t.index.ByCity(f.Term)
		if len(results) == 0 {
			results = t.index.General(f.Term)
		}
	}
	if len(results) == 0 {
		return &Reply{Response: nothingToExportText}
	}

	if t.encoder == nil {
		t.log.Warn().Msg("Export requested without a spreadsheet encoder")
		return &Reply{Response: exportFailedText}
	}

	file, err := t.encoder.Encode(t.ctx, export.RowsFromLeads(results))
	if err != nil {
		t.log.Warn().Err(err).Int("leads", len(results)).Msg("Spreadsheet encoding failed")
		return &Reply{Response: exportFailedText}
	}
	return &Reply{
		Response: exportDoneText(len(results)),
		File:     file,
	}
}

func (t *turn) count() *Reply {
	f := t.intent.Filter
	if f == nil {
		stats := t.index.Stats()
		return &Reply{Response: statsText(stats), Stats: &stats}
	}

	var results []leads.Lead
	switch f.Kind {
	case retrieval.FilterCity:
		results = t.index.ByCity(f.Term)
	default:
		results = t.index.BySegment(f.Term)
		if len(results) == 0 {
			results = t.index.General(f.Term)
		}
	}

	sample := capLeads(results, t.opts.SampleCap)
	return &Reply{
		Response: countText(*f, len(results), sample),
		Leads:    sample,
	}
}

// search answers the name, city and segment strategies. An empty result
// never reaches the generator.
func (t *turn) search(results []leads.Lead, negative string) *Reply {
	if len(results) == 0 {
		return &Reply{Response: negative}
	}
	return t.grounded(results)
}

// grounded answers from a non-empty result set, through the generator when
// it is available.
func (t *turn) grounded(results []leads.Lead) *Reply {
	shown := capLeads(results, t.opts.DisplayCap)
	if text, ok := t.generate(personaDirective, t.contexts.Build(results)); ok {
		return &Reply{Response: text, Leads: shown, Generated: true}
	}
	return &Reply{Response: foundText(len(results), shown), Leads: shown}
}

func (t *turn) createEmail() *Reply {
	name := t.intent.Term
	if name == "" {
		return &Reply{Response: emailNeedsNameText}
	}

	results := t.index.ByName(name)
	if len(results) == 0 {
		return &Reply{Response: emailNoLeadText(name)}
	}

	lead := results[0]
	target := []leads.Lead{lead}
	if text, ok := t.generate(personaDirective+"\n\n"+emailDirective, t.contexts.Build(target)); ok {
		return &Reply{Response: text, Leads: target, Generated: true}
	}
	return &Reply{Response: emailUnavailableText(&lead), Leads: target}
}

func (t *turn) contactLookup() *Reply {
	results := t.index.ByName(t.intent.Term)
	if len(results) == 0 {
		return &Reply{Response: noNameMatch(t.intent.Term)}
	}
	shown := capLeads(results, t.opts.SampleCap)
	return &Reply{
		Response: contactText(len(results), shown),
		Leads:    shown,
	}
}

func (t *turn) general() *Reply {
	results := t.index.General(t.intent.Term)
	if len(results) > 0 {
		return t.grounded(results)
	}

	stats := t.index.Stats()
	grounding := t.contexts.BuildStats(stats) + "\n" + nothingFoundDirective
	if text, ok := t.generate(personaDirective, grounding); ok {
		return &Reply{Response: text, Generated: true}
	}
	return &Reply{Response: generalFallbackText(t.req.Message, stats)}
}

// generate asks the generator for a reply. Every failure, including a
// missing generator, reports ok=false.
func (t *turn) generate(system, grounding string) (string, bool) {
	if t.generator == nil {
		return "", false
	}

	text, err := t.generator.Generate(t.ctx, generation.Request{
		System:  system,
		Context: grounding,
		History: t.history,
		Message: t.req.Message,
	})
	if err != nil {
		t.log.Warn().Err(err).Str("intent", string(t.intent.Kind)).Msg("Generation unavailable, using deterministic reply")
		return "", false
	}
	text = strings.TrimSpace(text)
	if text == "" {
		t.log.Warn().Str("intent", string(t.intent.Kind)).Msg("Generation returned empty text, using deterministic reply")
		return "", false
	}
	return text, true
}

func capLeads(all []leads.Lead, n int) []leads.Lead {
	if len(all) > n {
		return all[:n]
	}
	return all
}

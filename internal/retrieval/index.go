package retrieval

import (
	"strings"

	"github.com/spherical-ai/spherical/libs/lead-engine/internal/leads"
	"github.com/spherical-ai/spherical/libs/lead-engine/internal/textnorm"
)

// Searcher is the read side of the lead directory used by the composer.
type Searcher interface {
	ByName(term string) []leads.Lead
	ByCity(term string) []leads.Lead
	BySegment(term string) []leads.Lead
	General(term string) []leads.Lead
	All() []leads.Lead
	Stats() leads.Stats
}

// Index holds the lead directory with its normalized search fields
// precomputed. It is built once and only read afterwards, so it is safe for
// concurrent use.
type Index struct {
	leads   []leads.Lead
	entries []indexEntry
	stats   leads.Stats
}

type indexEntry struct {
	name       string
	social     string
	company    string
	city       string
	segment    string
	searchable string
}

// NewIndex builds an index over all. The slice is not copied and must not be
// modified afterwards.
func NewIndex(all []leads.Lead) *Index {
	entries := make([]indexEntry, len(all))
	for i := range all {
		lead := &all[i]
		entries[i] = indexEntry{
			name:       textnorm.Normalize(lead.FullName()),
			social:     textnorm.Normalize(lead.SocialName()),
			company:    textnorm.Normalize(lead.Company()),
			city:       textnorm.Normalize(lead.City()),
			segment:    textnorm.Normalize(lead.Segment()),
			searchable: textnorm.Normalize(Searchable(lead)),
		}
	}
	return &Index{
		leads:   all,
		entries: entries,
		stats:   leads.ComputeStats(all),
	}
}

// All returns every lead in dataset order.
func (x *Index) All() []leads.Lead {
	return x.leads
}

// Len returns the number of leads.
func (x *Index) Len() int {
	return len(x.leads)
}

// Stats returns the aggregate counts computed at build time.
func (x *Index) Stats() leads.Stats {
	return x.stats
}

// ByName keeps leads where every token of term (longer than one character)
// is found in the full name, or every token in the social name, or every
// token in the company name.
func (x *Index) ByName(term string) []leads.Lead {
	tokens := textnorm.Tokens(term, 1)
	if len(tokens) == 0 {
		return nil
	}
	return x.filter(func(e *indexEntry) bool {
		return containsAll(e.name, tokens) ||
			containsAll(e.social, tokens) ||
			containsAll(e.company, tokens)
	})
}

// ByCity keeps leads whose city contains term.
func (x *Index) ByCity(term string) []leads.Lead {
	t := textnorm.Normalize(term)
	if t == "" {
		return nil
	}
	return x.filter(func(e *indexEntry) bool {
		return strings.Contains(e.city, t)
	})
}

// BySegment keeps leads whose segment contains term.
func (x *Index) BySegment(term string) []leads.Lead {
	t := textnorm.Normalize(term)
	if t == "" {
		return nil
	}
	return x.filter(func(e *indexEntry) bool {
		return strings.Contains(e.segment, t)
	})
}

// General is the loose fallback: a lead matches when any meaningful token of
// term (longer than two characters, not a stop word) occurs in its
// searchable projection.
func (x *Index) General(term string) []leads.Lead {
	tokens := GeneralTokens(term)
	if len(tokens) == 0 {
		return nil
	}
	return x.filter(func(e *indexEntry) bool {
		for _, tok := range tokens {
			if strings.Contains(e.searchable, tok) {
				return true
			}
		}
		return false
	})
}

// GeneralTokens returns the tokens General searches for.
func GeneralTokens(term string) []string {
	raw := textnorm.Tokens(term, 2)
	out := make([]string, 0, len(raw))
	for _, tok := range raw {
		if !generalStopWords[tok] {
			out = append(out, tok)
		}
	}
	return out
}

func (x *Index) filter(keep func(e *indexEntry) bool) []leads.Lead {
	var out []leads.Lead
	for i := range x.entries {
		if keep(&x.entries[i]) {
			out = append(out, x.leads[i])
		}
	}
	return out
}

func containsAll(field string, tokens []string) bool {
	if field == "" {
		return false
	}
	for _, tok := range tokens {
		if !strings.Contains(field, tok) {
			return false
		}
	}
	return true
}

// Searchable is the explicit text projection General matches against: the
// identity, location, role, company, social and profile fields of a lead,
// one per line. Emails and phone numbers are not included.
func Searchable(l *leads.Lead) string {
	var parts []string
	add := func(values ...string) {
		for _, v := range values {
			if v = strings.TrimSpace(v); v != "" {
				parts = append(parts, v)
			}
		}
	}

	add(l.FullName(), l.SocialName(), l.Company(), l.Role(), l.Segment(), l.City(), l.State())
	if l.Basic != nil {
		add(l.Basic.Education...)
	}
	for _, p := range l.History {
		add(p.Role.String(), p.Company.String())
	}
	if l.Contact != nil {
		add(l.Contact.Address.String())
	}
	add(l.LinkedIn(), l.Instagram())
	if l.Social != nil {
		add(l.Social.CompanySite.String())
	}
	if l.Registry != nil {
		add(l.Registry.LegalName.String())
	}
	if l.Profile != nil {
		add(l.Profile.Summary.String())
		add(l.Profile.Motivations...)
	}
	if l.Soul != nil {
		add(l.Soul.Values...)
		add(l.Soul.Motivators...)
	}
	if l.Network != nil {
		add(l.Network.Communities...)
	}
	return strings.Join(parts, "\n")
}

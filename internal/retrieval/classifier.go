package retrieval

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/spherical-ai/spherical/libs/lead-engine/internal/textnorm"
)

// message is one utterance in the two forms rules look at.
type message struct {
	raw   string // as typed, used for captures so names keep their casing
	canon string // normalized words joined by single spaces, punctuation dropped
}

// rule is one (predicate, extractor) step of the classifier.
type rule struct {
	name  string
	match func(m message) (Intent, bool)
}

// IntentClassifier maps a message to exactly one Intent. Rules run in a
// fixed priority order and the first match wins.
type IntentClassifier struct {
	rules []rule
}

// namePattern is one name-lookup form. The capture is the lead name.
type namePattern struct {
	re *regexp.Regexp
	// broad forms ("leads de X", "buscar X") commonly take a city or a
	// segment phrase as well, so they yield to those rules more eagerly
	broad bool
}

// Name lookups run on the raw message, case-insensitive, in list order.
var namePatterns = []namePattern{
	{re: regexp.MustCompile(`(?i)^\s*quem\s+(?:é|e|eh|seria)\s+(?:(?:o|a)\s+)?(.+?)[\s?.!]*$`)},
	{re: regexp.MustCompile(`(?i)(?:^|\s)(?:dados|informações|informacoes|infos?|perfil|ficha|detalhes)\s+(?:completos?\s+|completas?\s+)?(?:de\s+contato\s+)?(?:de|do|da|sobre)\s+(.+?)[\s?.!]*$`)},
	{re: regexp.MustCompile(`(?i)(?:^|\s)(?:chamad[oa]|de\s+nome)\s+(.+?)[\s?.!]*$`)},
	{re: regexp.MustCompile(`(?i)^\s*(?:(?:qual|quais)\s+(?:(?:é|e|são|sao)\s+)?(?:(?:o|a|os|as)\s+)?|(?:me\s+)?(?:passa|passe|manda|mande)\s+(?:(?:o|a)\s+)?)?(?:telefones?|celular|whatsapp|zap|e-?mails?|linkedin|instagram)\s+(?:d[oa]|de)\s+(.+?)[\s?.!]*$`)},
	// mid-sentence form; "de" is left out so "email de prospecção" stays a draft request
	{re: regexp.MustCompile(`(?i)(?:^|\s)(?:telefones?|celular|whatsapp|zap|e-?mails?|linkedin|instagram)\s+d[oa]\s+(.+?)[\s?.!]*$`)},
	{re: regexp.MustCompile(`(?i)^\s*(?:os\s+)?leads?\s+(?:de|do|da)\s+(.+?)[\s?.!]*$`), broad: true},
	{re: regexp.MustCompile(`(?i)^\s*(?:buscar?|busque|procurar?|procure|pesquisar?|pesquise|encontrar?|encontre|localizar?|localize)\s+(?:(?:o|a|pel[oa]|por)\s+)?(.+?)[\s?.!]*$`), broad: true},
}

var (
	contactLookupPattern = regexp.MustCompile(`(?i)(?:^|\s)(?:contatos?\s+(?:d[oa]|de|com)|como\s+(?:falo|falar|entro\s+em\s+contato|entrar\s+em\s+contato)\s+com|falar\s+com|ligar\s+(?:para|pro|pra))\s+(?:(?:o|a)\s+)?(.+?)[\s?.!]*$`)
	// the recipient ends at a comma or at the next para/pro/pra/sobre/com clause
	emailTargetPattern = regexp.MustCompile(`(?i)(?:^|\s)(?:para|pro|pra)\s+(?:(?:o|a)\s+)?([^,;]+?)(?:\s+(?:para|pro|pra|sobre|com)\s.*|\s*[,;].*)?[\s?.!]*$`)
	leadingArticle     = regexp.MustCompile(`(?i)^(?:o|a|os|as|um|uma)\s+`)
)

// placePrepositions introduce a place or an area: "de Curitiba", "em saúde".
var placePrepositions = map[string]bool{
	"de": true, "do": true, "da": true, "em": true, "no": true, "na": true,
}

// groupNouns open a phrase about several leads rather than one person.
var groupNouns = map[string]bool{
	"lead": true, "leads": true, "pessoa": true, "pessoas": true,
	"empresa": true, "empresas": true, "cliente": true, "clientes": true,
	"contato": true, "contatos": true, "alguem": true, "todos": true,
	"profissionais": true,
}

// NewIntentClassifier creates a classifier with the standard rule order:
// greeting, help, list all, export, count, name lookup, city, segment,
// create email, contact lookup, general query.
func NewIntentClassifier() *IntentClassifier {
	return &IntentClassifier{
		rules: []rule{
			{"greeting", matchPhraseSet(greetingPhrases, IntentGreeting)},
			{"help", matchPhraseSet(helpPhrases, IntentHelp)},
			{"list_all", matchListAll},
			{"export", matchFiltered(exportKeywords, IntentExport)},
			{"count", matchFiltered(countKeywords, IntentCount)},
			{"name_lookup", matchNameLookup},
			{"city", matchKeywordList(cityKeywords, IntentSearchCity)},
			{"segment", matchKeywordList(segmentKeywords, IntentSearchSegment)},
			{"create_email", matchCreateEmail},
			{"contact_lookup", matchContactLookup},
		},
	}
}

// Classify returns the intent of raw. It never fails: anything no rule
// claims is a GeneralQuery carrying raw verbatim.
func (c *IntentClassifier) Classify(raw string) Intent {
	m := message{
		raw:   raw,
		canon: strings.Join(textnorm.Words(textnorm.Normalize(raw)), " "),
	}

	for _, r := range c.rules {
		if intent, ok := r.match(m); ok {
			return intent
		}
	}
	return Intent{Kind: IntentGeneralQuery, Term: raw}
}

// RuleNames lists the rules in evaluation order.
func (c *IntentClassifier) RuleNames() []string {
	names := make([]string, len(c.rules))
	for i, r := range c.rules {
		names[i] = r.name
	}
	return names
}

func matchPhraseSet(set map[string]bool, kind IntentKind) func(message) (Intent, bool) {
	return func(m message) (Intent, bool) {
		if m.canon != "" && set[m.canon] {
			return Intent{Kind: kind}, true
		}
		return Intent{}, false
	}
}

func matchListAll(m message) (Intent, bool) {
	if _, ok := firstKeyword(m.raw, listAllKeywords); ok {
		return Intent{Kind: IntentListAll}, true
	}
	return Intent{}, false
}

// matchFiltered handles Export and Count: a defining keyword plus an
// optional city (preferred) or segment filter found anywhere in the message.
func matchFiltered(keywords []string, kind IntentKind) func(message) (Intent, bool) {
	return func(m message) (Intent, bool) {
		if _, ok := firstKeyword(m.raw, keywords); !ok {
			return Intent{}, false
		}
		intent := Intent{Kind: kind}
		if term, ok := firstKeyword(m.raw, cityKeywords); ok {
			intent.Filter = &Filter{Kind: FilterCity, Term: term}
		} else if term, ok := firstKeyword(m.raw, segmentKeywords); ok {
			intent.Filter = &Filter{Kind: FilterSegment, Term: term}
		}
		return intent, true
	}
}

func matchNameLookup(m message) (Intent, bool) {
	for _, p := range namePatterns {
		match := p.re.FindStringSubmatch(m.raw)
		if match == nil {
			continue
		}
		name := cleanCapture(match[1])
		if utf8.RuneCountInString(name) <= 1 {
			continue
		}
		words := textnorm.Words(textnorm.Normalize(name))
		// "quem é de Curitiba?" asks for a city; "João dos Santos" is a person
		if isPlacePhrase(words) || (p.broad && mentionsPlace(words)) {
			return Intent{}, false
		}
		return Intent{Kind: IntentSearchName, Term: name}, true
	}
	return Intent{}, false
}

// isPlacePhrase reports whether words are exactly one city or segment
// keyword, allowing a single leading preposition.
func isPlacePhrase(words []string) bool {
	if len(words) > 1 && placePrepositions[words[0]] {
		words = words[1:]
	}
	return keywordSpan(words, 0, cityKeywords) == len(words) ||
		keywordSpan(words, 0, segmentKeywords) == len(words)
}

// mentionsPlace reports whether words open with a group noun or a keyword,
// or carry a keyword right after a place preposition.
func mentionsPlace(words []string) bool {
	if len(words) == 0 {
		return false
	}
	if groupNouns[words[0]] {
		return true
	}
	for i := range words {
		if i > 0 && !placePrepositions[words[i-1]] {
			continue
		}
		if keywordSpan(words, i, cityKeywords) > 0 || keywordSpan(words, i, segmentKeywords) > 0 {
			return true
		}
	}
	return false
}

// keywordSpan returns the number of words a keyword of list covers when it
// starts at words[at], or 0 when none does.
func keywordSpan(words []string, at int, list []string) int {
	for _, kw := range list {
		needle := textnorm.Words(kw)
		if len(needle) == 0 || at+len(needle) > len(words) {
			continue
		}
		match := true
		for j, n := range needle {
			if words[at+j] != n {
				match = false
				break
			}
		}
		if match {
			return len(needle)
		}
	}
	return 0
}

func matchKeywordList(keywords []string, kind IntentKind) func(message) (Intent, bool) {
	return func(m message) (Intent, bool) {
		if term, ok := firstKeyword(m.raw, keywords); ok {
			return Intent{Kind: kind, Term: term}, true
		}
		return Intent{}, false
	}
}

func matchCreateEmail(m message) (Intent, bool) {
	words := strings.Fields(m.canon)
	verbAt := -1
	for i, w := range words {
		if containsString(createEmailVerbs, w) {
			verbAt = i
			break
		}
	}
	if verbAt < 0 {
		return Intent{}, false
	}

	rest := strings.Join(words[verbAt+1:], " ")
	if _, ok := firstKeyword(rest, createEmailObjects); !ok {
		return Intent{}, false
	}

	intent := Intent{Kind: IntentCreateEmail}
	if match := emailTargetPattern.FindStringSubmatch(m.raw); match != nil {
		if name := cleanCapture(match[1]); utf8.RuneCountInString(name) > 1 {
			intent.Term = name
		}
	}
	return intent, true
}

func matchContactLookup(m message) (Intent, bool) {
	match := contactLookupPattern.FindStringSubmatch(m.raw)
	if match == nil {
		return Intent{}, false
	}
	name := cleanCapture(match[1])
	if utf8.RuneCountInString(name) <= 1 {
		return Intent{}, false
	}
	return Intent{Kind: IntentContactLookup, Term: name}, true
}

// firstKeyword returns the first keyword of list present in text on word
// boundaries, as the matching words of the lowercased text.
func firstKeyword(text string, list []string) (string, bool) {
	for _, kw := range list {
		if found, ok := textnorm.FindPhrase(text, kw); ok {
			return found, true
		}
	}
	return "", false
}

func cleanCapture(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, `?!.,;:"'()[]{} `)
	s = leadingArticle.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// Package retrieval resolves free-text sales questions into a search strategy
// over the lead directory and assembles the grounding context handed to the
// generation service.
package retrieval

import "fmt"

// IntentKind names the classified purpose of a message.
type IntentKind string

const (
	IntentGreeting      IntentKind = "greeting"
	IntentHelp          IntentKind = "help"
	IntentListAll       IntentKind = "list_all"
	IntentExport        IntentKind = "export"
	IntentCount         IntentKind = "count"
	IntentSearchName    IntentKind = "search_name"
	IntentSearchCity    IntentKind = "search_city"
	IntentSearchSegment IntentKind = "search_segment"
	IntentCreateEmail   IntentKind = "create_email"
	IntentContactLookup IntentKind = "contact_lookup"
	IntentGeneralQuery  IntentKind = "general_query"
)

// FilterKind says which field an Export or Count filter applies to.
type FilterKind string

const (
	FilterCity    FilterKind = "city"
	FilterSegment FilterKind = "segment"
)

// Filter narrows Export and Count to a city or segment.
type Filter struct {
	Kind FilterKind `json:"kind"`
	Term string     `json:"term"`
}

// Intent is the tagged result of classification. Term carries the argument
// of the search intents (name, city, segment), the optional lead name of
// CreateEmail, and the raw message of GeneralQuery. Filter is only set on
// Export and Count.
type Intent struct {
	Kind   IntentKind `json:"kind"`
	Term   string     `json:"term,omitempty"`
	Filter *Filter    `json:"filter,omitempty"`
}

// String renders the intent for logs and the CLI.
func (i Intent) String() string {
	switch {
	case i.Filter != nil:
		return fmt.Sprintf("%s{%s: %q}", i.Kind, i.Filter.Kind, i.Filter.Term)
	case i.Term != "":
		return fmt.Sprintf("%s{%q}", i.Kind, i.Term)
	default:
		return string(i.Kind)
	}
}

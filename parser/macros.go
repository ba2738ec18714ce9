package parser

import (
	"sort"
	"strings"
)

// Macro is the expansion of a shorthand keyword. Empty fields contribute
// nothing; Opt values are appended to any other pending options.
type Macro struct {
	Of    string   `mapstructure:"of" toml:"of,omitempty" yaml:"of,omitempty" json:"of,omitempty"`
	By    string   `mapstructure:"by" toml:"by,omitempty" yaml:"by,omitempty" json:"by,omitempty"`
	NotBy string   `mapstructure:"not_by" toml:"not_by,omitempty" yaml:"not_by,omitempty" json:"not_by,omitempty"`
	From  string   `mapstructure:"from" toml:"from,omitempty" yaml:"from,omitempty" json:"from,omitempty"`
	Per   string   `mapstructure:"per" toml:"per,omitempty" yaml:"per,omitempty" json:"per,omitempty"`
	Opt   []string `mapstructure:"opt" toml:"opt,omitempty" yaml:"opt,omitempty" json:"opt,omitempty"`
}

// IsEmpty reports whether the macro expands to nothing.
func (m Macro) IsEmpty() bool {
	return m.Of == "" && m.By == "" && m.NotBy == "" && m.From == "" && m.Per == "" && len(m.Opt) == 0
}

// String renders the expansion in query form, e.g. "by me from home".
func (m Macro) String() string {
	var parts []string
	if m.Of != "" {
		parts = append(parts, "of "+m.Of)
	}
	if m.By != "" {
		parts = append(parts, "by "+m.By)
	}
	if m.NotBy != "" {
		parts = append(parts, "not by "+m.NotBy)
	}
	if m.From != "" {
		parts = append(parts, "from "+m.From)
	}
	if m.Per != "" {
		parts = append(parts, "per "+m.Per)
	}
	if len(m.Opt) > 0 {
		parts = append(parts, "opt "+strings.Join(m.Opt, " "))
	}
	return strings.Join(parts, " ")
}

// MacroTable maps lower-case macro names to their expansions.
type MacroTable map[string]Macro

// DefaultMacros is the built-in macro table.
var DefaultMacros = MacroTable{
	// who and where
	"my":     {By: "me"},
	"home":   {From: "home"},
	"unseen": {NotBy: "me", From: "home"},

	// quality and ordering
	"rg":      {Opt: []string{"quality_grade=research"}},
	"nid":     {Opt: []string{"quality_grade=needs_id"}},
	"oldest":  {Opt: []string{"order=asc", "order_by=observed_on"}},
	"newest":  {Opt: []string{"order=desc", "order_by=observed_on"}},
	"reverse": {Opt: []string{"order=asc"}},
	"faves":   {Opt: []string{"popular", "order_by=votes"}},
	"most":    {Per: "species", Opt: []string{"order=desc", "order_by=count"}},
	"least":   {Per: "species", Opt: []string{"order=asc", "order_by=count"}},

	// taxonomic groups
	"herps": {Opt: []string{"taxon_ids=20978,26036"}},
	"lichenish": {Opt: []string{
		"taxon_ids=152028,54743,152030,175541,127378,117881,117869,175246",
		"without_taxon_id=372831,1040687,1040689,352459",
	}},
	"mothsonly":    {Of: "lepidoptera", Opt: []string{"without_taxon_id=47224"}},
	"unknown":      {Opt: []string{"iconic_taxa=unknown", "without_taxon_id=67333,151817,131236"}},
	"waspsonly":    {Of: "apocrita", Opt: []string{"without_taxon_id=47336,630955"}},
	"nonflowering": {Of: "plantae", Opt: []string{"without_taxon_id=47125"}},
	"nonvascular":  {Of: "plantae", Opt: []string{"without_taxon_id=211194"}},
	"inverts":      {Of: "animalia", Opt: []string{"without_taxon_id=355675"}},
	"roachesonly":  {Of: "blattodea", Opt: []string{"without_taxon_id=118903"}},
	"seaslugs": {Opt: []string{
		"taxon_ids=130687,775798,775804,49784,500752,47113,775801,775833,775805,495793,47801,801507",
	}},
	"allfish": {Opt: []string{"taxon_ids=47178,47273,797045,85497"}},
}

// With returns a copy of t with extra entries added or replacing existing
// ones. Names are matched case-insensitively.
func (t MacroTable) With(extra map[string]Macro) MacroTable {
	merged := make(MacroTable, len(t)+len(extra))
	for name, macro := range t {
		merged[strings.ToLower(name)] = macro
	}
	for name, macro := range extra {
		merged[strings.ToLower(name)] = macro
	}
	return merged
}

// Expand returns the expansion of token, if it names a macro.
func (t MacroTable) Expand(token string) (Macro, bool) {
	macro, ok := t[strings.ToLower(token)]
	if !ok || macro.IsEmpty() {
		return Macro{}, false
	}
	return macro, true
}

// Names lists the macro names in sorted order.
func (t MacroTable) Names() []string {
	names := make([]string, 0, len(t))
	for name := range t {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ExpandMacro looks token up in the default macro table.
func ExpandMacro(token string) (Macro, bool) {
	return DefaultMacros.Expand(token)
}

// Package taxon holds the static rank tables used to recognize rank keywords
// in queries and to check ancestor/descendant relationships between ranks.
//
// Rank levels and equivalents follow the iNaturalist taxon model. A higher
// level is coarser: kingdom is 70, species is 10.
package taxon

import "strings"

// RankLevels maps each canonical rank name to its numeric level.
var RankLevels = map[string]float64{
	"stateofmatter": 100,
	"unranked":      90, // null in the remote db; given a level so parent checks work
	"kingdom":       70,
	"phylum":        60,
	"subphylum":     57,
	"superclass":    53,
	"class":         50,
	"subclass":      47,
	"infraclass":    45,
	"subterclass":   44,
	"superorder":    43,
	"order":         40,
	"suborder":      37,
	"infraorder":    35,
	"parvorder":     34.5,
	"zoosection":    34,
	"zoosubsection": 33.5,
	"superfamily":   33,
	"epifamily":     32,
	"family":        30,
	"subfamily":     27,
	"supertribe":    26,
	"tribe":         25,
	"subtribe":      24,
	"genus":         20,
	"genushybrid":   20,
	"subgenus":      15,
	"section":       13,
	"subsection":    12,
	"complex":       11,
	"species":       10,
	"hybrid":        10,
	"subspecies":    5,
	"variety":       5,
	"form":          5,
	"infrahybrid":   5,
}

// RankEquivalents maps rank aliases to their canonical rank name.
var RankEquivalents = map[string]string{
	"division":     "phylum",
	"sub-class":    "subclass",
	"super-order":  "superorder",
	"sub-order":    "suborder",
	"super-family": "superfamily",
	"sub-family":   "subfamily",
	"gen":          "genus",
	"sp":           "species",
	"spp":          "species",
	"infraspecies": "subspecies",
	"ssp":          "subspecies",
	"sub-species":  "subspecies",
	"subsp":        "subspecies",
	"trinomial":    "subspecies",
	"var":          "variety",
}

// PrimaryRanks are the ranks shown in an abbreviated taxonomy breadcrumb.
var PrimaryRanks = []string{"kingdom", "phylum", "class", "order", "family"}

// TrinomialAbbreviations are the infix abbreviations used when formatting
// names below species.
var TrinomialAbbreviations = map[string]string{
	"variety":    "var.",
	"subspecies": "ssp.",
	"form":       "f.",
}

// IsRankKeyword reports whether token names a rank or a rank alias.
// Matching is case-insensitive.
func IsRankKeyword(token string) bool {
	lower := strings.ToLower(token)
	if _, ok := RankLevels[lower]; ok {
		return true
	}
	_, ok := RankEquivalents[lower]
	return ok
}

// CanonicalRank resolves an alias to its canonical rank. A canonical rank is
// returned as-is. ok is false when the input is neither.
func CanonicalRank(aliasOrRank string) (rank string, ok bool) {
	lower := strings.ToLower(aliasOrRank)
	if canonical, found := RankEquivalents[lower]; found {
		return canonical, true
	}
	if _, found := RankLevels[lower]; found {
		return lower, true
	}
	return "", false
}

// RankLevel returns the numeric level of a rank or alias.
func RankLevel(rank string) (level float64, ok bool) {
	canonical, ok := CanonicalRank(rank)
	if !ok {
		return 0, false
	}
	return RankLevels[canonical], true
}

// IsDescendantRank reports whether a taxon of rank child can sit below a taxon
// of rank ancestor: the child's level must be strictly less. Unknown ranks
// never qualify.
func IsDescendantRank(child, ancestor string) bool {
	childLevel, ok := RankLevel(child)
	if !ok {
		return false
	}
	ancestorLevel, ok := RankLevel(ancestor)
	if !ok {
		return false
	}
	return childLevel < ancestorLevel
}

// Keywords returns every rank name and alias, canonical names first.
func Keywords() []string {
	keywords := make([]string, 0, len(RankLevels)+len(RankEquivalents))
	for rank := range RankLevels {
		keywords = append(keywords, rank)
	}
	for alias := range RankEquivalents {
		keywords = append(keywords, alias)
	}
	return keywords
}

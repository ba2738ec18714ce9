package embed

import (
	"strconv"

	"github.com/dronefly-project/dronefly/logger"
	"github.com/dronefly-project/dronefly/query"
)

// Query returns the query the rendered message was built from, as far as it
// can be recovered. Who and where clauses come back as ids, not names.
func (s *State) Query() query.Query {
	return s.Merge(query.Empty)
}

// Merge lays fresh over the recovered state and returns the new query.
//
// Each clause is taken whole from fresh when fresh has it, otherwise from
// the recovered state. A fresh taxon (including "any") brings its ancestor
// with it; a fresh taxon with only ranks keeps the recovered taxon. Dates are one unit: if fresh has any date clause, all six date
// fields come from fresh, since mixing date clauses from two queries is
// rarely what was meant. Per and options are never recovered.
func (s *State) Merge(fresh query.Query) query.Query {
	merged := query.Query{
		Per:     fresh.Per,
		Options: fresh.Options,
	}

	id, recovered := s.TaxonID()
	switch {
	case namesTaxon(fresh.Main):
		merged.Main = fresh.Main
		merged.Ancestor = fresh.Ancestor
	case recovered:
		merged.Main = &query.TaxonQuery{TaxonID: id}
	case !fresh.Main.IsEmpty():
		merged.Main = fresh.Main
		merged.Ancestor = fresh.Ancestor
	}

	merged.User = firstNonEmpty(fresh.User, s.idString(s.UserID))
	merged.IDBy = firstNonEmpty(fresh.IDBy, s.idString(s.IdentUserID))
	merged.UnobservedBy = firstNonEmpty(fresh.UnobservedBy, s.idString(s.UnobservedByUserID))
	merged.ExceptBy = firstNonEmpty(fresh.ExceptBy, s.idString(s.NotUserID))
	merged.Place = firstNonEmpty(fresh.Place, s.idString(s.PlaceID))
	merged.Project = firstNonEmpty(fresh.Project, s.idString(s.ProjectID))
	merged.ControlledTerm = fresh.ControlledTerm
	if merged.ControlledTerm == nil {
		merged.ControlledTerm = s.ControlledTerm()
	}

	if fresh.HasDates() {
		merged.ObsD1, merged.ObsD2, merged.ObsOn = fresh.ObsD1, fresh.ObsD2, fresh.ObsOn
		merged.AddedD1, merged.AddedD2, merged.AddedOn = fresh.AddedD1, fresh.AddedD2, fresh.AddedOn
	} else {
		merged.ObsD1, merged.ObsD2, merged.ObsOn = s.ObsD1(), s.ObsD2(), s.ObsOn()
		merged.AddedD1, merged.AddedD2, merged.AddedOn = s.AddedD1(), s.AddedD2(), s.AddedOn()
	}

	logger.ComponentLogger("embed").Debugw("merged query",
		"fresh", fresh.String(),
		"merged", merged.String())
	return merged
}

// namesTaxon reports whether t picks a taxon by name, code, or id. Ranks
// alone only narrow a taxon, so they do not replace a recovered one.
func namesTaxon(t *query.TaxonQuery) bool {
	return t != nil && (len(t.Terms) > 0 || t.Code != "" || t.TaxonID != 0)
}

func (s *State) idString(get func() (int, bool)) string {
	if id, ok := get(); ok {
		return strconv.Itoa(id)
	}
	return ""
}

package resolve

import (
	"strings"

	"github.com/stackmesa/depstack/pkg/coord"
)

// Reason explains an include decision made by the expansion engine.
type Reason string

// Include-decision reasons, in rule order.
const (
	ReasonNewTopDep     Reason = "new-top-dep"
	ReasonExcluded      Reason = "excluded"
	ReasonUseTop        Reason = "use-top"
	ReasonParentOmitted Reason = "parent-omitted"
	ReasonNewDep        Reason = "new-dep"
	ReasonSameVersion   Reason = "same-version"
	ReasonNewerVersion  Reason = "newer-version"
	ReasonOlderVersion  Reason = "older-version"
)

// TraceEntry records one include decision.
type TraceEntry struct {
	Path          []coord.Lib  `json:"path"`
	Lib           coord.Lib    `json:"lib"`
	Coord         coord.Coord  `json:"coord"`
	UseCoord      coord.Coord  `json:"use_coord"`
	CoordID       coord.ID     `json:"coord_id"`
	OverrideCoord *coord.Coord `json:"override_coord,omitempty"`
	Include       bool         `json:"include"`
	Reason        Reason       `json:"reason"`
}

// Trace is the resolution log attached to a lib map when tracing is on.
type Trace struct {
	RunID      string                 `json:"run_id"`
	Entries    []TraceEntry           `json:"log"`
	Exclusions map[string][]coord.Lib `json:"exclusions,omitempty"`
}

// snapshotExclusions renders the final exclusion state with readable keys.
func snapshotExclusions(excl Exclusions) map[string][]coord.Lib {
	if len(excl) == 0 {
		return nil
	}
	out := make(map[string][]coord.Lib, len(excl))
	for key, set := range excl {
		out[strings.ReplaceAll(key, "\x1f", " ")] = set.sorted()
	}
	return out
}

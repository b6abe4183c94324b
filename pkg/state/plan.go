package state

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"

	"github.com/mxpv/castsync/pkg/filename"
	"github.com/mxpv/castsync/pkg/model"
)

// PlannedEpisode pairs an episode selected for download with the base
// name it will be written under: <output>/<BaseName>.<ext> and
// <output>/<BaseName>.json.
type PlannedEpisode struct {
	Episode  *model.Episode
	BaseName string
}

// Plan is the ordered list of episodes the sync orchestrator should
// download this run, newest-first with a stable dispatch order.
type Plan []PlannedEpisode

// SyncPlan is CreatePlan's full result: the episodes to download this
// run, plus diagnostic counts for episodes it set aside. AlreadyPresent
// is computed before limit is applied, so it always reflects the true
// number of feed episodes already on disk — never conflated with
// episodes merely excluded by --limit.
type SyncPlan struct {
	ToDownload Plan
	// AlreadyPresent counts feed episodes whose identity was already in
	// OutputState. Feeds Skipped in the sync result.
	AlreadyPresent int
	// WithoutIdentity counts feed episodes with no GUID, whose identity
	// falls back to their enclosure URL. Diagnostic only.
	WithoutIdentity int
}

// CreatePlan excludes any episode already present in known, sorts the
// rest newest-first (undated episodes trail, in their original feed
// order), applies limit when non-nil, and resolves a collision-free
// base name for every planned episode.
func CreatePlan(episodes []*model.Episode, known OutputState, limit *int) *SyncPlan {
	var candidates []*model.Episode
	alreadyPresent := 0
	withoutIdentity := 0

	for _, e := range episodes {
		if e.GUID == "" {
			withoutIdentity++
		}
		if _, present := known[e.IdentityKey()]; present {
			alreadyPresent++
			continue
		}
		candidates = append(candidates, e)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i].PubDate, candidates[j].PubDate
		switch {
		case a == nil && b == nil:
			return false
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.After(*b)
		}
	})

	if limit != nil && *limit >= 0 && *limit < len(candidates) {
		candidates = candidates[:*limit]
	}

	return &SyncPlan{
		ToDownload:      resolveBaseNames(candidates),
		AlreadyPresent:  alreadyPresent,
		WithoutIdentity: withoutIdentity,
	}
}

// resolveBaseNames computes filename.BaseName for every candidate and,
// when two distinct episodes collide on the same base, disambiguates
// every colliding entry by appending -<short_hash_of_identity>.
func resolveBaseNames(candidates []*model.Episode) Plan {
	counts := make(map[string]int, len(candidates))
	for _, e := range candidates {
		counts[filename.BaseName(e)]++
	}

	plan := make(Plan, len(candidates))
	for i, e := range candidates {
		base := filename.BaseName(e)
		if counts[base] > 1 {
			base = base + "-" + IdentityHash(e.IdentityKey())
		}
		plan[i] = PlannedEpisode{Episode: e, BaseName: base}
	}
	return plan
}

// IdentityHash returns a short, deterministic hex digest of identity,
// used to disambiguate two distinct episodes whose deterministic base
// names collide.
func IdentityHash(identity string) string {
	sum := sha256.Sum256([]byte(identity))
	return hex.EncodeToString(sum[:])[:8]
}

// Package concurrency tracks which spawned threads are live at a given
// program point during the walker's traversal, grounded on the reference
// implementation's concurrency.py.
package concurrency

import "github.com/funvibe/funxy-race/internal/effects"

// ThreadInfo describes one live spawned thread: its identity, where it was
// spawned, a human description for warning context, and the effect it
// contributes to conflict checks.
type ThreadInfo struct {
	ThreadID    string
	SpawnLine   int
	Description string
	Effect      *effects.Effect
}

// ThreadInfoFromEffect builds a ThreadInfo from a computed effect.
func ThreadInfoFromEffect(tid string, spawnLine int, description string, e *effects.Effect) *ThreadInfo {
	return &ThreadInfo{ThreadID: tid, SpawnLine: spawnLine, Description: description, Effect: e}
}

// ConcurState is the walker's state at a program point: every thread
// currently live (active, keyed by thread id) and the set of thread ids
// each in-scope handle variable is currently bound to (a handle can be
// bound to more than one id across join points, hence a set).
type ConcurState struct {
	Active    map[string]*ThreadInfo
	HandleEnv map[string]map[string]struct{}
}

// New returns an empty ConcurState (the state a function body is walked
// from).
func New() *ConcurState {
	return &ConcurState{
		Active:    make(map[string]*ThreadInfo),
		HandleEnv: make(map[string]map[string]struct{}),
	}
}

// Clone returns a deep copy of s, so that walking independent branches of
// an If or While never lets one branch's mutations leak into the other.
func (s *ConcurState) Clone() *ConcurState {
	out := New()
	for tid, info := range s.Active {
		out.Active[tid] = &ThreadInfo{
			ThreadID:    info.ThreadID,
			SpawnLine:   info.SpawnLine,
			Description: info.Description,
			Effect:      info.Effect.Clone(),
		}
	}
	for handle, tids := range s.HandleEnv {
		cp := make(map[string]struct{}, len(tids))
		for tid := range tids {
			cp[tid] = struct{}{}
		}
		out.HandleEnv[handle] = cp
	}
	return out
}

// JoinStates recombines two states that diverged at a branch point (the
// two arms of an If, or a While's zero-vs-one-iteration paths) into a
// single state that is a safe (over-)approximation of either path having
// run: threads active in either arm are active in the join; a thread id
// live on both sides is merged (its reads/writes/sites are unioned,
// keeping the first side's description and spawn line); handle bindings
// are unioned pointwise, since a handle may end a branch bound to
// different thread ids depending on which arm ran.
func JoinStates(a, b *ConcurState) *ConcurState {
	out := New()

	for tid, info := range a.Active {
		out.Active[tid] = info
	}
	for tid, info := range b.Active {
		if existing, ok := out.Active[tid]; ok {
			merged := existing.Effect.Clone()
			merged.Union(info.Effect)
			out.Active[tid] = &ThreadInfo{
				ThreadID:    existing.ThreadID,
				SpawnLine:   existing.SpawnLine,
				Description: existing.Description,
				Effect:      merged,
			}
		} else {
			out.Active[tid] = info
		}
	}

	for handle, tids := range a.HandleEnv {
		cp := make(map[string]struct{}, len(tids))
		for tid := range tids {
			cp[tid] = struct{}{}
		}
		out.HandleEnv[handle] = cp
	}
	for handle, tids := range b.HandleEnv {
		dst, ok := out.HandleEnv[handle]
		if !ok {
			dst = make(map[string]struct{})
			out.HandleEnv[handle] = dst
		}
		for tid := range tids {
			dst[tid] = struct{}{}
		}
	}

	return out
}

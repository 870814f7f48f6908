// Package sim implements the branching combat simulation: a persistent
// combat log held in an arena, probabilistic combat states that split
// on event distributions, transposition merging, and the encounter
// loop itself.
package sim

import "github.com/blamedcloud/dndstats/internal/combat"

// LogHandle addresses a log node in its arena.
type LogHandle int

// NoLog is the handle of no node.
const NoLog LogHandle = -1

type logNode struct {
	// parents is empty for a root, has one entry for an ordinary
	// child, and several for a node created by merging transposed
	// branches.
	parents []LogHandle
	events  []combat.CombatEvent
}

// LogArena owns every log node of one simulation run. Branch logs
// share their history structurally: a child node records only the
// events since the fork, and merged branches record all of their
// alternate histories as multiple parents. Handles index into the
// arena, so states stay small and copying a state never copies a log.
type LogArena struct {
	nodes []logNode
}

// NewLogArena returns an empty arena.
func NewLogArena() *LogArena { return &LogArena{} }

// NewRoot allocates a parentless node.
func (a *LogArena) NewRoot() LogHandle {
	a.nodes = append(a.nodes, logNode{})
	return LogHandle(len(a.nodes) - 1)
}

// Child allocates an empty node whose history continues h.
func (a *LogArena) Child(h LogHandle) LogHandle {
	a.nodes = append(a.nodes, logNode{parents: []LogHandle{h}})
	return LogHandle(len(a.nodes) - 1)
}

// Merge allocates an empty node with both histories as parents. The
// parents are alternate pasts of the merged branch, not a sequence.
func (a *LogArena) Merge(left, right LogHandle) LogHandle {
	a.nodes = append(a.nodes, logNode{parents: []LogHandle{left, right}})
	return LogHandle(len(a.nodes) - 1)
}

// Append records an event at the node.
func (a *LogArena) Append(h LogHandle, ev combat.CombatEvent) {
	a.nodes[h].events = append(a.nodes[h].events, ev)
}

// LocalEvents returns the events recorded at the node itself.
func (a *LogArena) LocalEvents(h LogHandle) []combat.CombatEvent {
	return a.nodes[h].events
}

// Parents returns the node's parent handles.
func (a *LogArena) Parents(h LogHandle) []LogHandle {
	return a.nodes[h].parents
}

// LastEvent returns the most recent event visible from the node,
// walking up through empty ancestors. For merged nodes the first
// parent is followed; merging requires the branches' last events to be
// equal, so the choice does not matter.
func (a *LogArena) LastEvent(h LogHandle) (combat.CombatEvent, bool) {
	for h != NoLog {
		node := a.nodes[h]
		if n := len(node.events); n > 0 {
			return node.events[n-1], true
		}
		if len(node.parents) == 0 {
			break
		}
		h = node.parents[0]
	}
	return combat.CombatEvent{}, false
}

// History returns the events from the root to the node, following the
// first parent through merge points. Alternate histories introduced by
// merges are reachable via Parents.
func (a *LogArena) History(h LogHandle) []combat.CombatEvent {
	var chain []LogHandle
	for h != NoLog {
		chain = append(chain, h)
		node := a.nodes[h]
		if len(node.parents) == 0 {
			break
		}
		h = node.parents[0]
	}
	var out []combat.CombatEvent
	for i := len(chain) - 1; i >= 0; i-- {
		out = append(out, a.nodes[chain[i]].events...)
	}
	return out
}

// Len returns the number of nodes allocated.
func (a *LogArena) Len() int { return len(a.nodes) }

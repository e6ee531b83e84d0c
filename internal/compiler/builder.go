package compiler

import (
	"sort"

	"github.com/aretw0/hsmgen/pkg/domain"
)

type stringSet map[string]struct{}

func (s stringSet) add(v string) { s[v] = struct{}{} }

func (s stringSet) addOpt(v *string) {
	if v != nil {
		s[*v] = struct{}{}
	}
}

func (s stringSet) sorted() []string {
	out := make([]string, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// builder accumulates one diagram while it is open.
// It is created on a start line and discarded after finalize.
type builder struct {
	name string
	opts Options

	stack    []string
	states   stringSet
	parents  map[string]string
	children map[string]stringSet

	inits  map[string]string
	events map[string][]domain.Transition
	entry  map[string][]string
	exit   map[string][]string

	allEvents     stringSet
	allActions    stringSet
	allConditions stringSet
}

func newBuilder(name string, opts Options) *builder {
	return &builder{
		name:          name,
		opts:          opts,
		stack:         []string{domain.RootState},
		states:        stringSet{},
		parents:       map[string]string{},
		children:      map[string]stringSet{domain.RootState: {}},
		inits:         map[string]string{},
		events:        map[string][]domain.Transition{},
		entry:         map[string][]string{},
		exit:          map[string][]string{},
		allEvents:     stringSet{},
		allActions:    stringSet{},
		allConditions: stringSet{},
	}
}

func (b *builder) top() string {
	return b.stack[len(b.stack)-1]
}

// openComposites returns how many composite blocks are still open.
func (b *builder) openComposites() int {
	return len(b.stack) - 1
}

// ancestorOrSelf reports whether state is ctx or one of its ancestors.
func (b *builder) ancestorOrSelf(state, ctx string) bool {
	for cur := ctx; cur != domain.RootState && cur != ""; cur = b.parents[cur] {
		if cur == state {
			return true
		}
	}
	return false
}

// registerState records a reference to state from the current context.
// A state first seen at the root is moved once into the composite that
// later references it. Moving never happens onto the state itself or one of
// its descendants, so the parent map stays a tree.
func (b *builder) registerState(state string) error {
	ctx := b.top()
	if b.ancestorOrSelf(state, ctx) {
		b.states.add(state)
		return nil
	}

	parent, known := b.parents[state]
	switch {
	case !known:
		b.parents[state] = ctx
		b.children[state] = stringSet{}
	case parent == domain.RootState && ctx != domain.RootState:
		b.parents[state] = ctx
		if b.opts.Hierarchy == domain.HierarchyStrict {
			delete(b.children[domain.RootState], state)
		}
	case b.opts.Hierarchy == domain.HierarchyStrict && ctx != parent:
		if ctx != domain.RootState {
			return domain.ErrParentConflict
		}
		// Referencing an owned state from the root is fine; ownership stays.
		b.states.add(state)
		return nil
	}

	b.states.add(state)
	b.children[ctx].add(state)
	return nil
}

func (b *builder) open(state string) error {
	if err := b.registerState(state); err != nil {
		return err
	}
	b.stack = append(b.stack, state)
	return nil
}

func (b *builder) close() error {
	if len(b.stack) == 1 {
		return domain.ErrUnbalancedComposite
	}
	b.stack = b.stack[:len(b.stack)-1]
	return nil
}

func (b *builder) addTransition(t domain.Transition) error {
	b.events[t.Source] = append(b.events[t.Source], t)
	b.allEvents.add(t.Event)
	b.allConditions.addOpt(t.Condition)
	b.allActions.addOpt(t.Action)

	if t.Source != domain.InitialMarker {
		if err := b.registerState(t.Source); err != nil {
			return err
		}
	}
	if t.Target != nil && *t.Target != domain.InitialMarker {
		return b.registerState(*t.Target)
	}
	return nil
}

func (b *builder) addInit(target string) error {
	key := b.top()
	if prev, ok := b.inits[key]; ok && prev != target {
		switch b.opts.DuplicateInit {
		case domain.InitFirstWins:
			return b.registerState(target)
		case domain.InitConflictError:
			return domain.ErrDuplicateInit
		}
	}
	b.inits[key] = target
	return b.registerState(target)
}

func (b *builder) addStateAction(state string, phase domain.Phase, action *string) error {
	if action != nil {
		lists := b.entry
		if phase == domain.PhaseExit {
			lists = b.exit
		}
		lists[state] = append(lists[state], *action)
		b.allActions.add(*action)
	}
	return b.registerState(state)
}

// finalize computes the derived structures and returns the immutable model.
func (b *builder) finalize() *domain.Diagram {
	d := &domain.Diagram{
		Name:          b.name,
		States:        b.states.sorted(),
		StateParents:  make(map[string]string, len(b.parents)),
		StateChildren: make(map[string][]string, len(b.children)),
		Depth:         map[int][]string{},
		IsLeafState:   make(map[string]bool, len(b.children)),
		Inits:         make(map[string]string, len(b.inits)),
		Events:        make(map[string][]domain.Transition, len(b.events)),
		StateActions: domain.StateActions{
			Entry: copyLists(b.entry),
			Exit:  copyLists(b.exit),
		},
		AllEvents:     b.allEvents.sorted(),
		AllActions:    b.allActions.sorted(),
		AllConditions: b.allConditions.sorted(),
	}

	for state, parent := range b.parents {
		d.StateParents[state] = parent

		depth := 0
		for cur := parent; cur != domain.RootState && cur != ""; cur = b.parents[cur] {
			depth++
		}
		d.Depth[depth] = append(d.Depth[depth], state)
	}
	for _, states := range d.Depth {
		sort.Strings(states)
	}

	for state, kids := range b.children {
		d.StateChildren[state] = kids.sorted()
		d.IsLeafState[state] = len(kids) == 0
	}

	for k, v := range b.inits {
		d.Inits[k] = v
	}
	for src, ts := range b.events {
		d.Events[src] = append([]domain.Transition(nil), ts...)
	}

	return d
}

func copyLists(src map[string][]string) map[string][]string {
	dst := make(map[string][]string, len(src))
	for k, v := range src {
		dst[k] = append([]string(nil), v...)
	}
	return dst
}

package parser

import "sort"

type methodCandidate struct {
	methods   []*MethodDescriptor
	owner     string
	depth     int
	order     int
	ambiguous bool
}

// flattenMethods returns the public methods reachable through cls, applying
// C++ name hiding: a name declared in a more derived class hides every base
// overload of that name, and the same name reached from two different bases
// at equal depth is ambiguous and dropped.
func flattenMethods(cls *headerClass, classes map[string]*headerClass) []*MethodDescriptor {
	candidates := map[string]*methodCandidate{}
	order := 0
	visited := map[string]bool{}
	collectInheritedMethods(cls, classes, 0, visited, candidates, &order)

	sorted := make([]*methodCandidate, 0, len(candidates))
	for _, cand := range candidates {
		if cand.ambiguous {
			continue
		}
		sorted = append(sorted, cand)
	}
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].order < sorted[j].order
	})

	methods := make([]*MethodDescriptor, 0, len(sorted))
	for _, cand := range sorted {
		for _, m := range cand.methods {
			if !m.Virtual && overridesVirtual(m, cand.owner, classes, map[string]bool{}) {
				m.Virtual = true
			}
			methods = append(methods, m)
		}
	}
	return methods
}

func collectInheritedMethods(
	cls *headerClass,
	classes map[string]*headerClass,
	depth int,
	visited map[string]bool,
	out map[string]*methodCandidate,
	order *int,
) {
	if visited[cls.name] {
		return
	}
	visited[cls.name] = true

	own := map[string][]*MethodDescriptor{}
	names := []string{}
	for _, m := range cls.methods {
		if _, ok := own[m.Name]; !ok {
			names = append(names, m.Name)
		}
		own[m.Name] = append(own[m.Name], m)
	}
	for _, name := range names {
		addMethodCandidate(out, name, cls.name, own[name], depth, order)
	}

	for _, baseName := range cls.bases {
		base, ok := classes[unqualified(baseName)]
		if !ok {
			continue
		}
		collectInheritedMethods(base, classes, depth+1, visited, out, order)
	}
}

func addMethodCandidate(
	out map[string]*methodCandidate,
	name string,
	owner string,
	methods []*MethodDescriptor,
	depth int,
	order *int,
) {
	cand, exists := out[name]
	if !exists || depth < cand.depth {
		out[name] = &methodCandidate{methods: methods, owner: owner, depth: depth, order: *order}
		*order = *order + 1
		return
	}
	if depth > cand.depth {
		return
	}
	if cand.owner != owner {
		cand.ambiguous = true
	}
}

// overridesVirtual reports whether some base of owner declares m as virtual
// with the same signature.
func overridesVirtual(m *MethodDescriptor, owner string, classes map[string]*headerClass, seen map[string]bool) bool {
	cls, ok := classes[owner]
	if !ok || seen[owner] {
		return false
	}
	seen[owner] = true
	for _, baseName := range cls.bases {
		base, ok := classes[unqualified(baseName)]
		if !ok {
			continue
		}
		for _, bm := range base.methods {
			if bm.Name == m.Name && bm.Virtual && SameParams(bm.Params, m.Params) && bm.Const == m.Const {
				return true
			}
		}
		if overridesVirtual(m, base.name, classes, seen) {
			return true
		}
	}
	return false
}

func unqualified(name string) string {
	_, n := SplitTarget(name)
	return n
}

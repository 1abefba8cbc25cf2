package domain

import (
	"fmt"
	"sort"
	"strings"
)

// Issue describes one structural defect found in the catalog.
type Issue struct {
	Kind       string
	Permission string
	Detail     string
}

// Defect kinds reported by Validate.
const (
	IssueCycle    = "cycle"
	IssueDangling = "dangling"
)

func (i Issue) String() string {
	return fmt.Sprintf("%s: %s: %s", i.Kind, i.Permission, i.Detail)
}

// Validate runs a full structural-integrity pass over the catalog: every
// inheritance cycle and every dangling reference is reported, not just the
// first, so operators can fix the whole catalog in one pass. Role grants are
// checked against the permission catalog too.
func (c *Catalog) Validate() []Issue {
	var issues []Issue

	names := c.Permissions()

	// Dangling references first so cycle detection can skip undefined nodes.
	for _, name := range names {
		def := c.permissions[name]
		for _, inherited := range def.Inherits {
			if !c.HasPermissionDef(inherited) {
				issues = append(issues, Issue{
					Kind:       IssueDangling,
					Permission: name,
					Detail:     fmt.Sprintf("inherits undefined permission %q", inherited),
				})
			}
		}
	}

	// Report each cycle once, keyed by its sorted member set.
	seenCycles := map[string]bool{}
	for _, name := range names {
		cycle := c.findCycleFrom(name)
		if cycle == nil {
			continue
		}
		key := cycleKey(cycle)
		if seenCycles[key] {
			continue
		}
		seenCycles[key] = true
		issues = append(issues, Issue{
			Kind:       IssueCycle,
			Permission: cycle[0],
			Detail:     "inheritance cycle: " + strings.Join(cycle, " -> "),
		})
	}

	for _, role := range c.Roles() {
		for _, grant := range c.roles[role].Grants {
			if !c.HasPermissionDef(grant) {
				issues = append(issues, Issue{
					Kind:       IssueDangling,
					Permission: grant,
					Detail:     fmt.Sprintf("role %q grants undefined permission %q", role, grant),
				})
			}
		}
	}

	return issues
}

// findCycleFrom walks the inheritance graph from a starting permission and
// returns the members of the first cycle on the path, or nil.
func (c *Catalog) findCycleFrom(start string) []string {
	type frame struct {
		name string
		next int
	}
	inPath := map[string]bool{}
	var path []string

	stack := []frame{{name: start}}
	inPath[start] = true
	path = append(path, start)

	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		def, ok := c.permissions[top.name]
		if !ok {
			// Dangling edge, reported separately.
			inPath[top.name] = false
			path = path[:len(path)-1]
			stack = stack[:len(stack)-1]
			continue
		}

		if top.next < len(def.Inherits) {
			child := def.Inherits[top.next]
			top.next++
			if inPath[child] {
				// Slice the path from the first occurrence of child.
				for i, name := range path {
					if name == child {
						cycle := append([]string{}, path[i:]...)
						return append(cycle, child)
					}
				}
			}
			inPath[child] = true
			path = append(path, child)
			stack = append(stack, frame{name: child})
			continue
		}

		inPath[top.name] = false
		path = path[:len(path)-1]
		stack = stack[:len(stack)-1]
	}

	return nil
}

func cycleKey(cycle []string) string {
	members := append([]string{}, cycle...)
	sort.Strings(members)
	return strings.Join(members, "|")
}

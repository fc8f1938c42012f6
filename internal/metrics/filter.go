package metrics

import (
	"sort"
	"strings"
)

// Filter drops interfaces that are not worth sampling in aggregate mode:
// exact name matches (loopback) and hypervisor-managed name prefixes.
type Filter struct {
	Names    []string
	Prefixes []string
}

var DefaultFilter = Filter{
	Names:    []string{"lo"},
	Prefixes: []string{"vnet", "virbr"},
}

func (f Filter) Skip(iface string) bool {
	for _, n := range f.Names {
		if iface == n {
			return true
		}
	}
	for _, p := range f.Prefixes {
		if strings.HasPrefix(iface, p) {
			return true
		}
	}
	return false
}

// Apply returns the sorted subset of names that are not skipped.
func (f Filter) Apply(names []string) []string {
	set := make([]string, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		if f.Skip(name) {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		set = append(set, name)
	}
	sort.Strings(set)
	return set
}

func FilterInterfaces(names []string) []string {
	return DefaultFilter.Apply(names)
}

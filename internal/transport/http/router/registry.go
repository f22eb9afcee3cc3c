package router

import (
	"sort"

	"estate-api/internal/transport/http/ez"
)

// APIModule mounts routes under /api. public needs no credential; every
// route on gated has passed the gate.
type APIModule interface{ MountAPI(public, gated ez.EZ) }

// AdminModule mounts routes under /api/admin, all behind the gate.
type AdminModule interface{ MountAdmin(admin ez.EZ) }

// Modules may implement prioritizer to control mount order (lower first).
// The default is 100.
type prioritizer interface{ Priority() int }

type Registry struct {
	api   []APIModule
	admin []AdminModule
}

// Register files each module under the interfaces it implements.
func (r *Registry) Register(mods ...any) {
	for _, mod := range mods {
		if m, ok := mod.(APIModule); ok {
			r.api = append(r.api, m)
		}
		if m, ok := mod.(AdminModule); ok {
			r.admin = append(r.admin, m)
		}
	}
}

func (r *Registry) mountAPI(public, gated ez.EZ) {
	for _, m := range sorted(r.api) {
		m.MountAPI(public, gated)
	}
}

func (r *Registry) mountAdmin(admin ez.EZ) {
	for _, m := range sorted(r.admin) {
		m.MountAdmin(admin)
	}
}

func sorted[M any](mods []M) []M {
	out := append([]M(nil), mods...)
	sort.SliceStable(out, func(i, j int) bool { return priorityOf(out[i]) < priorityOf(out[j]) })
	return out
}

func priorityOf(v any) int {
	if p, ok := v.(prioritizer); ok {
		return p.Priority()
	}
	return 100
}

package router

import (
	"sort"

	"github.com/gin-gonic/gin"
)

// APIModule mounts its routes under the /api group.
type APIModule interface{ MountAPI(*gin.RouterGroup) }

// Modules implementing prioritizer are mounted in ascending order; others
// default to 100.
type prioritizer interface{ Priority() int }

// MountAll mounts every module on api, lowest priority first.
func MountAll(api *gin.RouterGroup, mods ...APIModule) {
	mods = append([]APIModule(nil), mods...)
	sort.SliceStable(mods, func(i, j int) bool {
		return priorityOf(mods[i]) < priorityOf(mods[j])
	})
	for _, m := range mods {
		m.MountAPI(api)
	}
}

func priorityOf(v any) int {
	if p, ok := v.(prioritizer); ok {
		return p.Priority()
	}
	return 100
}

package worktime

// RoleFilter decides whether time logged under a project role counts as work.
// The exclusion set is copied on construction and never changes afterwards, so
// a RoleFilter can be shared freely between goroutines.
type RoleFilter struct {
	notWorkable map[ProjectRoleID]struct{}
}

func NewRoleFilter(notWorkable ...ProjectRoleID) RoleFilter {
	set := make(map[ProjectRoleID]struct{}, len(notWorkable))
	for _, id := range notWorkable {
		set[id] = struct{}{}
	}
	return RoleFilter{notWorkable: set}
}

// IsWorkable is false only for roles in the exclusion set. Unknown ids are workable.
func (f RoleFilter) IsWorkable(id ProjectRoleID) bool {
	_, excluded := f.notWorkable[id]
	return !excluded
}

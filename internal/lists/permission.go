package lists

// Permission is the effective access level resolved for a list request.
// Levels are strictly ordered: Owner > Edit > View > None. Owner and Edit
// authorize the same content mutations; deleting a list is Owner-exclusive.
type Permission int

const (
	PermissionNone Permission = iota
	PermissionView
	PermissionEdit
	PermissionOwner
)

// Required floors per operation class. Reads need at least view, content
// mutations at least edit; list deletion demands exactly Owner and is
// checked separately.
const (
	readFloor   = PermissionView
	mutateFloor = PermissionEdit
)

// AtLeast reports whether the permission meets the given floor.
func (p Permission) AtLeast(floor Permission) bool {
	return p >= floor
}

// String returns the wire tag for the permission.
func (p Permission) String() string {
	switch p {
	case PermissionView:
		return "view"
	case PermissionEdit:
		return "edit"
	case PermissionOwner:
		return "owner"
	default:
		return "none"
	}
}

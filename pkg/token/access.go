package token

// AccessLevel is the numeric role carried in the access_level claim.
// Lower values carry more privilege.
type AccessLevel int

const (
	LevelUnknown AccessLevel = -1
	LevelRoot    AccessLevel = 0
	LevelAdmin   AccessLevel = 1
	LevelEditor  AccessLevel = 2
	LevelViewer  AccessLevel = 3
)

// String returns the display name of the access level.
func (l AccessLevel) String() string {
	switch l {
	case LevelRoot:
		return "Root"
	case LevelAdmin:
		return "Admin"
	case LevelEditor:
		return "Editor"
	case LevelViewer:
		return "Viewer"
	default:
		return "Unknown Access Level"
	}
}

// AtLeast reports whether l grants at least the privileges of min.
func (l AccessLevel) AtLeast(min AccessLevel) bool {
	if l == LevelUnknown {
		return false
	}
	return l <= min
}

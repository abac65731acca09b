package diag

import "fmt"

type Code uint16

const (
	UnknownCode Code = 0

	// Manifest structure (MAN1xxx)
	ManInfo           Code = 1000
	ManNotFound       Code = 1001
	ManBadTOML        Code = 1002
	ManMissingSection Code = 1003
	ManMissingKey     Code = 1004
	ManBadIdent       Code = 1005
	ManNoGlobals      Code = 1006

	// Declarations (DEC2xxx)
	DeclInfo            Code = 2000
	DeclBadName         Code = 2001
	DeclNameNotExported Code = 2002
	DeclDuplicateName   Code = 2003
	DeclBadScope        Code = 2004
	DeclMissingType     Code = 2005
	DeclBadImportPath   Code = 2006

	// Role selection (ROL3xxx)
	RoleInfo     Code = 3000
	RoleConflict Code = 3001
	RoleUnknown  Code = 3002

	// Generation (GEN4xxx)
	GenInfo         Code = 4000
	GenFormatFailed Code = 4001
	GenWriteFailed  Code = 4002
)

func (c Code) area() string {
	switch {
	case c >= 1000 && c < 2000:
		return "MAN"
	case c >= 2000 && c < 3000:
		return "DEC"
	case c >= 3000 && c < 4000:
		return "ROL"
	case c >= 4000 && c < 5000:
		return "GEN"
	}
	return "UNK"
}

// ID returns the stable user-facing identifier, e.g. "DEC2003".
func (c Code) ID() string {
	return fmt.Sprintf("%s%04d", c.area(), uint16(c))
}

func (c Code) String() string { return c.ID() }

package rt

import "unsafe"

// sharedObjectMarker exists only so its cell has an address. The initializer
// is deliberately not a compile-time constant: the marker must get one
// physical instance per loaded copy of this package, never merged with
// another module's copy — the one piece of static data we do NOT want
// deduplicated. The cell is never freed; its only job is to be an address.
var sharedObjectMarker = new(uint64)

// SharedObjectID returns a value that is stable for the lifetime of this
// loaded module instance and differs between instances, even when every
// other byte of their static data is identical.
func SharedObjectID() uint64 {
	return uint64(uintptr(unsafe.Pointer(sharedObjectMarker)))
}

// roleTag is "N", "E" or "I" depending on the role this module was generated
// with. Generated exporting/importing code overwrites it at package init;
// after init it is read-only.
var roleTag = "N"

// SetRoleTag records the generated role of this module for trace output.
func SetRoleTag(tag string) {
	switch tag {
	case "N", "E", "I":
		roleTag = tag
	default:
		panic("solo: invalid role tag " + tag)
	}
}

// RoleTag reports the generated role of this module: "N" (local), "E"
// (exporting) or "I" (importing).
func RoleTag() string { return roleTag }

//go:build !debug_slotalloc

package slotalloc

// DebugEnabled reports whether the module was built with the debug_slotalloc build tag
const DebugEnabled bool = false

// DebugValidate will call Validate on the provided object and panics if any errors are returned. This
// method no-ops unless the debug_slotalloc build tag is present
func DebugValidate(validatable Validatable) {
}

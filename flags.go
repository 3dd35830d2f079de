package slotalloc

import "github.com/vkngwrapper/core/v2/common"

// CreateFlags indicate specific allocator behaviors to activate or deactivate
type CreateFlags int32

var createFlagsMapping = common.NewFlagStringMapping[CreateFlags]()

func (f CreateFlags) Register(str string) {
	createFlagsMapping.Register(f, str)
}
func (f CreateFlags) String() string {
	return createFlagsMapping.FlagsToString(f)
}

const (
	// CreateFixedCapacity prevents the allocator from ever growing its backing store. Once every slot
	// is occupied, allocation fails with StorageExhaustedError until something is deallocated.
	CreateFixedCapacity CreateFlags = 1 << iota
	// CreateRetainFreedValues skips clearing a slot's value when it is deallocated. This saves a write
	// per deallocation for value types, but any pointers held by the freed value stay reachable until
	// the slot is reused.
	CreateRetainFreedValues
)

func init() {
	CreateFixedCapacity.Register("CreateFixedCapacity")
	CreateRetainFreedValues.Register("CreateRetainFreedValues")
}

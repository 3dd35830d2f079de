package store

import (
	"fmt"

	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
)

// StoreJsonData populates a json object with summary information about this store
func (s *Store[T]) StoreJsonData(json *jwriter.ObjectState) {
	json.Name("Capacity").Int(len(s.slots))
	json.Name("Used").Int(s.used)
	json.Name("Free").Int(len(s.slots) - s.used)
	if s.freeHead == noSlot {
		json.Name("FreeHead").Null()
	} else {
		json.Name("FreeHead").Int(s.freeHead)
	}
}

// PrintSlots writes one object per slot into a "Slots" array of the provided json object. Occupied
// slots are described by describe, or with %+v if describe is nil.
func (s *Store[T]) PrintSlots(json *jwriter.ObjectState, describe func(value *T) string) {
	arrayState := json.Name("Slots").Array()
	defer arrayState.End()

	for i := 0; i < len(s.slots); i++ {
		sl := &s.slots[i]

		obj := arrayState.Object()
		obj.Name("Index").Int(i)

		if sl.occupied {
			obj.Name("Type").String("Occupied")
			obj.Name("Generation").Int(int(sl.generation))
			if describe != nil {
				obj.Name("Value").String(describe(&sl.value))
			} else {
				obj.Name("Value").String(fmt.Sprintf("%+v", sl.value))
			}
		} else {
			obj.Name("Type").String("Free")
			if sl.next == noSlot {
				obj.Name("NextFree").Null()
			} else {
				obj.Name("NextFree").Int(sl.next)
			}
		}

		obj.End()
	}
}

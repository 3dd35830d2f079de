package slotalloc

import "math"

// Statistics contains basic slot counts for one or more stores
type Statistics struct {
	StoreCount int
	SlotCount  int
	UsedCount  int
	GrowCount  int
}

func (s *Statistics) Clear() {
	s.StoreCount = 0
	s.SlotCount = 0
	s.UsedCount = 0
	s.GrowCount = 0
}

func (s *Statistics) AddStatistics(other *Statistics) {
	s.StoreCount += other.StoreCount
	s.SlotCount += other.SlotCount
	s.UsedCount += other.UsedCount
	s.GrowCount += other.GrowCount
}

// FreeCount is the number of slots that are available for allocation without growing
func (s *Statistics) FreeCount() int {
	return s.SlotCount - s.UsedCount
}

// DetailedStatistics extends Statistics with the shape of free runs (maximal ranges of adjacent free
// slots) and, for linked-list allocators, the lengths of live chains
type DetailedStatistics struct {
	Statistics
	FreeRunCount   int
	FreeRunSizeMin int
	FreeRunSizeMax int
	ChainCount     int
	ChainLengthMin int
	ChainLengthMax int
}

func (s *DetailedStatistics) Clear() {
	s.Statistics.Clear()
	s.FreeRunCount = 0
	s.FreeRunSizeMin = math.MaxInt
	s.FreeRunSizeMax = 0
	s.ChainCount = 0
	s.ChainLengthMin = math.MaxInt
	s.ChainLengthMax = 0
}

func (s *DetailedStatistics) AddFreeRun(size int) {
	s.FreeRunCount++

	if size < s.FreeRunSizeMin {
		s.FreeRunSizeMin = size
	}

	if size > s.FreeRunSizeMax {
		s.FreeRunSizeMax = size
	}
}

func (s *DetailedStatistics) AddChain(length int) {
	s.ChainCount++

	if length < s.ChainLengthMin {
		s.ChainLengthMin = length
	}

	if length > s.ChainLengthMax {
		s.ChainLengthMax = length
	}
}

func (s *DetailedStatistics) AddDetailedStatistics(other *DetailedStatistics) {
	s.Statistics.AddStatistics(&other.Statistics)
	s.FreeRunCount += other.FreeRunCount
	s.ChainCount += other.ChainCount

	if other.FreeRunSizeMin < s.FreeRunSizeMin {
		s.FreeRunSizeMin = other.FreeRunSizeMin
	}

	if other.FreeRunSizeMax > s.FreeRunSizeMax {
		s.FreeRunSizeMax = other.FreeRunSizeMax
	}

	if other.ChainLengthMin < s.ChainLengthMin {
		s.ChainLengthMin = other.ChainLengthMin
	}

	if other.ChainLengthMax > s.ChainLengthMax {
		s.ChainLengthMax = other.ChainLengthMax
	}
}

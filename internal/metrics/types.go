package metrics

// ByteCounters holds the cumulative byte counters of one interface.
type ByteCounters struct {
	RxBytes uint64
	TxBytes uint64
}

// RateSample is the throughput of one interface over one sampling window.
type RateSample struct {
	RxBytesPerSec uint64
	TxBytesPerSec uint64
}

func (s RateSample) IsZero() bool {
	return s.RxBytesPerSec == 0 && s.TxBytesPerSec == 0
}

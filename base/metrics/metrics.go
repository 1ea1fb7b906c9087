package metrics

const (
	SpinlockAcquisitionsH = "The total number of spinlock acquisitions"
	SpinlockAcquisitionsN = "rvlock_spinlock_acquisitions"
	SpinlockRetriesH      = "The total number of failed conditional stores while acquiring a spinlock"
	SpinlockRetriesN      = "rvlock_spinlock_retries"

	CritSecEntriesH = "The total number of critical section entries"
	CritSecEntriesN = "rvlock_critsec_entries"
	CritSecCounterH = "The shared counter value last written inside a critical section"
	CritSecCounterN = "rvlock_critsec_counter"
)

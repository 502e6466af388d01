package internal

import "time"

// recordKey identifies a payment for duplicate detection.
// Absent amount and date take part in equality like any other value.
type recordKey struct {
	hasAmount bool
	amount    int
	recipient string
	hasDate   bool
	date      int64
}

func keyOf(rec ExpenseRecord) recordKey {
	k := recordKey{recipient: rec.Recipient}
	if rec.Amount != nil {
		k.hasAmount = true
		k.amount = *rec.Amount
	}
	if rec.Date != nil {
		k.hasDate = true
		k.date = rec.Date.UnixNano()
	}
	return k
}

// BatchState is what the detector remembers about earlier records of one batch.
// It must be shared by every record of the batch and discarded afterwards.
type BatchState struct {
	seenKeys            map[recordKey]struct{}
	recipientTimestamps map[string][]time.Time
}

// NewBatchState returns an empty state for a new batch
func NewBatchState() *BatchState {
	return &BatchState{
		seenKeys:            make(map[recordKey]struct{}),
		recipientTimestamps: make(map[string][]time.Time),
	}
}

// Seen reports whether an identical (amount, recipient, date) triple was recorded
func (s *BatchState) Seen(rec ExpenseRecord) bool {
	_, ok := s.seenKeys[keyOf(rec)]
	return ok
}

// Timestamps returns every timestamp recorded so far for the recipient, oldest first
func (s *BatchState) Timestamps(recipient string) []time.Time {
	return s.recipientTimestamps[recipient]
}

// record stores the record's key and, when both are known, its recipient timestamp.
func (s *BatchState) record(rec ExpenseRecord) {
	s.seenKeys[keyOf(rec)] = struct{}{}
	if rec.Recipient != "" && rec.Date != nil {
		s.recipientTimestamps[rec.Recipient] = append(s.recipientTimestamps[rec.Recipient], *rec.Date)
	}
}

// DetectAnomalies returns the flags for rec, judged against the records
// previously seen in state, and then records rec in state.
func DetectAnomalies(rec ExpenseRecord, state *BatchState, rules AnomalyRules) []Flag {
	rules = rules.withDefaults()
	var flags []Flag

	if state.Seen(rec) {
		flags = append(flags, FlagDuplicate)
	}
	if rec.Amount == nil || rec.Date == nil {
		flags = append(flags, FlagMissingData)
	}
	if IsHighAmount(rec.Amount, rules) {
		flags = append(flags, FlagHighAmount)
	}
	if IsUnusualTime(rec.Date, rules) {
		flags = append(flags, FlagUnusualTime)
	}
	if rec.Recipient != "" && rec.Date != nil && HasRecentPayment(state.Timestamps(rec.Recipient), *rec.Date, rules.FrequencyWindow) {
		flags = append(flags, FlagHighFrequency)
	}

	state.record(rec)
	return flags
}

// IsHighAmount checks for round amounts (multiples of HighAmountMultiple) or
// amounts above HighAmountLimit.
func IsHighAmount(amount *int, rules AnomalyRules) bool {
	if amount == nil {
		return false
	}
	return *amount%rules.HighAmountMultiple == 0 || *amount > rules.HighAmountLimit
}

// IsUnusualTime checks whether the hour falls outside [EarliestHour, LatestHour].
func IsUnusualTime(date *time.Time, rules AnomalyRules) bool {
	if date == nil {
		return false
	}
	hour := date.Hour()
	return hour < *rules.EarliestHour || hour > *rules.LatestHour
}

// HasRecentPayment checks if any earlier timestamp is strictly closer than window to t.
// The full history is compared, not just the latest payment.
func HasRecentPayment(history []time.Time, t time.Time, window time.Duration) bool {
	for _, prev := range history {
		diff := t.Sub(prev)
		if diff < 0 {
			diff = -diff
		}
		if diff < window {
			return true
		}
	}
	return false
}

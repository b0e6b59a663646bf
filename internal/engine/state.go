package engine

// noAlarm marks an alarm timestamp that has never been set.
const noAlarm = -1.0

// Params are the temporal thresholds of the state machine.
type Params struct {
	DebounceFrames       int
	CooldownSeconds      float64
	WarningLoiterSeconds float64
}

// DefaultParams returns the stock thresholds: 10 frames, 5 s, 5 s.
func DefaultParams() Params {
	return Params{DebounceFrames: 10, CooldownSeconds: 5.0, WarningLoiterSeconds: 5.0}
}

// ObjectState is the per-object memory carried across frames of one run.
type ObjectState struct {
	InCore             bool
	CoreConsecutive    int
	LastCoreAlarmTS    float64
	WarningEnterTS     *float64
	WarningLastSeenTS  *float64
	WarningTriggered   bool
	LastWarningAlarmTS float64
}

func newObjectState() *ObjectState {
	return &ObjectState{LastCoreAlarmTS: noAlarm, LastWarningAlarmTS: noAlarm}
}

// cooldownElapsed treats a negative last timestamp as "no alarm yet".
func cooldownElapsed(last, ts, cooldown float64) bool {
	return last < 0 || ts-last >= cooldown
}

// stepCore advances the debounce counter and reports whether a CRITICAL
// alarm should be emitted at ts.
func (s *ObjectState) stepCore(inCoreNow bool, ts float64, p Params) bool {
	if inCoreNow {
		s.CoreConsecutive++
	} else if s.CoreConsecutive > 0 {
		s.CoreConsecutive--
	}

	switch {
	case !s.InCore && inCoreNow && s.CoreConsecutive >= p.DebounceFrames:
		s.InCore = true
		if cooldownElapsed(s.LastCoreAlarmTS, ts, p.CooldownSeconds) {
			s.LastCoreAlarmTS = ts
			return true
		}
	case s.InCore && !inCoreNow:
		s.InCore = false
	}
	return false
}

// stepWarning advances the dwell clock and reports whether a WARNING alarm
// should be emitted at ts. Presence in a core zone resets the dwell.
func (s *ObjectState) stepWarning(inWarningNow, inCoreNow bool, ts float64, p Params) bool {
	if !inWarningNow || inCoreNow {
		s.WarningEnterTS = nil
		s.WarningLastSeenTS = nil
		s.WarningTriggered = false
		return false
	}

	if s.WarningEnterTS == nil {
		enter := ts
		s.WarningEnterTS = &enter
		s.WarningTriggered = false
	}
	seen := ts
	s.WarningLastSeenTS = &seen

	if s.WarningTriggered || ts-*s.WarningEnterTS < p.WarningLoiterSeconds {
		return false
	}
	s.WarningTriggered = true
	if cooldownElapsed(s.LastWarningAlarmTS, ts, p.CooldownSeconds) {
		s.LastWarningAlarmTS = ts
		return true
	}
	return false
}

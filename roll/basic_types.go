package roll

import "strconv"

type (
	// Enabler is implemented by the data behind an Action or a Bool that is
	// not always available, so that the UI can gray it out.
	Enabler interface {
		Enabled() bool
	}

	// Action is something the user can do, e.g. press a button. Do does
	// nothing when the action is not enabled.
	Action struct {
		doer Doer
	}

	Doer interface {
		Do()
	}

	// Bool is an on/off setting of the session, e.g. the metronome.
	Bool struct {
		value BoolValue
	}

	BoolValue interface {
		Value() bool
		SetValue(bool)
	}

	// Int is an integer setting of the session, e.g. BPM. Values are clamped
	// into Range and the underlying IntValue only sees actual changes. An
	// IntValue implementing StringOfer shows its value in other units.
	Int struct {
		value IntValue
	}

	IntValue interface {
		Value() int
		SetValue(int) (changed bool)
		Range() RangeInclusive
	}

	StringOfer interface {
		StringOf(value int) string
	}

	// RangeInclusive is the range [Min, Max] of integers.
	RangeInclusive struct{ Min, Max int }
)

// enabled reports whether v, the data behind a view, is available.
func enabled(v any) bool {
	if v == nil {
		return false
	}
	if e, ok := v.(Enabler); ok {
		return e.Enabled()
	}
	return true
}

func MakeAction(doer Doer) Action { return Action{doer: doer} }

func (a Action) Enabled() bool { return enabled(a.doer) }

func (a Action) Do() {
	if a.Enabled() {
		a.doer.Do()
	}
}

func MakeBool(value BoolValue) Bool { return Bool{value: value} }

func (v Bool) Enabled() bool { return enabled(v.value) }
func (v Bool) Toggle()       { v.SetValue(!v.Value()) }

func (v Bool) Value() bool { return v.value != nil && v.value.Value() }

func (v Bool) SetValue(value bool) (changed bool) {
	if !v.Enabled() || v.Value() == value {
		return false
	}
	v.value.SetValue(value)
	return true
}

func MakeInt(value IntValue) Int { return Int{value} }

func (v Int) Value() int {
	if v.value == nil {
		return 0
	}
	return v.value.Value()
}

func (v Int) Range() RangeInclusive {
	if v.value == nil {
		return RangeInclusive{}
	}
	return v.value.Range()
}

func (v Int) SetValue(value int) (changed bool) {
	if v.value == nil {
		return false
	}
	if value = v.Range().Clamp(value); value == v.Value() {
		return false
	}
	return v.value.SetValue(value)
}

func (v Int) String() string { return v.StringOf(v.Value()) }

// StringOf formats value the way the setting shows it.
func (v Int) StringOf(value int) string {
	if s, ok := v.value.(StringOfer); ok {
		return s.StringOf(value)
	}
	return strconv.Itoa(value)
}

func (r RangeInclusive) Clamp(value int) int { return max(min(value, r.Max), r.Min) }

package roll

import (
	"fmt"

	"github.com/motifvae/motif/config"
)

type (
	bpmInt        Model
	barsInt       Model
	resolutionInt Model
	strengthInt   Model
	candidatesInt Model
	keepInt       Model
)

func (m *Model) BPM() Int        { return MakeInt((*bpmInt)(m)) }
func (m *Model) Bars() Int       { return MakeInt((*barsInt)(m)) }
func (m *Model) Resolution() Int { return MakeInt((*resolutionInt)(m)) }

// Strength is the standard deviation of the latent noise in hundredths.
func (m *Model) Strength() Int   { return MakeInt((*strengthInt)(m)) }
func (m *Model) Candidates() Int { return MakeInt((*candidatesInt)(m)) }
func (m *Model) Keep() Int       { return MakeInt((*keepInt)(m)) }

// BPM

func (v *bpmInt) Value() int            { return v.bpm }
func (v *bpmInt) Range() RangeInclusive { return RangeInclusive{1, config.MaxBPM} }
func (v *bpmInt) SetValue(value int) bool {
	v.bpm = value
	(*Model)(v).edited()
	return true
}

// Bars

func (v *barsInt) Value() int            { return v.bars }
func (v *barsInt) Range() RangeInclusive { return RangeInclusive{1, config.MaxBars} }
func (v *barsInt) SetValue(value int) bool {
	v.bars = value
	(*Model)(v).edited()
	return true
}

// Resolution

func (v *resolutionInt) Value() int            { return v.resolution }
func (v *resolutionInt) Range() RangeInclusive { return RangeInclusive{1, config.MaxResolution} }
func (v *resolutionInt) SetValue(value int) bool {
	v.resolution = value
	(*Model)(v).edited()
	return true
}
func (v *resolutionInt) StringOf(value int) string { return fmt.Sprintf("1/%d", value*4) }

// Strength

func (v *strengthInt) Value() int            { return v.strength }
func (v *strengthInt) Range() RangeInclusive { return RangeInclusive{0, config.MaxStrength * 100} }
func (v *strengthInt) SetValue(value int) bool {
	v.strength = value
	return true
}
func (v *strengthInt) StringOf(value int) string { return fmt.Sprintf("%.2f", float64(value)/100) }

// Candidates

func (v *candidatesInt) Value() int            { return v.candidates }
func (v *candidatesInt) Range() RangeInclusive { return RangeInclusive{1, config.MaxCandidates} }
func (v *candidatesInt) SetValue(value int) bool {
	v.candidates = value
	v.keep = min(v.keep, value)
	return true
}

// Keep

func (v *keepInt) Value() int            { return v.keep }
func (v *keepInt) Range() RangeInclusive { return RangeInclusive{1, v.candidates} }
func (v *keepInt) SetValue(value int) bool {
	v.keep = value
	return true
}

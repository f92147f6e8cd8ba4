package audio

import (
	"math"
	"time"

	"github.com/julianstephens/alarmist/internal/constants"
)

// Sine renders a constant-amplitude sine wave.
func Sine(freqHz float64, d time.Duration, amplitude float64, sampleRate int) []int16 {
	n := int(d.Seconds() * float64(sampleRate))
	out := make([]int16, n)
	for i := range out {
		v := amplitude * math.Sin(2*math.Pi*freqHz*float64(i)/float64(sampleRate))
		out[i] = int16(v * math.MaxInt16)
	}
	return out
}

// AlarmTone is the pre-rendered 800 Hz beep replayed by the tone layer.
func AlarmTone() []int16 {
	return Sine(constants.ToneFrequencyHz, constants.ToneDuration, constants.ToneAmplitude, constants.ToneSampleRate)
}

// PulseGain is the oscillator envelope at offset t into a pulse: gain falls
// linearly from full to silent over the first 100 ms, climbs back over the
// next 100 ms, then holds.
func PulseGain(t time.Duration) float64 {
	const (
		fall = 100 * time.Millisecond
		rise = 200 * time.Millisecond
	)
	switch {
	case t < 0:
		return constants.OscillatorGain
	case t < fall:
		return constants.OscillatorGain * (1 - float64(t)/float64(fall))
	case t < rise:
		return constants.OscillatorGain * float64(t-fall) / float64(rise-fall)
	default:
		return constants.OscillatorGain
	}
}

// OscillatorPulse renders one pulse period of the oscillator layer at freqHz.
// Phase is continuous from startSample so consecutive pulses join cleanly.
func OscillatorPulse(freqHz float64, startSample int, sampleRate int) []int16 {
	n := int(constants.OscillatorPulsePeriod.Seconds() * float64(sampleRate))
	out := make([]int16, n)
	for i := range out {
		t := time.Duration(float64(i) / float64(sampleRate) * float64(time.Second))
		phase := 2 * math.Pi * freqHz * float64(startSample+i) / float64(sampleRate)
		out[i] = int16(PulseGain(t) * math.Sin(phase) * math.MaxInt16)
	}
	return out
}

// OscillatorFrequency is the oscillator pitch for the given pulse index: the
// first pulse sounds at the high pitch, the rest at the low pitch.
func OscillatorFrequency(pulse int) float64 {
	if pulse == 0 {
		return constants.OscillatorHighHz
	}
	return constants.OscillatorLowHz
}

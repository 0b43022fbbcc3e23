package hangar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultCalculator(t *testing.T) Calculator {
	calc, err := NewCalculator(DefaultConfig())
	require.NoError(t, err)
	return calc
}

// Time at the given offset into cycle 0
func at(offset time.Duration) time.Time {
	return InitialOpenTime.Add(offset)
}

func TestCycleStart(t *testing.T) {

	calc := defaultCalculator(t)
	state := calc.StateAt(at(0))

	assert.Equal(t, Online, state.Status)
	assert.Equal(t, [5]Color{Green, Green, Green, Green, Green}, state.Lights)
	assert.Equal(t, at(OpenDuration), state.NextStatusChange)
	assert.Equal(t, at(12*time.Minute+time.Second), state.NextLightChange)
}

func TestStatusFlipsAtOpenDuration(t *testing.T) {

	calc := defaultCalculator(t)

	before := calc.StateAt(at(OpenDuration - time.Millisecond))
	assert.Equal(t, Online, before.Status)

	after := calc.StateAt(at(OpenDuration))
	assert.Equal(t, Offline, after.Status)
	assert.Equal(t, at(calc.Cycle()), after.NextStatusChange)
	// 65.006 minutes into the cycle sits in the all red window
	assert.Equal(t, [5]Color{Red, Red, Red, Red, Red}, after.Lights)
}

func TestOfflineLightProgression(t *testing.T) {

	calc := defaultCalculator(t)

	state := calc.StateAt(at(90 * time.Minute))
	assert.Equal(t, Offline, state.Status)
	assert.Equal(t, [5]Color{Green, Red, Red, Red, Red}, state.Lights)
	assert.Equal(t, at(113*time.Minute+time.Second), state.NextLightChange)
}

func TestFallbackUsesLastThreshold(t *testing.T) {

	calc := defaultCalculator(t)

	// The table ends at 185 minutes while the cycle lasts slightly longer,
	// so this offset falls in the gap past the last threshold
	offset := 185*time.Minute + 500*time.Millisecond
	require.Less(t, offset, calc.Cycle())

	state := calc.StateAt(at(offset))
	assert.Equal(t, [5]Color{Green, Green, Green, Green, Red}, state.Lights)
	assert.Equal(t, at(calc.Cycle()+time.Second), state.NextLightChange)
}

func TestCoverage(t *testing.T) {

	calc := defaultCalculator(t)

	// Every position in the cycle matches exactly one threshold,
	// except the documented gap at the very end
	gapStart := Thresholds[len(Thresholds)-1].Max
	for offset := time.Duration(0); offset < calc.Cycle(); offset += 30 * time.Second {
		matches := 0
		for _, threshold := range Thresholds {
			if offset >= threshold.Min && offset < threshold.Max {
				matches++
			}
		}
		if offset < gapStart {
			assert.Equal(t, 1, matches, "offset %v", offset)
		} else {
			assert.Equal(t, 0, matches, "offset %v", offset)
		}
	}
}

func TestPeriodicity(t *testing.T) {

	calc := defaultCalculator(t)

	for _, offset := range []time.Duration{0, 30 * time.Minute, OpenDuration, 100 * time.Minute, 185 * time.Minute} {
		now := at(offset)
		state := calc.StateAt(now)
		next := calc.StateAt(now.Add(calc.Cycle()))

		assert.Equal(t, state.Status, next.Status)
		assert.Equal(t, state.Lights, next.Lights)
		assert.Equal(t, state.NextStatusChange.Add(calc.Cycle()), next.NextStatusChange)
		assert.Equal(t, state.NextLightChange.Add(calc.Cycle()), next.NextLightChange)
	}
}

func TestTimeBeforeInitialOpenTime(t *testing.T) {

	calc := defaultCalculator(t)

	// Clock skew normalizes through the modulo instead of failing
	early := InitialOpenTime.Add(-10 * time.Minute)
	assert.Equal(t, calc.Cycle()-10*time.Minute, calc.TimeInCycle(early))

	state := calc.StateAt(early)
	same := calc.StateAt(early.Add(calc.Cycle()))
	assert.Equal(t, same.Status, state.Status)
	assert.Equal(t, same.Lights, state.Lights)
}

func TestIdempotence(t *testing.T) {

	calc := defaultCalculator(t)

	now := at(42 * time.Minute)
	assert.Equal(t, calc.StateAt(now), calc.StateAt(now))
}

func TestConfigValidation(t *testing.T) {

	base := DefaultConfig()

	config := base
	config.Thresholds = nil
	_, err := NewCalculator(config)
	assert.Error(t, err)

	config = base
	config.Thresholds = []Threshold{{5 * time.Minute, 10 * time.Minute, [5]Color{}}}
	_, err = NewCalculator(config)
	assert.Error(t, err)

	config = base
	config.Thresholds = []Threshold{
		{0, 10 * time.Minute, [5]Color{}},
		{12 * time.Minute, 20 * time.Minute, [5]Color{}},
	}
	_, err = NewCalculator(config)
	assert.Error(t, err)

	config = base
	config.Thresholds = []Threshold{{0, 200 * time.Minute, [5]Color{}}}
	_, err = NewCalculator(config)
	assert.Error(t, err)

	config = base
	config.OpenDuration = 0
	_, err = NewCalculator(config)
	assert.Error(t, err)
}

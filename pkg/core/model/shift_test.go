package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseShift(t *testing.T) {
	assert.Equal(t, ShiftAM, ParseShift("AM"))
	assert.Equal(t, ShiftAM, ParseShift(" am "))
	assert.Equal(t, ShiftSD, ParseShift("sd"))
	assert.Equal(t, ShiftNone, ParseShift("N/D"))
	assert.Equal(t, ShiftNone, ParseShift(""))
	assert.Equal(t, ShiftNone, ParseShift("AM+SD"))
}

func TestShiftDisplay(t *testing.T) {
	assert.Equal(t, "AM", ShiftAM.Display())
	assert.Equal(t, "N/D", ShiftNone.Display())
}

func TestShiftUnmarshalText(t *testing.T) {
	var s Shift
	assert.NoError(t, s.UnmarshalText([]byte("N/D")))
	assert.Equal(t, ShiftNone, s)

	assert.NoError(t, s.UnmarshalText([]byte("sd")))
	assert.Equal(t, ShiftSD, s)
}

func TestCanonicalID(t *testing.T) {
	assert.Equal(t, "1414170", CanonicalID("1414170.0"))
	assert.Equal(t, "1414170", CanonicalID(" 1414170 "))
	assert.Equal(t, "77", CanonicalID("77.00"))
	assert.Equal(t, "10.5", CanonicalID("10.5"))
	assert.Equal(t, "T1", CanonicalID("T1"))
	assert.Equal(t, "", CanonicalID(""))
}

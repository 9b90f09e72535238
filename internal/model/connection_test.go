package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePin(t *testing.T) {
	p, err := ParsePin(3)
	require.NoError(t, err)
	assert.Equal(t, NumberPin(3), p)

	p, err = ParsePin(" 7 ")
	require.NoError(t, err)
	assert.Equal(t, NumberPin(7), p)

	p, err = ParsePin("GND")
	require.NoError(t, err)
	assert.Equal(t, Pin{Label: "GND"}, p)
	assert.False(t, p.IsNumber())

	_, err = ParsePin(0)
	assert.Error(t, err)
	_, err = ParsePin("")
	assert.Error(t, err)
	_, err = ParsePin(1.5)
	assert.Error(t, err)
}

func TestPinLess(t *testing.T) {
	assert.True(t, NumberPin(2).Less(NumberPin(10)))
	assert.True(t, NumberPin(10).Less(Pin{Label: "A"}))
	assert.False(t, Pin{Label: "B"}.Less(Pin{Label: "A"}))
}

func TestNewConnection(t *testing.T) {
	c, err := NewConnection(Connection{
		FromConnector: "J1", FromPin: NumberPin(1),
		Cable: "W1", Core: 0,
		ToConnector: "J2", ToPin: NumberPin(1),
	})
	require.NoError(t, err)
	assert.Equal(t, "J1:1 -> [W1:0] -> J2:1", c.String())

	_, err = NewConnection(Connection{FromConnector: "J1", Cable: "W1", Core: -1, ToConnector: "J2", ToPin: NumberPin(1)})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Len(t, ve.Problems, 2)
}

func TestNewSpliceConnection(t *testing.T) {
	_, err := NewSpliceConnection(SpliceConnection{ID: "S1"})
	assert.ErrorIs(t, err, ErrValidation)

	s, err := NewSpliceConnection(SpliceConnection{
		ID:       "S1",
		Incoming: []Connection{{FromConnector: "J1", FromPin: NumberPin(1), Cable: "W1", ToConnector: "SP1", ToPin: NumberPin(1)}},
	})
	require.NoError(t, err)
	assert.Equal(t, "S1", s.ID)
}

func TestConnectionGroupFilters(t *testing.T) {
	g := ConnectionGroup{Name: "CAN", Connections: []Connection{
		{FromConnector: "J1", FromPin: NumberPin(1), Cable: "W1", Core: 0, ToConnector: "J2", ToPin: NumberPin(1)},
		{FromConnector: "J2", FromPin: NumberPin(2), Cable: "W2", Core: 0, ToConnector: "J3", ToPin: NumberPin(1)},
	}}

	assert.Len(t, g.ForConnector("J2"), 2)
	assert.Len(t, g.ForConnector("J1"), 1)
	assert.Empty(t, g.ForConnector("J9"))
	require.Len(t, g.ForCable("W2"), 1)
	assert.Equal(t, "J3", g.ForCable("W2")[0].ToConnector)
}

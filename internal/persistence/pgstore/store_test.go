package pgstore

import (
	"testing"

	"github.com/stretchr/testify/require"

	"gridrealm.ai/internal/persistence/save"
)

func TestRowConversion(t *testing.T) {
	in := save.SaveV3{
		Header: save.Header{Slot: "main", Tick: 9},
		Team:   save.TeamV1{Gold: 5, Inventory: map[string]int{"log": 1}},
		Characters: []save.CharacterV3{
			{ID: "C1", Zone: [2]int{0, 0}, Pos: [2]int{1, 1}, HP: 30},
		},
	}
	row, err := toRow(in)
	require.NoError(t, err)
	require.Equal(t, "main", row.Slot)
	require.Equal(t, save.CurrentVersion, row.Version)

	out, err := fromRow(row)
	require.NoError(t, err)
	require.Equal(t, "main", out.Header.Slot)
	require.Equal(t, int64(5), out.Team.Gold)
	require.Equal(t, 1, out.Team.Inventory["log"])
	require.Equal(t, [2]int{1, 1}, out.Characters[0].Pos)
}

func TestRowConversion_RequiresSlot(t *testing.T) {
	_, err := toRow(save.SaveV3{})
	require.Error(t, err)
}

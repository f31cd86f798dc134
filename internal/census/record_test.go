package census

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgress(t *testing.T) {
	cases := []struct {
		step Step
		want float64
	}{
		{0, 0},
		{StepLocation, 0},
		{StepFertility, 0.5},
		{StepAgriculture, 0.875},
		{12, 1},
	}
	for _, tc := range cases {
		assert.InDelta(t, tc.want, Progress(Record{CurrentStep: tc.step}), 1e-9, "step %d", tc.step)
	}
}

func TestParseStep(t *testing.T) {
	s, err := ParseStep("4")
	require.NoError(t, err)
	assert.Equal(t, StepAbsentees, s)
	assert.Equal(t, "Temporary Absentees", s.Title())

	_, err = ParseStep("9")
	assert.Error(t, err)
	_, err = ParseStep("four")
	assert.Error(t, err)
}

func TestRecordPayloadSlots(t *testing.T) {
	t.Run("empty slots report missing", func(t *testing.T) {
		var r Record
		for _, step := range AllSteps() {
			_, ok := r.Payload(step)
			assert.False(t, ok, "step %d", step)
		}
	})

	t.Run("WithPayload fills the matching slot", func(t *testing.T) {
		r, err := Record{}.WithPayload(Disability{Sight: "No"})
		require.NoError(t, err)
		require.NotNil(t, r.Step7Data)
		assert.Equal(t, "No", r.Step7Data.Sight)

		p, ok := r.Payload(StepDisability)
		require.True(t, ok)
		assert.Equal(t, Disability{Sight: "No"}, p)
	})

	t.Run("Clone shares no rows", func(t *testing.T) {
		r, err := Record{}.WithPayload(HouseholdRoster{Members: []HouseholdMember{{ID: 1, FullName: "Ama"}}})
		require.NoError(t, err)

		c := r.Clone()
		c.Step2Data.Members[0].FullName = "Kofi"
		assert.Equal(t, "Ama", r.Step2Data.Members[0].FullName)
	})
}

func TestRecordJSON(t *testing.T) {
	raw := `{"id":"f1","currentStep":3,"status":"IN_PROGRESS","createdAt":"2024-05-01T10:00:00Z",
		"step2Data":{"members":[{"id":7,"fullName":"Ama Mensah","relationshipToHead":"HEAD","relationshipCode":"1","sex":"F"}]}}`

	var r Record
	require.NoError(t, json.Unmarshal([]byte(raw), &r))
	assert.Equal(t, StepHouseholdUnit, r.CurrentStep)
	require.NotNil(t, r.Step2Data)
	assert.Equal(t, RowID(7), r.Step2Data.Members[0].ID)
	assert.Nil(t, r.Step1Data)
}

func TestRosterRows(t *testing.T) {
	p, err := NewPayload(StepRoster)
	require.NoError(t, err)
	roster := p.(HouseholdRoster)
	require.Len(t, roster.Members, 1)
	assert.Equal(t, RelationshipHead, roster.Members[0].RelationshipToHead)

	next := RowID(0)
	ids := func() RowID { next--; return next }
	roster = roster.AssignPlaceholders(ids).(HouseholdRoster)
	assert.Equal(t, RowID(-1), roster.Members[0].ID)

	added, err := roster.AppendRow("members", ids())
	require.NoError(t, err)
	roster = added.(HouseholdRoster)
	require.Len(t, roster.Members, 2)
	assert.Equal(t, RelationshipOther, roster.Members[1].RelationshipToHead)
	assert.Equal(t, "6", roster.Members[1].RelationshipCode)

	_, err = roster.RemoveRow(roster.Members[0].ID)
	assert.ErrorIs(t, err, ErrHeadRemoval)

	removed, err := roster.RemoveRow(roster.Members[1].ID)
	require.NoError(t, err)
	assert.Len(t, removed.(HouseholdRoster).Members, 1)
	assert.Len(t, roster.Members, 2, "receiver must be untouched")

	_, err = roster.AppendRow("people", -9)
	assert.ErrorIs(t, err, ErrUnknownList)
}

func TestHouseholdUnitKeepsLastPerson(t *testing.T) {
	unit := HouseholdUnit{People: []Person{{ID: 4}}}
	_, err := unit.RemoveRow(4)
	assert.ErrorIs(t, err, ErrLastRow)

	_, err = unit.RemoveRow(5)
	assert.ErrorIs(t, err, ErrRowNotFound)
}

func TestForSubmissionClearsPlaceholders(t *testing.T) {
	ag := Agriculture{
		Crops:     []Crop{{ID: 12, Type: "Maize"}, {ID: -3, Type: "Cassava"}},
		Livestock: []Livestock{{ID: -4, Type: "Goat"}},
	}

	out := ForSubmission(ag).(Agriculture)
	assert.Equal(t, RowID(12), out.Crops[0].ID)
	assert.Equal(t, RowID(0), out.Crops[1].ID)
	assert.Equal(t, RowID(0), out.Livestock[0].ID)
	assert.Equal(t, RowID(-3), ag.Crops[1].ID)

	data, err := json.Marshal(out.Crops[1])
	require.NoError(t, err)
	assert.NotContains(t, string(data), `"id"`)
}

func TestDecodePayloadStrict(t *testing.T) {
	_, err := DecodePayload(StepDisability, []byte(`{"sight":"Yes","colour":"No"}`), true)
	assert.Error(t, err)

	p, err := DecodePayload(StepDisability, []byte(`{"sight":"Yes","colour":"No"}`), false)
	require.NoError(t, err)
	assert.Equal(t, "Yes", p.(Disability).Sight)
}

func TestNormalizeAbsentees(t *testing.T) {
	p := TemporaryAbsentees{AbsentMembers: []AbsentMember{{RelationshipToHead: RelationshipSpouse}}}
	out := p.Normalize().(TemporaryAbsentees)
	assert.Equal(t, "2", out.AbsentMembers[0].Code)
	assert.Empty(t, p.AbsentMembers[0].Code)
}

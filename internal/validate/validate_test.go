package validate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mark3labs/census/internal/census"
)

func newValidator(t *testing.T) *Validator {
	t.Helper()
	v, err := New(WithClock(func() time.Time {
		return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	}))
	require.NoError(t, err)
	return v
}

func validLocation() census.LocationInfo {
	return census.LocationInfo{
		RegionName:    "Ashanti",
		DistrictName:  "Kumasi Metro",
		LocalityName:  "Adum",
		EnumAreaCode:  "EA-0042",
		EAType:        "URBAN",
		ResidenceType: "OCCUPIED",
		InterviewDates: census.InterviewDates{
			DateStarted:   "2024-05-01",
			DateCompleted: "2024-05-02",
		},
	}
}

func TestLocation(t *testing.T) {
	v := newValidator(t)

	t.Run("valid", func(t *testing.T) {
		assert.True(t, v.Validate(validLocation()).Empty())
	})

	t.Run("whitespace-only region is missing", func(t *testing.T) {
		loc := validLocation()
		loc.RegionName = "   "
		errs := v.Validate(loc)
		assert.Equal(t, "Region Name is required", errs["regionName"])
		assert.Len(t, errs, 1)
	})

	t.Run("nested date keys", func(t *testing.T) {
		loc := validLocation()
		loc.InterviewDates.DateStarted = ""
		loc.InterviewDates.DateCompleted = "02/05/2024"
		errs := v.Validate(loc)
		assert.Equal(t, "Start Date is required", errs["interviewDates.dateStarted"])
		assert.Contains(t, errs["interviewDates.dateCompleted"], "YYYY-MM-DD")
	})

	t.Run("completion before start", func(t *testing.T) {
		loc := validLocation()
		loc.InterviewDates.DateCompleted = "2024-04-30"
		errs := v.Validate(loc)
		assert.Contains(t, errs, "interviewDates.dateCompleted")
	})

	t.Run("residence type enumeration", func(t *testing.T) {
		loc := validLocation()
		loc.ResidenceType = "ABANDONED"
		errs := v.Validate(loc)
		assert.Equal(t, "Residence Type must be one of: OCCUPIED, VACANT", errs["residenceType"])
	})
}

func TestRoster(t *testing.T) {
	v := newValidator(t)

	t.Run("row keys and head rule", func(t *testing.T) {
		roster := census.HouseholdRoster{Members: []census.HouseholdMember{
			{FullName: "Ama Mensah", RelationshipToHead: "CHILD", Sex: "F"},
			{FullName: "K", RelationshipToHead: "SPOUSE", Sex: "M"},
			{FullName: "Yaw", RelationshipToHead: "COUSIN", Sex: "X"},
		}}
		errs := v.Validate(roster)

		assert.Equal(t, "The first member must be the head of household", errs["members[0].relationshipToHead"])
		assert.Equal(t, "Full Name must be at least 2 characters", errs["members[1].fullName"])
		assert.Contains(t, errs, "members[2].relationshipToHead")
		assert.Contains(t, errs, "members[2].sex")
	})

	t.Run("empty roster is a general error", func(t *testing.T) {
		errs := v.Validate(census.HouseholdRoster{})
		assert.Equal(t, Errors{GeneralKey: "At least one household member is required"}, errs)
	})

	t.Run("two heads", func(t *testing.T) {
		roster := census.HouseholdRoster{Members: []census.HouseholdMember{
			{FullName: "Ama", RelationshipToHead: "HEAD", Sex: "F"},
			{FullName: "Kofi", RelationshipToHead: "HEAD", Sex: "M"},
		}}
		errs := v.Validate(roster)
		assert.Contains(t, errs, GeneralKey)
	})
}

func TestHouseholdUnit(t *testing.T) {
	v := newValidator(t)
	person := func(age string) census.Person {
		return census.Person{
			FullName:    "Ama Mensah",
			DateOfBirth: census.DateOfBirth{Day: "12", Month: "3", Year: "1990"},
			Age:         age,
			Nationality: "Ghanaian",
			Ethnicity:   "Akan",
		}
	}

	t.Run("age boundaries", func(t *testing.T) {
		for _, age := range []string{"0", "150"} {
			errs := v.Validate(census.HouseholdUnit{People: []census.Person{person(age)}})
			assert.True(t, errs.Empty(), "age %s: %v", age, errs)
		}
		for _, age := range []string{"-1", "151", "abc"} {
			errs := v.Validate(census.HouseholdUnit{People: []census.Person{person(age)}})
			assert.Equal(t, "Age must be between 0 and 150", errs["people[0].age"], "age %s", age)
		}
		errs := v.Validate(census.HouseholdUnit{People: []census.Person{person("")}})
		assert.Equal(t, "Age is required", errs["people[0].age"])
	})

	t.Run("date of birth", func(t *testing.T) {
		p := person("30")
		p.DateOfBirth.Day = "31"
		p.DateOfBirth.Month = "2"
		errs := v.Validate(census.HouseholdUnit{People: []census.Person{p}})
		assert.Contains(t, errs, "people[0].dateOfBirth")

		p.DateOfBirth = census.DateOfBirth{Day: "1", Month: "1", Year: "2025"}
		errs = v.Validate(census.HouseholdUnit{People: []census.Person{p}})
		assert.Equal(t, "Year must be between 1900 and 2024", errs["people[0].dateOfBirth"])
	})

	t.Run("options", func(t *testing.T) {
		p := person("30")
		p.Nationality = "Martian"
		errs := v.Validate(census.HouseholdUnit{People: []census.Person{p}})
		assert.Contains(t, errs, "people[0].nationality")
	})
}

func TestAbsentees(t *testing.T) {
	v := newValidator(t)
	base := census.TemporaryAbsentees{AbsentCount: "1", HasEmigrants: "Yes"}

	t.Run("year of departure bounded by the clock", func(t *testing.T) {
		p := base
		p.EmigrantMembers = []census.Emigrant{
			{FullName: "Kwame", Age: "30", YearOfDeparture: "1900"},
			{FullName: "Efua", Age: "28", YearOfDeparture: "2024"},
			{FullName: "Kojo", Age: "40", YearOfDeparture: "2025"},
			{FullName: "Abena", Age: "22", YearOfDeparture: "1899"},
		}
		errs := v.Validate(p)
		assert.NotContains(t, errs, "emigrantMembers[0].yearOfDeparture")
		assert.NotContains(t, errs, "emigrantMembers[1].yearOfDeparture")
		assert.Equal(t, "Year of Departure must be between 1900 and 2024", errs["emigrantMembers[2].yearOfDeparture"])
		assert.Contains(t, errs, "emigrantMembers[3].yearOfDeparture")
	})

	t.Run("optional fields checked only when set", func(t *testing.T) {
		p := base
		p.AbsentMembers = []census.AbsentMember{{FullName: "Kofi", Age: "20"}}
		assert.True(t, v.Validate(p).Empty())

		p.AbsentMembers[0].MonthsAbsent = "-2"
		p.AbsentMembers[0].Sex = "Q"
		errs := v.Validate(p)
		assert.Contains(t, errs, "absentMembers[0].monthsAbsent")
		assert.Contains(t, errs, "absentMembers[0].sex")
	})

	t.Run("required scalars", func(t *testing.T) {
		errs := v.Validate(census.TemporaryAbsentees{AbsentCount: "x"})
		assert.Contains(t, errs, "absentCount")
		assert.Contains(t, errs, "hasEmigrants")
	})
}

func TestFertility(t *testing.T) {
	v := newValidator(t)

	ok := census.Fertility{
		ChildrenEverBorn:  census.SexCount{Male: 2, Female: 1},
		ChildrenSurviving: census.SexCount{Male: 2, Female: 1},
	}
	assert.True(t, v.Validate(ok).Empty())

	bad := ok
	bad.ChildrenSurviving.Female = 2
	bad.ChildrenBornLast12Months.Male = -1
	errs := v.Validate(bad)
	assert.Contains(t, errs, "childrenSurviving.female")
	assert.Equal(t, "Male must be at least 0", errs["childrenBornLast12Months.male"])
}

func TestEconomicActivityDisabilityAgriculture(t *testing.T) {
	v := newValidator(t)

	errs := v.Validate(census.EconomicActivities{Activities: []census.EconomicActivity{{EstablishmentName: " "}}})
	assert.Equal(t, "Establishment Name is required", errs["activities[0].establishmentName"])
	assert.Contains(t, errs, "activities[0].employmentStatus")
	assert.Contains(t, errs, "activities[0].employmentSector")
	assert.True(t, v.Validate(census.EconomicActivities{}).Empty())

	errs = v.Validate(census.Disability{Sight: "Yes", Hearing: "Maybe"})
	assert.Len(t, errs, 5)
	assert.Equal(t, "Hearing must be one of: Yes, No", errs["hearing"])

	errs = v.Validate(census.Agriculture{
		Crops:     []census.Crop{{Type: "Maize", CropCode: "MZ", FarmSize: 0}},
		Livestock: []census.Livestock{{Type: "Goat", Code: "", Quantity: 3}},
	})
	assert.Equal(t, "Farm Size must be greater than 0", errs["crops[0].farmSize"])
	assert.Equal(t, "Code is required", errs["livestock[0].code"])
	assert.Len(t, errs, 2)
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "Region Name", label("regionName"))
	assert.Equal(t, "Phone 1", label("phone1"))
	assert.Equal(t, "EA Type", label("eaType"))
}

func TestDeterministic(t *testing.T) {
	v := newValidator(t)
	p := census.Disability{}
	assert.Equal(t, v.Validate(p), v.Validate(p))
}

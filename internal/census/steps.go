package census

import "fmt"

// Step 1.

// LocationInfo identifies where the household is.
type LocationInfo struct {
	RegionName      string         `json:"regionName" yaml:"regionName" validate:"notblank"`
	DistrictName    string         `json:"districtName" yaml:"districtName" validate:"notblank"`
	LocalityName    string         `json:"localityName" yaml:"localityName" validate:"notblank"`
	Address         string         `json:"address" yaml:"address"`
	Phone1          string         `json:"phone1" yaml:"phone1"`
	Phone2          string         `json:"phone2" yaml:"phone2"`
	EnumAreaCode    string         `json:"enumAreaCode" yaml:"enumAreaCode" validate:"notblank"`
	NHISNumber      string         `json:"nhisNumber" yaml:"nhisNumber"`
	EAType          string         `json:"eaType" yaml:"eaType" validate:"notblank"`
	LocalityCode    string         `json:"localityCode" yaml:"localityCode"`
	StructureNumber string         `json:"structureNumber" yaml:"structureNumber"`
	HouseholdNumber string         `json:"householdNumber" yaml:"householdNumber"`
	ResidenceType   string         `json:"residenceType" yaml:"residenceType" validate:"required,oneof=OCCUPIED VACANT"`
	InterviewDates  InterviewDates `json:"interviewDates" yaml:"interviewDates"`
}

// InterviewDates are YYYY-MM-DD dates.
type InterviewDates struct {
	DateStarted   string `json:"dateStarted" yaml:"dateStarted" validate:"required,datetime=2006-01-02"`
	DateCompleted string `json:"dateCompleted" yaml:"dateCompleted" validate:"required,datetime=2006-01-02"`
}

func (LocationInfo) Step() Step { return StepLocation }
func (p LocationInfo) Clone() Payload { return p }

// Step 2.

// HouseholdRoster lists the household members. Row 0 is the head.
type HouseholdRoster struct {
	Members []HouseholdMember `json:"members" yaml:"members" validate:"dive"`
}

type HouseholdMember struct {
	ID                 RowID  `json:"id,omitempty" yaml:"id,omitempty"`
	FullName           string `json:"fullName" yaml:"fullName" validate:"notblank,min=2"`
	RelationshipToHead string `json:"relationshipToHead" yaml:"relationshipToHead" validate:"required,oneof=HEAD SPOUSE CHILD PARENT SIBLING OTHER"`
	RelationshipCode   string `json:"relationshipCode" yaml:"relationshipCode"`
	Sex                string `json:"sex" yaml:"sex" validate:"required,oneof=M F"`
}

func (m HouseholdMember) RowID() RowID { return m.ID }
func (m HouseholdMember) withID(id RowID) HouseholdMember {
	m.ID = id
	return m
}

const listMembers = "members"

func (HouseholdRoster) Step() Step { return StepRoster }

func (p HouseholdRoster) Clone() Payload {
	return HouseholdRoster{Members: cloneRows(p.Members)}
}

// Normalize derives each member's relationship code.
func (p HouseholdRoster) Normalize() Payload {
	out := HouseholdRoster{Members: cloneRows(p.Members)}
	for i := range out.Members {
		out.Members[i].RelationshipCode = RelationshipCode(out.Members[i].RelationshipToHead)
	}
	return out
}

func (HouseholdRoster) RowLists() []string { return []string{listMembers} }

func (p HouseholdRoster) Rows(list string) ([]RowID, bool) {
	if list != listMembers {
		return nil, false
	}
	return rowIDs(p.Members), true
}

func (p HouseholdRoster) AppendRow(list string, id RowID) (Payload, error) {
	if list != listMembers {
		return nil, fmt.Errorf("%w: %s", ErrUnknownList, list)
	}
	out := HouseholdRoster{Members: cloneRows(p.Members)}
	out.Members = append(out.Members, HouseholdMember{
		ID:                 id,
		RelationshipToHead: RelationshipOther,
		RelationshipCode:   RelationshipCode(RelationshipOther),
		Sex:                "M",
	})
	return out, nil
}

func (p HouseholdRoster) RemoveRow(id RowID) (Payload, error) {
	i := indexOf(p.Members, id)
	switch {
	case i < 0:
		return nil, ErrRowNotFound
	case i == 0:
		return nil, ErrHeadRemoval
	}
	return HouseholdRoster{Members: removeAt(p.Members, i)}, nil
}

func (p HouseholdRoster) AssignPlaceholders(next func() RowID) Payload {
	return HouseholdRoster{Members: assignIDs(p.Members, next)}
}

func (p HouseholdRoster) ClearPlaceholders() Payload {
	return HouseholdRoster{Members: clearPlaceholders(p.Members)}
}

// Step 3.

// HouseholdUnit holds per-person demographics.
type HouseholdUnit struct {
	People []Person `json:"people" yaml:"people" validate:"dive"`
}

type Person struct {
	ID          RowID       `json:"id,omitempty" yaml:"id,omitempty"`
	FullName    string      `json:"fullName" yaml:"fullName" validate:"notblank"`
	DateOfBirth DateOfBirth `json:"dateOfBirth" yaml:"dateOfBirth"`
	Age         string      `json:"age" yaml:"age" validate:"required,age"`
	Nationality string      `json:"nationality" yaml:"nationality" validate:"required,oneof=Ghanaian Nigerian Togolese Ivorian American British"`
	Ethnicity   string      `json:"ethnicity" yaml:"ethnicity" validate:"required,oneof=Akan Ewe Ga Dagomba Hausa Yoruba"`
}

// DateOfBirth keeps the parts as entered; validation checks they form a
// real date.
type DateOfBirth struct {
	Day   string `json:"day" yaml:"day"`
	Month string `json:"month" yaml:"month"`
	Year  string `json:"year" yaml:"year"`
}

func (p Person) RowID() RowID { return p.ID }
func (p Person) withID(id RowID) Person {
	p.ID = id
	return p
}

const listPeople = "people"

func (HouseholdUnit) Step() Step { return StepHouseholdUnit }

func (p HouseholdUnit) Clone() Payload {
	return HouseholdUnit{People: cloneRows(p.People)}
}

func (HouseholdUnit) RowLists() []string { return []string{listPeople} }

func (p HouseholdUnit) Rows(list string) ([]RowID, bool) {
	if list != listPeople {
		return nil, false
	}
	return rowIDs(p.People), true
}

func (p HouseholdUnit) AppendRow(list string, id RowID) (Payload, error) {
	if list != listPeople {
		return nil, fmt.Errorf("%w: %s", ErrUnknownList, list)
	}
	out := HouseholdUnit{People: cloneRows(p.People)}
	out.People = append(out.People, Person{ID: id})
	return out, nil
}

func (p HouseholdUnit) RemoveRow(id RowID) (Payload, error) {
	i := indexOf(p.People, id)
	switch {
	case i < 0:
		return nil, ErrRowNotFound
	case len(p.People) == 1:
		return nil, ErrLastRow
	}
	return HouseholdUnit{People: removeAt(p.People, i)}, nil
}

func (p HouseholdUnit) AssignPlaceholders(next func() RowID) Payload {
	return HouseholdUnit{People: assignIDs(p.People, next)}
}

func (p HouseholdUnit) ClearPlaceholders() Payload {
	return HouseholdUnit{People: clearPlaceholders(p.People)}
}

// Step 4.

// TemporaryAbsentees records members away from the household and
// members who emigrated.
type TemporaryAbsentees struct {
	AbsentCount     string         `json:"absentCount" yaml:"absentCount" validate:"required,count"`
	HasEmigrants    string         `json:"hasEmigrants" yaml:"hasEmigrants" validate:"required,oneof=Yes No"`
	AbsentMembers   []AbsentMember `json:"absentMembers" yaml:"absentMembers" validate:"dive"`
	EmigrantMembers []Emigrant     `json:"emigrantMembers" yaml:"emigrantMembers" validate:"dive"`
}

type AbsentMember struct {
	ID                 RowID  `json:"id,omitempty" yaml:"id,omitempty"`
	FullName           string `json:"fullName" yaml:"fullName" validate:"notblank"`
	RelationshipToHead string `json:"relationshipToHead" yaml:"relationshipToHead" validate:"omitempty,oneof=HEAD SPOUSE CHILD PARENT SIBLING OTHER"`
	Code               string `json:"code" yaml:"code"`
	Sex                string `json:"sex" yaml:"sex" validate:"omitempty,oneof=M F"`
	Age                string `json:"age" yaml:"age" validate:"required,age"`
	Destination        string `json:"destination" yaml:"destination"`
	RegionCode         string `json:"regionCode" yaml:"regionCode"`
	MonthsAbsent       string `json:"monthsAbsent" yaml:"monthsAbsent" validate:"omitempty,count"`
}

type Emigrant struct {
	ID                 RowID  `json:"id,omitempty" yaml:"id,omitempty"`
	FullName           string `json:"fullName" yaml:"fullName" validate:"notblank"`
	RelationshipToHead string `json:"relationshipToHead" yaml:"relationshipToHead" validate:"omitempty,oneof=HEAD SPOUSE CHILD PARENT SIBLING OTHER"`
	Code               string `json:"code" yaml:"code"`
	Sex                string `json:"sex" yaml:"sex" validate:"omitempty,oneof=M F"`
	Age                string `json:"age" yaml:"age" validate:"required,age"`
	CountryName        string `json:"countryName" yaml:"countryName"`
	CountryCode        string `json:"countryCode" yaml:"countryCode"`
	YearOfDeparture    string `json:"yearOfDeparture" yaml:"yearOfDeparture" validate:"omitempty,pastyear"`
	ActivityCode       string `json:"activityCode" yaml:"activityCode"`
	OtherActivity      string `json:"otherActivity" yaml:"otherActivity"`
}

func (m AbsentMember) RowID() RowID { return m.ID }
func (m AbsentMember) withID(id RowID) AbsentMember {
	m.ID = id
	return m
}
func (m Emigrant) RowID() RowID { return m.ID }
func (m Emigrant) withID(id RowID) Emigrant {
	m.ID = id
	return m
}

const (
	listAbsentMembers   = "absentMembers"
	listEmigrantMembers = "emigrantMembers"
)

func (TemporaryAbsentees) Step() Step { return StepAbsentees }

func (p TemporaryAbsentees) Clone() Payload {
	p.AbsentMembers = cloneRows(p.AbsentMembers)
	p.EmigrantMembers = cloneRows(p.EmigrantMembers)
	return p
}

// Normalize derives member codes from the relationship to the head.
func (p TemporaryAbsentees) Normalize() Payload {
	out := p.Clone().(TemporaryAbsentees)
	for i := range out.AbsentMembers {
		out.AbsentMembers[i].Code = RelationshipCode(out.AbsentMembers[i].RelationshipToHead)
	}
	for i := range out.EmigrantMembers {
		out.EmigrantMembers[i].Code = RelationshipCode(out.EmigrantMembers[i].RelationshipToHead)
	}
	return out
}

func (TemporaryAbsentees) RowLists() []string {
	return []string{listAbsentMembers, listEmigrantMembers}
}

func (p TemporaryAbsentees) Rows(list string) ([]RowID, bool) {
	switch list {
	case listAbsentMembers:
		return rowIDs(p.AbsentMembers), true
	case listEmigrantMembers:
		return rowIDs(p.EmigrantMembers), true
	}
	return nil, false
}

func (p TemporaryAbsentees) AppendRow(list string, id RowID) (Payload, error) {
	out := p.Clone().(TemporaryAbsentees)
	switch list {
	case listAbsentMembers:
		out.AbsentMembers = append(out.AbsentMembers, AbsentMember{ID: id, Sex: "M"})
	case listEmigrantMembers:
		out.EmigrantMembers = append(out.EmigrantMembers, Emigrant{ID: id, Sex: "M"})
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownList, list)
	}
	return out, nil
}

func (p TemporaryAbsentees) RemoveRow(id RowID) (Payload, error) {
	out := p.Clone().(TemporaryAbsentees)
	if i := indexOf(out.AbsentMembers, id); i >= 0 {
		out.AbsentMembers = removeAt(out.AbsentMembers, i)
		return out, nil
	}
	if i := indexOf(out.EmigrantMembers, id); i >= 0 {
		out.EmigrantMembers = removeAt(out.EmigrantMembers, i)
		return out, nil
	}
	return nil, ErrRowNotFound
}

func (p TemporaryAbsentees) AssignPlaceholders(next func() RowID) Payload {
	p.AbsentMembers = assignIDs(p.AbsentMembers, next)
	p.EmigrantMembers = assignIDs(p.EmigrantMembers, next)
	return p
}

func (p TemporaryAbsentees) ClearPlaceholders() Payload {
	p.AbsentMembers = clearPlaceholders(p.AbsentMembers)
	p.EmigrantMembers = clearPlaceholders(p.EmigrantMembers)
	return p
}

// Step 5.

// SexCount is a count split by sex.
type SexCount struct {
	Male   int `json:"male" yaml:"male" validate:"min=0"`
	Female int `json:"female" yaml:"female" validate:"min=0"`
}

// Fertility counts children of the household's women.
type Fertility struct {
	ChildrenEverBorn         SexCount `json:"childrenEverBorn" yaml:"childrenEverBorn"`
	ChildrenSurviving        SexCount `json:"childrenSurviving" yaml:"childrenSurviving"`
	ChildrenBornLast12Months SexCount `json:"childrenBornLast12Months" yaml:"childrenBornLast12Months"`
}

func (Fertility) Step() Step { return StepFertility }
func (p Fertility) Clone() Payload { return p }

// Step 6.

// EconomicActivities lists the establishments household members work in.
type EconomicActivities struct {
	Activities []EconomicActivity `json:"activities" yaml:"activities" validate:"dive"`
}

type EconomicActivity struct {
	ID                RowID  `json:"id,omitempty" yaml:"id,omitempty"`
	EstablishmentName string `json:"establishmentName" yaml:"establishmentName" validate:"notblank"`
	MainProduct       string `json:"mainProduct" yaml:"mainProduct"`
	IndustryCode      string `json:"industryCode" yaml:"industryCode"`
	EmploymentStatus  string `json:"employmentStatus" yaml:"employmentStatus" validate:"required,oneof=EMPLOYED SELF_EMPLOYED UNEMPLOYED"`
	EmploymentSector  string `json:"employmentSector" yaml:"employmentSector" validate:"required,oneof=PUBLIC PRIVATE INFORMAL"`
}

func (a EconomicActivity) RowID() RowID { return a.ID }
func (a EconomicActivity) withID(id RowID) EconomicActivity {
	a.ID = id
	return a
}

const listActivities = "activities"

func (EconomicActivities) Step() Step { return StepEconomicActivity }

func (p EconomicActivities) Clone() Payload {
	return EconomicActivities{Activities: cloneRows(p.Activities)}
}

func (EconomicActivities) RowLists() []string { return []string{listActivities} }

func (p EconomicActivities) Rows(list string) ([]RowID, bool) {
	if list != listActivities {
		return nil, false
	}
	return rowIDs(p.Activities), true
}

func (p EconomicActivities) AppendRow(list string, id RowID) (Payload, error) {
	if list != listActivities {
		return nil, fmt.Errorf("%w: %s", ErrUnknownList, list)
	}
	out := EconomicActivities{Activities: cloneRows(p.Activities)}
	out.Activities = append(out.Activities, EconomicActivity{ID: id})
	return out, nil
}

func (p EconomicActivities) RemoveRow(id RowID) (Payload, error) {
	i := indexOf(p.Activities, id)
	if i < 0 {
		return nil, ErrRowNotFound
	}
	return EconomicActivities{Activities: removeAt(p.Activities, i)}, nil
}

func (p EconomicActivities) AssignPlaceholders(next func() RowID) Payload {
	return EconomicActivities{Activities: assignIDs(p.Activities, next)}
}

func (p EconomicActivities) ClearPlaceholders() Payload {
	return EconomicActivities{Activities: clearPlaceholders(p.Activities)}
}

// Step 7.

// Disability answers Yes or No per functional domain.
type Disability struct {
	Sight        string `json:"sight" yaml:"sight" validate:"required,oneof=Yes No"`
	Hearing      string `json:"hearing" yaml:"hearing" validate:"required,oneof=Yes No"`
	Speech       string `json:"speech" yaml:"speech" validate:"required,oneof=Yes No"`
	Physical     string `json:"physical" yaml:"physical" validate:"required,oneof=Yes No"`
	Intellectual string `json:"intellectual" yaml:"intellectual" validate:"required,oneof=Yes No"`
	Emotional    string `json:"emotional" yaml:"emotional" validate:"required,oneof=Yes No"`
}

func (Disability) Step() Step { return StepDisability }
func (p Disability) Clone() Payload { return p }

// Step 8.

// Agriculture lists crops grown and livestock kept by the household.
type Agriculture struct {
	Crops     []Crop      `json:"crops" yaml:"crops" validate:"dive"`
	Livestock []Livestock `json:"livestock" yaml:"livestock" validate:"dive"`
}

type Crop struct {
	ID       RowID   `json:"id,omitempty" yaml:"id,omitempty"`
	Type     string  `json:"type" yaml:"type" validate:"notblank"`
	CropCode string  `json:"cropCode" yaml:"cropCode" validate:"notblank"`
	FarmSize float64 `json:"farmSize" yaml:"farmSize" validate:"gt=0"`
}

type Livestock struct {
	ID       RowID  `json:"id,omitempty" yaml:"id,omitempty"`
	Type     string `json:"type" yaml:"type" validate:"notblank"`
	Code     string `json:"code" yaml:"code" validate:"notblank"`
	Quantity int    `json:"quantity" yaml:"quantity" validate:"gt=0"`
}

func (c Crop) RowID() RowID { return c.ID }
func (c Crop) withID(id RowID) Crop {
	c.ID = id
	return c
}
func (l Livestock) RowID() RowID { return l.ID }
func (l Livestock) withID(id RowID) Livestock {
	l.ID = id
	return l
}

const (
	listCrops     = "crops"
	listLivestock = "livestock"
)

func (Agriculture) Step() Step { return StepAgriculture }

func (p Agriculture) Clone() Payload {
	return Agriculture{Crops: cloneRows(p.Crops), Livestock: cloneRows(p.Livestock)}
}

func (Agriculture) RowLists() []string { return []string{listCrops, listLivestock} }

func (p Agriculture) Rows(list string) ([]RowID, bool) {
	switch list {
	case listCrops:
		return rowIDs(p.Crops), true
	case listLivestock:
		return rowIDs(p.Livestock), true
	}
	return nil, false
}

func (p Agriculture) AppendRow(list string, id RowID) (Payload, error) {
	out := p.Clone().(Agriculture)
	switch list {
	case listCrops:
		out.Crops = append(out.Crops, Crop{ID: id})
	case listLivestock:
		out.Livestock = append(out.Livestock, Livestock{ID: id})
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownList, list)
	}
	return out, nil
}

func (p Agriculture) RemoveRow(id RowID) (Payload, error) {
	out := p.Clone().(Agriculture)
	if i := indexOf(out.Crops, id); i >= 0 {
		out.Crops = removeAt(out.Crops, i)
		return out, nil
	}
	if i := indexOf(out.Livestock, id); i >= 0 {
		out.Livestock = removeAt(out.Livestock, i)
		return out, nil
	}
	return nil, ErrRowNotFound
}

func (p Agriculture) AssignPlaceholders(next func() RowID) Payload {
	return Agriculture{Crops: assignIDs(p.Crops, next), Livestock: assignIDs(p.Livestock, next)}
}

func (p Agriculture) ClearPlaceholders() Payload {
	return Agriculture{Crops: clearPlaceholders(p.Crops), Livestock: clearPlaceholders(p.Livestock)}
}

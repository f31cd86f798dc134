package censustest

import (
	"fmt"

	"github.com/mark3labs/census/internal/census"
)

// ValidPayload returns a payload for step that passes local validation.
func ValidPayload(step census.Step) census.Payload {
	switch step {
	case census.StepLocation:
		return census.LocationInfo{
			RegionName:      "Greater Accra",
			DistrictName:    "Accra Metropolitan",
			LocalityName:    "Osu",
			Address:         "12 Oxford Street",
			EnumAreaCode:    "EA-0412",
			EAType:          "URBAN",
			StructureNumber: "17",
			HouseholdNumber: "2",
			ResidenceType:   "OCCUPIED",
			InterviewDates: census.InterviewDates{
				DateStarted:   "2024-03-01",
				DateCompleted: "2024-03-02",
			},
		}
	case census.StepRoster:
		return census.HouseholdRoster{Members: []census.HouseholdMember{
			{FullName: "Kwame Mensah", RelationshipToHead: census.RelationshipHead, RelationshipCode: "1", Sex: "M"},
			{FullName: "Ama Mensah", RelationshipToHead: census.RelationshipSpouse, RelationshipCode: "2", Sex: "F"},
		}}
	case census.StepHouseholdUnit:
		return census.HouseholdUnit{People: []census.Person{{
			FullName:    "Kwame Mensah",
			DateOfBirth: census.DateOfBirth{Day: "14", Month: "6", Year: "1980"},
			Age:         "43",
			Nationality: "Ghanaian",
			Ethnicity:   "Akan",
		}}}
	case census.StepAbsentees:
		return census.TemporaryAbsentees{
			AbsentCount:  "1",
			HasEmigrants: "Yes",
			AbsentMembers: []census.AbsentMember{{
				FullName: "Kofi Mensah", RelationshipToHead: census.RelationshipChild, Code: "3",
				Sex: "M", Age: "19", Destination: "Kumasi", MonthsAbsent: "4",
			}},
			EmigrantMembers: []census.Emigrant{{
				FullName: "Efua Mensah", RelationshipToHead: census.RelationshipSibling, Code: "5",
				Sex: "F", Age: "35", CountryName: "United Kingdom", CountryCode: "GB", YearOfDeparture: "2015",
			}},
		}
	case census.StepFertility:
		return census.Fertility{
			ChildrenEverBorn:         census.SexCount{Male: 2, Female: 1},
			ChildrenSurviving:        census.SexCount{Male: 2, Female: 1},
			ChildrenBornLast12Months: census.SexCount{Male: 0, Female: 1},
		}
	case census.StepEconomicActivity:
		return census.EconomicActivities{Activities: []census.EconomicActivity{{
			EstablishmentName: "Mensah Provisions",
			MainProduct:       "Groceries",
			IndustryCode:      "4711",
			EmploymentStatus:  "SELF_EMPLOYED",
			EmploymentSector:  "INFORMAL",
		}}}
	case census.StepDisability:
		return census.Disability{Sight: "No", Hearing: "No", Speech: "No", Physical: "No", Intellectual: "No", Emotional: "No"}
	case census.StepAgriculture:
		return census.Agriculture{
			Crops:     []census.Crop{{Type: "Maize", CropCode: "MZ", FarmSize: 1.5}},
			Livestock: []census.Livestock{{Type: "Goat", Code: "GT", Quantity: 4}},
		}
	}
	panic(fmt.Sprintf("censustest: no fixture for step %d", step))
}

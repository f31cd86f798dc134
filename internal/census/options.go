package census

// Option is one entry of an enumerated field.
type Option struct {
	Value string
	Label string
	Code  string
}

// Relationship values of a household member to the head.
const (
	RelationshipHead    = "HEAD"
	RelationshipSpouse  = "SPOUSE"
	RelationshipChild   = "CHILD"
	RelationshipParent  = "PARENT"
	RelationshipSibling = "SIBLING"
	RelationshipOther   = "OTHER"
)

var (
	Relationships = []Option{
		{RelationshipHead, "Head", "1"},
		{RelationshipSpouse, "Spouse", "2"},
		{RelationshipChild, "Child", "3"},
		{RelationshipParent, "Parent", "4"},
		{RelationshipSibling, "Sibling", "5"},
		{RelationshipOther, "Other", "6"},
	}

	Sexes = []Option{
		{Value: "M", Label: "Male"},
		{Value: "F", Label: "Female"},
	}

	ResidenceTypes = []Option{
		{Value: "OCCUPIED", Label: "Occupied"},
		{Value: "VACANT", Label: "Vacant"},
	}

	YesNo = []Option{
		{Value: "Yes", Label: "Yes"},
		{Value: "No", Label: "No"},
	}

	Nationalities = values("Ghanaian", "Nigerian", "Togolese", "Ivorian", "American", "British")

	Ethnicities = values("Akan", "Ewe", "Ga", "Dagomba", "Hausa", "Yoruba")

	EmploymentStatuses = []Option{
		{Value: "EMPLOYED", Label: "Employed"},
		{Value: "SELF_EMPLOYED", Label: "Self-Employed"},
		{Value: "UNEMPLOYED", Label: "Unemployed"},
	}

	EmploymentSectors = []Option{
		{Value: "PUBLIC", Label: "Public"},
		{Value: "PRIVATE", Label: "Private"},
		{Value: "INFORMAL", Label: "Informal"},
	}
)

func values(vs ...string) []Option {
	opts := make([]Option, len(vs))
	for i, v := range vs {
		opts[i] = Option{Value: v, Label: v}
	}
	return opts
}

// RelationshipCode returns the numeric code for a relationship value, or
// "" when the value is unknown.
func RelationshipCode(relationship string) string {
	for _, o := range Relationships {
		if o.Value == relationship {
			return o.Code
		}
	}
	return ""
}

// OptionValues returns the values of opts in order.
func OptionValues(opts []Option) []string {
	out := make([]string, len(opts))
	for i, o := range opts {
		out[i] = o.Value
	}
	return out
}

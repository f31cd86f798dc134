package render

import (
	"fmt"
	"strings"

	"github.com/mark3labs/census/internal/census"
)

// Summary builds a markdown overview of a record: header, progress and a
// section per step that holds data.
func Summary(rec census.Record) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# Record %s\n\n", rec.ID)
	fmt.Fprintf(&sb, "- **Status:** %s\n", rec.Status)
	fmt.Fprintf(&sb, "- **Step:** %s\n", StepLabel(rec))
	fmt.Fprintf(&sb, "- **Progress:** %.0f%%\n", census.Progress(rec)*100)
	if !rec.CreatedAt.IsZero() {
		fmt.Fprintf(&sb, "- **Created:** %s\n", rec.CreatedAt.Format("2006-01-02 15:04"))
	}

	for _, step := range census.AllSteps() {
		p, ok := rec.Payload(step)
		if !ok {
			continue
		}
		fmt.Fprintf(&sb, "\n## %d. %s\n\n", step, step.Title())
		writeStep(&sb, p)
	}
	return sb.String()
}

// StepLabel describes where a record is in the wizard.
func StepLabel(rec census.Record) string {
	if rec.Completed() {
		return "complete"
	}
	return fmt.Sprintf("%d/%d %s", rec.CurrentStep, census.TotalSteps, rec.CurrentStep.Title())
}

func writeStep(sb *strings.Builder, p census.Payload) {
	switch v := p.(type) {
	case census.LocationInfo:
		fmt.Fprintf(sb, "%s, %s, %s (EA %s, %s)\n\n", v.LocalityName, v.DistrictName, v.RegionName, v.EnumAreaCode, v.EAType)
		fmt.Fprintf(sb, "Residence: %s. Interviewed %s to %s.\n", v.ResidenceType, v.InterviewDates.DateStarted, v.InterviewDates.DateCompleted)
	case census.HouseholdRoster:
		markdownTable(sb, []string{"Name", "Relationship", "Code", "Sex"}, len(v.Members), func(i int) []string {
			m := v.Members[i]
			return []string{m.FullName, m.RelationshipToHead, m.RelationshipCode, m.Sex}
		})
	case census.HouseholdUnit:
		markdownTable(sb, []string{"Name", "Born", "Age", "Nationality", "Ethnicity"}, len(v.People), func(i int) []string {
			pp := v.People[i]
			dob := fmt.Sprintf("%s/%s/%s", pp.DateOfBirth.Day, pp.DateOfBirth.Month, pp.DateOfBirth.Year)
			return []string{pp.FullName, dob, pp.Age, pp.Nationality, pp.Ethnicity}
		})
	case census.TemporaryAbsentees:
		fmt.Fprintf(sb, "Absent: %s. Emigrants: %s.\n\n", v.AbsentCount, v.HasEmigrants)
		if len(v.AbsentMembers) > 0 {
			markdownTable(sb, []string{"Absent member", "Age", "Destination", "Months"}, len(v.AbsentMembers), func(i int) []string {
				m := v.AbsentMembers[i]
				return []string{m.FullName, m.Age, m.Destination, m.MonthsAbsent}
			})
		}
		if len(v.EmigrantMembers) > 0 {
			markdownTable(sb, []string{"Emigrant", "Age", "Country", "Left"}, len(v.EmigrantMembers), func(i int) []string {
				m := v.EmigrantMembers[i]
				return []string{m.FullName, m.Age, m.CountryName, m.YearOfDeparture}
			})
		}
	case census.Fertility:
		markdownTable(sb, []string{"Children", "Male", "Female"}, 3, func(i int) []string {
			c := []census.SexCount{v.ChildrenEverBorn, v.ChildrenSurviving, v.ChildrenBornLast12Months}[i]
			label := []string{"Ever born", "Surviving", "Born last 12 months"}[i]
			return []string{label, fmt.Sprint(c.Male), fmt.Sprint(c.Female)}
		})
	case census.EconomicActivities:
		markdownTable(sb, []string{"Establishment", "Product", "Status", "Sector"}, len(v.Activities), func(i int) []string {
			a := v.Activities[i]
			return []string{a.EstablishmentName, a.MainProduct, a.EmploymentStatus, a.EmploymentSector}
		})
	case census.Disability:
		markdownTable(sb, []string{"Domain", "Answer"}, 6, func(i int) []string {
			return [][]string{
				{"Sight", v.Sight}, {"Hearing", v.Hearing}, {"Speech", v.Speech},
				{"Physical", v.Physical}, {"Intellectual", v.Intellectual}, {"Emotional", v.Emotional},
			}[i]
		})
	case census.Agriculture:
		if len(v.Crops) > 0 {
			markdownTable(sb, []string{"Crop", "Code", "Farm size"}, len(v.Crops), func(i int) []string {
				c := v.Crops[i]
				return []string{c.Type, c.CropCode, fmt.Sprintf("%g", c.FarmSize)}
			})
		}
		if len(v.Livestock) > 0 {
			markdownTable(sb, []string{"Livestock", "Code", "Quantity"}, len(v.Livestock), func(i int) []string {
				l := v.Livestock[i]
				return []string{l.Type, l.Code, fmt.Sprint(l.Quantity)}
			})
		}
	}
}

// markdownTable writes a markdown table. Pipes in cells are escaped.
func markdownTable(sb *strings.Builder, header []string, n int, row func(int) []string) {
	if n == 0 {
		sb.WriteString("_none_\n")
		return
	}
	sb.WriteString("| " + strings.Join(header, " | ") + " |\n")
	sep := make([]string, len(header))
	for i := range sep {
		sep[i] = "---"
	}
	sb.WriteString("| " + strings.Join(sep, " | ") + " |\n")
	for i := 0; i < n; i++ {
		cells := row(i)
		for j, c := range cells {
			cells[j] = strings.ReplaceAll(c, "|", `\|`)
		}
		sb.WriteString("| " + strings.Join(cells, " | ") + " |\n")
	}
	sb.WriteString("\n")
}

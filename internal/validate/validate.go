// Package validate checks step payloads before they are submitted. Every
// check is a pure function of the payload and the clock.
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"github.com/mark3labs/census/internal/census"
)

// GeneralKey holds errors that concern the payload as a whole.
const GeneralKey = "general"

const (
	minAge  = 0
	maxAge  = 150
	minYear = 1900
)

// Errors maps a field path to a message. Paths use JSON field names:
// "regionName", "interviewDates.dateStarted", "members[2].fullName".
type Errors map[string]string

// Empty reports whether no errors were found.
func (e Errors) Empty() bool {
	return len(e) == 0
}

// Keys returns the error paths in sorted order.
func (e Errors) Keys() []string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (e Errors) String() string {
	var b strings.Builder
	for i, k := range e.Keys() {
		if i > 0 {
			b.WriteString("; ")
		}
		fmt.Fprintf(&b, "%s: %s", k, e[k])
	}
	return b.String()
}

// add records msg for key unless the key already has an error.
func (e Errors) add(key, msg string) {
	if _, ok := e[key]; !ok {
		e[key] = msg
	}
}

// Func validates one step payload.
type Func func(census.Payload) Errors

// Validator wraps a validator instance, its translator and the clock used
// for year bounds.
type Validator struct {
	validate *validator.Validate
	trans    ut.Translator
	now      func() time.Time
}

// Option configures a Validator.
type Option func(*Validator)

// WithClock sets the clock used to compute the current year.
func WithClock(now func() time.Time) Option {
	return func(v *Validator) {
		v.now = now
	}
}

// New creates a Validator with the census rules and English messages.
func New(opts ...Option) (*Validator, error) {
	v := &Validator{now: time.Now}
	for _, opt := range opts {
		opt(v)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	custom := map[string]validator.Func{
		"notblank": notBlank,
		"age":      isAge,
		"count":    isCount,
		"pastyear": v.isPastYear,
	}
	for name, fn := range custom {
		if err := validate.RegisterValidation(name, fn); err != nil {
			return nil, fmt.Errorf("registering %s: %w", name, err)
		}
	}

	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	trans, found := uni.GetTranslator("en")
	if !found {
		return nil, errors.New("translator not found")
	}
	if err := en_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, fmt.Errorf("registering default translations: %w", err)
	}

	v.validate = validate
	v.trans = trans
	if err := v.registerMessages(); err != nil {
		return nil, err
	}
	return v, nil
}

// Validate dispatches on the payload's step.
func (v *Validator) Validate(p census.Payload) Errors {
	if p == nil {
		return Errors{GeneralKey: "Nothing to validate"}
	}
	return v.ForStep(p.Step())(p)
}

// ForStep returns the validation function of step.
func (v *Validator) ForStep(step census.Step) Func {
	switch step {
	case census.StepLocation:
		return v.location
	case census.StepRoster:
		return v.roster
	case census.StepHouseholdUnit:
		return v.householdUnit
	case census.StepAbsentees, census.StepEconomicActivity, census.StepDisability, census.StepAgriculture:
		return v.tagsOnly
	case census.StepFertility:
		return v.fertility
	default:
		return func(census.Payload) Errors {
			return Errors{GeneralKey: fmt.Sprintf("Unknown step %d", step)}
		}
	}
}

// CurrentYear returns the year of the validator's clock.
func (v *Validator) CurrentYear() int {
	return v.now().Year()
}

// structErrors runs the tag rules and keys every failure by its JSON path.
func (v *Validator) structErrors(p census.Payload) Errors {
	errs := Errors{}
	err := v.validate.Struct(p)
	if err == nil {
		return errs
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		errs[GeneralKey] = err.Error()
		return errs
	}
	for _, fe := range verrs {
		errs.add(fieldPath(fe.Namespace()), fe.Translate(v.trans))
	}
	return errs
}

// fieldPath drops the root type name from a validator namespace.
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func (v *Validator) tagsOnly(p census.Payload) Errors {
	return v.structErrors(p)
}

func (v *Validator) location(p census.Payload) Errors {
	errs := v.structErrors(p)
	loc, ok := p.(census.LocationInfo)
	if !ok {
		return mismatch(p, census.StepLocation)
	}

	started, err1 := time.Parse(time.DateOnly, loc.InterviewDates.DateStarted)
	completed, err2 := time.Parse(time.DateOnly, loc.InterviewDates.DateCompleted)
	if err1 == nil && err2 == nil && completed.Before(started) {
		errs.add("interviewDates.dateCompleted", "End Date cannot be before Start Date")
	}
	return errs
}

func (v *Validator) roster(p census.Payload) Errors {
	errs := v.structErrors(p)
	roster, ok := p.(census.HouseholdRoster)
	if !ok {
		return mismatch(p, census.StepRoster)
	}
	if len(roster.Members) == 0 {
		errs.add(GeneralKey, "At least one household member is required")
		return errs
	}

	if roster.Members[0].RelationshipToHead != census.RelationshipHead {
		errs["members[0].relationshipToHead"] = "The first member must be the head of household"
	}
	heads := 0
	for _, m := range roster.Members {
		if m.RelationshipToHead == census.RelationshipHead {
			heads++
		}
	}
	if heads > 1 {
		errs.add(GeneralKey, "Only one head of household is allowed")
	}
	return errs
}

func (v *Validator) householdUnit(p census.Payload) Errors {
	errs := v.structErrors(p)
	unit, ok := p.(census.HouseholdUnit)
	if !ok {
		return mismatch(p, census.StepHouseholdUnit)
	}
	if len(unit.People) == 0 {
		errs.add(GeneralKey, "At least one person is required")
		return errs
	}
	for i, person := range unit.People {
		if msg := v.checkDateOfBirth(person.DateOfBirth); msg != "" {
			errs.add(fmt.Sprintf("people[%d].dateOfBirth", i), msg)
		}
	}
	return errs
}

func (v *Validator) checkDateOfBirth(d census.DateOfBirth) string {
	if blank(d.Day) || blank(d.Month) || blank(d.Year) {
		return "Date of Birth is required"
	}
	day, err1 := strconv.Atoi(strings.TrimSpace(d.Day))
	month, err2 := strconv.Atoi(strings.TrimSpace(d.Month))
	year, err3 := strconv.Atoi(strings.TrimSpace(d.Year))
	if err1 != nil || err2 != nil || err3 != nil {
		return "Date of Birth must be numeric"
	}
	if year < minYear || year > v.CurrentYear() {
		return fmt.Sprintf("Year must be between %d and %d", minYear, v.CurrentYear())
	}
	if month < 1 || month > 12 {
		return "Month must be between 1 and 12"
	}
	date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if day < 1 || date.Day() != day {
		return "Day is not valid for the given month"
	}
	return ""
}

func (v *Validator) fertility(p census.Payload) Errors {
	errs := v.structErrors(p)
	f, ok := p.(census.Fertility)
	if !ok {
		return mismatch(p, census.StepFertility)
	}

	check := func(field string, ever, other int, what string) {
		if other > ever {
			errs.add(field, fmt.Sprintf("%s cannot exceed children ever born", what))
		}
	}
	check("childrenSurviving.male", f.ChildrenEverBorn.Male, f.ChildrenSurviving.Male, "Surviving male children")
	check("childrenSurviving.female", f.ChildrenEverBorn.Female, f.ChildrenSurviving.Female, "Surviving female children")
	check("childrenBornLast12Months.male", f.ChildrenEverBorn.Male, f.ChildrenBornLast12Months.Male, "Male children born in the last 12 months")
	check("childrenBornLast12Months.female", f.ChildrenEverBorn.Female, f.ChildrenBornLast12Months.Female, "Female children born in the last 12 months")
	return errs
}

func mismatch(p census.Payload, step census.Step) Errors {
	return Errors{GeneralKey: fmt.Sprintf("payload %T does not belong to step %d", p, step)}
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func notBlank(fl validator.FieldLevel) bool {
	return !blank(fl.Field().String())
}

func isAge(fl validator.FieldLevel) bool {
	n, err := strconv.Atoi(strings.TrimSpace(fl.Field().String()))
	return err == nil && n >= minAge && n <= maxAge
}

func isCount(fl validator.FieldLevel) bool {
	n, err := strconv.Atoi(strings.TrimSpace(fl.Field().String()))
	return err == nil && n >= 0
}

func (v *Validator) isPastYear(fl validator.FieldLevel) bool {
	n, err := strconv.Atoi(strings.TrimSpace(fl.Field().String()))
	return err == nil && n >= minYear && n <= v.CurrentYear()
}

// label turns a JSON field name into the label shown to the enumerator.
func label(field string) string {
	if l, ok := labels[field]; ok {
		return l
	}
	var b strings.Builder
	for i, r := range field {
		switch {
		case i == 0:
			b.WriteRune(unicode.ToUpper(r))
		case unicode.IsUpper(r) || (unicode.IsDigit(r) && !unicode.IsDigit(rune(field[i-1]))):
			b.WriteRune(' ')
			b.WriteRune(r)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

var labels = map[string]string{
	"eaType":          "EA Type",
	"enumAreaCode":    "Enumeration Area Code",
	"nhisNumber":      "NHIS Number",
	"dateStarted":     "Start Date",
	"dateCompleted":   "End Date",
	"fullName":        "Full Name",
	"yearOfDeparture": "Year of Departure",
}

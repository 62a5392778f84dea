package model

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ValidForm returns a form that passes validation.
func ValidForm() RegistrationForm {
	return RegistrationForm{
		ContactEmail:           "ada@example.com",
		NameFirst:              "Ada",
		NameLast:               "Lovelace",
		DOB:                    "2004-12-10",
		Phone:                  "+17165550100",
		Gender:                 "Woman",
		RaceEthnicity:          "White",
		Country:                "United States",
		SchoolName:             "University at Buffalo",
		SchoolMajor:            "Computer Science",
		LevelOfStudy:           "Undergraduate University (3+ year)",
		GraduationYear:         "2027",
		IsAttendingInPerson:    true,
		ShirtSize:              "M",
		DietaryRestrictions:    "None",
		Allergies:              "None",
		HowYouHeard:            "Friend",
		WhyAttend:              "To build an analytical engine.",
		CodeOfConductUBHacking: true,
		CodeOfConductMLH:       true,
		DataSharingMLH:         true,
	}
}

func fieldErrors(t *testing.T, err error) map[string]string {
	t.Helper()

	var verrs validator.ValidationErrors
	require.True(t, errors.As(err, &verrs), "expected validator.ValidationErrors, got %T", err)

	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		out[fe.Field()] = fe.Tag()
	}
	return out
}

func TestRegistrationForm_Validate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(f *RegistrationForm)
		wantField string
		wantTag   string
	}{
		{name: "valid", mutate: func(f *RegistrationForm) {}},
		{name: "missing email", mutate: func(f *RegistrationForm) { f.ContactEmail = "" }, wantField: "contactEmail", wantTag: "required"},
		{name: "bad email", mutate: func(f *RegistrationForm) { f.ContactEmail = "ada" }, wantField: "contactEmail", wantTag: "email"},
		{name: "bad dob", mutate: func(f *RegistrationForm) { f.DOB = "12/10/2004" }, wantField: "dob", wantTag: "datetime"},
		{name: "bad graduation year", mutate: func(f *RegistrationForm) { f.GraduationYear = "27" }, wantField: "graduationYear", wantTag: "len"},
		{name: "bad shirt size", mutate: func(f *RegistrationForm) { f.ShirtSize = "XXXL" }, wantField: "shirtSize", wantTag: "oneof"},
		{name: "code of conduct unchecked", mutate: func(f *RegistrationForm) { f.CodeOfConductUBHacking = false }, wantField: "codeOfConductUBHacking", wantTag: "required"},
		{name: "mlh data sharing unchecked", mutate: func(f *RegistrationForm) { f.DataSharingMLH = false }, wantField: "dataSharingMLH", wantTag: "required"},
		{name: "other diet needs detail", mutate: func(f *RegistrationForm) { f.DietaryRestrictions = "Other" }, wantField: "dietaryRestrictionsOther", wantTag: "required_if"},
		{name: "other allergy needs detail", mutate: func(f *RegistrationForm) { f.Allergies = "Other" }, wantField: "allergiesOther", wantTag: "required_if"},
		{name: "school name too long", mutate: func(f *RegistrationForm) { f.SchoolName = strings.Repeat("s", 201) }, wantField: "schoolName", wantTag: "max"},
		{name: "how you heard too long", mutate: func(f *RegistrationForm) { f.HowYouHeard = strings.Repeat("h", 1500) }, wantField: "howYouHeard", wantTag: "max"},
		{name: "why attend too long", mutate: func(f *RegistrationForm) { f.WhyAttend = strings.Repeat("a", 1001) }, wantField: "whyAttend", wantTag: "max"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := ValidForm()
			tt.mutate(&f)

			err := f.Validate()
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}

			got := fieldErrors(t, err)
			assert.Equal(t, tt.wantTag, got[tt.wantField], "errors: %v", got)
		})
	}
}

func TestRegistrationForm_OptionalFieldsMayBeEmpty(t *testing.T) {
	f := ValidForm()
	f.Address1, f.City, f.State, f.ZipCode = "", "", "", ""
	f.SpecialRequest = ""
	f.IsAttendingInPerson = false
	f.CommunicationMLH = false

	assert.NoError(t, f.Validate())
}

func TestCheckbox_UnmarshalParam(t *testing.T) {
	for _, in := range []string{"on", "ON", "true", "1", "yes", " on "} {
		var c Checkbox
		require.NoError(t, c.UnmarshalParam(in))
		assert.True(t, bool(c), "input %q", in)
	}

	for _, in := range []string{"", "off", "false", "0", "nope"} {
		c := Checkbox(true)
		require.NoError(t, c.UnmarshalParam(in))
		assert.False(t, bool(c), "input %q", in)
	}
}

func TestToRegistration(t *testing.T) {
	f := ValidForm()
	f.CommunicationMLH = true
	f.SpecialRequest = "Vegetarian pizza please"

	reg := ToRegistration(f, "user_2abc")

	assert.Equal(t, "Ada", reg.NameFirst)
	assert.Equal(t, "ada@example.com", reg.ContactEmail)
	assert.Equal(t, "Vegetarian pizza please", reg.SpecialRequest)
	assert.True(t, reg.CodeOfConduct)
	assert.True(t, reg.DataSharing)
	assert.True(t, reg.Communication)
	assert.Equal(t, "user_2abc", reg.CreatedBy)
	assert.Equal(t, uuid.Nil, reg.ID)
	assert.True(t, reg.CreatedAt.IsZero())
}

// Every form field must land in the column whose json name is the
// snake_case form of the field's name, with the value unchanged.
func TestToRegistration_RenamesEveryField(t *testing.T) {
	renamed := map[string]string{
		"codeOfConductUBHacking": "code_of_conduct_ub_hacking",
		"codeOfConductMLH":       "code_of_conduct",
		"dataSharingMLH":         "data_sharing",
		"communicationMLH":       "communication",
	}

	f := ValidForm()
	f.Address1, f.City, f.State, f.ZipCode = "1 Main St", "Buffalo", "NY", "14260"
	f.DietaryRestrictionsOther, f.AllergiesOther = "Pescatarian", "Shellfish"
	f.SpecialRequest = "Quiet room"
	f.CommunicationMLH = true

	reg := ToRegistration(f, "user_2abc")

	columns := map[string]reflect.Value{}
	rv := reflect.ValueOf(reg)
	for i := 0; i < rv.NumField(); i++ {
		columns[rv.Type().Field(i).Tag.Get("json")] = rv.Field(i)
	}

	fv := reflect.ValueOf(f)
	for i := 0; i < fv.NumField(); i++ {
		formName := fv.Type().Field(i).Tag.Get("form")

		column, ok := renamed[formName]
		if !ok {
			column = snake(formName)
		}

		col, ok := columns[column]
		require.True(t, ok, "form field %s has no column %s", formName, column)

		want := fv.Field(i)
		if want.Kind() == reflect.Bool {
			assert.Equal(t, want.Bool(), col.Bool(), formName)
		} else {
			assert.Equal(t, want.String(), col.String(), formName)
		}
	}
}

func snake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Package model holds the registration form, the stored registration
// row, and the pure mapping between them.
package model

import (
	"reflect"
	"strings"
	"time"

	"github.com/deppfellow/hackreg/internal/errs"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Checkbox binds an HTML checkbox. Browsers post "on" for a checked box
// and omit the field otherwise.
type Checkbox bool

// UnmarshalParam implements echo.BindUnmarshaler.
func (c *Checkbox) UnmarshalParam(param string) error {
	switch strings.ToLower(strings.TrimSpace(param)) {
	case "on", "true", "1", "yes":
		*c = true
	default:
		*c = false
	}
	return nil
}

// RegistrationForm is the posted registration form. Field names follow the
// page's camel-case inputs; an omitted text input binds as "".
type RegistrationForm struct {
	ContactEmail string `form:"contactEmail" json:"contactEmail" validate:"required,email"`
	NameFirst    string `form:"nameFirst" json:"nameFirst" validate:"required,max=100"`
	NameLast     string `form:"nameLast" json:"nameLast" validate:"required,max=100"`
	DOB          string `form:"dob" json:"dob" validate:"required,datetime=2006-01-02"`
	Phone        string `form:"phone" json:"phone" validate:"required,min=7,max=20"`

	Gender        string `form:"gender" json:"gender" validate:"required,max=200"`
	RaceEthnicity string `form:"raceEthnicity" json:"raceEthnicity" validate:"required,max=200"`
	Country       string `form:"country" json:"country" validate:"required,max=200"`

	SchoolName     string `form:"schoolName" json:"schoolName" validate:"required,max=200"`
	SchoolMajor    string `form:"schoolMajor" json:"schoolMajor" validate:"required,max=200"`
	LevelOfStudy   string `form:"levelOfStudy" json:"levelOfStudy" validate:"required,max=200"`
	GraduationYear string `form:"graduationYear" json:"graduationYear" validate:"required,numeric,len=4"`

	Address1 string `form:"address1" json:"address1" validate:"max=200"`
	City     string `form:"city" json:"city" validate:"max=100"`
	State    string `form:"state" json:"state" validate:"max=100"`
	ZipCode  string `form:"zipCode" json:"zipCode" validate:"max=10"`

	IsAttendingInPerson      Checkbox `form:"isAttendingInPerson" json:"isAttendingInPerson"`
	ShirtSize                string   `form:"shirtSize" json:"shirtSize" validate:"required,oneof=XS S M L XL XXL"`
	DietaryRestrictions      string   `form:"dietaryRestrictions" json:"dietaryRestrictions" validate:"required,max=200"`
	DietaryRestrictionsOther string   `form:"dietaryRestrictionsOther" json:"dietaryRestrictionsOther" validate:"required_if=DietaryRestrictions Other,max=200"`
	Allergies                string   `form:"allergies" json:"allergies" validate:"required,max=200"`
	AllergiesOther           string   `form:"allergiesOther" json:"allergiesOther" validate:"required_if=Allergies Other,max=200"`
	SpecialRequest           string   `form:"specialRequest" json:"specialRequest" validate:"max=1000"`
	HowYouHeard              string   `form:"howYouHeard" json:"howYouHeard" validate:"required,max=200"`
	WhyAttend                string   `form:"whyAttend" json:"whyAttend" validate:"required,max=1000"`

	CodeOfConductUBHacking Checkbox `form:"codeOfConductUBHacking" json:"codeOfConductUBHacking" validate:"required"`
	CodeOfConductMLH       Checkbox `form:"codeOfConductMLH" json:"codeOfConductMLH" validate:"required"`
	DataSharingMLH         Checkbox `form:"dataSharingMLH" json:"dataSharingMLH" validate:"required"`
	CommunicationMLH       Checkbox `form:"communicationMLH" json:"communicationMLH"`
}

var validate = newValidator()

// newValidator reports field errors under the json (form) name, so the
// client can attach them to inputs directly.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate implements validation.Validatable.
func (f *RegistrationForm) Validate() error {
	return validate.Struct(f)
}

// Registration is one row of the registration table.
type Registration struct {
	ID        uuid.UUID `json:"id" db:"id"`
	CreatedBy string    `json:"created_by" db:"created_by"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	ContactEmail  string `json:"contact_email" db:"contact_email"`
	NameFirst     string `json:"name_first" db:"name_first"`
	NameLast      string `json:"name_last" db:"name_last"`
	DOB           string `json:"dob" db:"dob"`
	Phone         string `json:"phone" db:"phone"`
	Gender        string `json:"gender" db:"gender"`
	RaceEthnicity string `json:"race_ethnicity" db:"race_ethnicity"`
	Country       string `json:"country" db:"country"`

	SchoolName     string `json:"school_name" db:"school_name"`
	SchoolMajor    string `json:"school_major" db:"school_major"`
	LevelOfStudy   string `json:"level_of_study" db:"level_of_study"`
	GraduationYear string `json:"graduation_year" db:"graduation_year"`

	Address1 string `json:"address1" db:"address1"`
	City     string `json:"city" db:"city"`
	State    string `json:"state" db:"state"`
	ZipCode  string `json:"zip_code" db:"zip_code"`

	IsAttendingInPerson      bool   `json:"is_attending_in_person" db:"is_attending_in_person"`
	ShirtSize                string `json:"shirt_size" db:"shirt_size"`
	DietaryRestrictions      string `json:"dietary_restrictions" db:"dietary_restrictions"`
	DietaryRestrictionsOther string `json:"dietary_restrictions_other" db:"dietary_restrictions_other"`
	Allergies                string `json:"allergies" db:"allergies"`
	AllergiesOther           string `json:"allergies_other" db:"allergies_other"`
	SpecialRequest           string `json:"special_request" db:"special_request"`
	HowYouHeard              string `json:"how_you_heard" db:"how_you_heard"`
	WhyAttend                string `json:"why_attend" db:"why_attend"`

	CodeOfConductUBHacking bool `json:"code_of_conduct_ub_hacking" db:"code_of_conduct_ub_hacking"`
	CodeOfConduct          bool `json:"code_of_conduct" db:"code_of_conduct"`
	DataSharing            bool `json:"data_sharing" db:"data_sharing"`
	Communication          bool `json:"communication" db:"communication"`
}

// ToRegistration renames form fields to their storage columns. Values
// are copied as-is. ID and CreatedAt are assigned by the database.
func ToRegistration(f RegistrationForm, createdBy string) Registration {
	return Registration{
		CreatedBy:                createdBy,
		ContactEmail:             f.ContactEmail,
		NameFirst:                f.NameFirst,
		NameLast:                 f.NameLast,
		DOB:                      f.DOB,
		Phone:                    f.Phone,
		Gender:                   f.Gender,
		RaceEthnicity:            f.RaceEthnicity,
		Country:                  f.Country,
		SchoolName:               f.SchoolName,
		SchoolMajor:              f.SchoolMajor,
		LevelOfStudy:             f.LevelOfStudy,
		GraduationYear:           f.GraduationYear,
		Address1:                 f.Address1,
		City:                     f.City,
		State:                    f.State,
		ZipCode:                  f.ZipCode,
		IsAttendingInPerson:      bool(f.IsAttendingInPerson),
		ShirtSize:                f.ShirtSize,
		DietaryRestrictions:      f.DietaryRestrictions,
		DietaryRestrictionsOther: f.DietaryRestrictionsOther,
		Allergies:                f.Allergies,
		AllergiesOther:           f.AllergiesOther,
		SpecialRequest:           f.SpecialRequest,
		HowYouHeard:              f.HowYouHeard,
		WhyAttend:                f.WhyAttend,
		CodeOfConductUBHacking:   bool(f.CodeOfConductUBHacking),
		CodeOfConduct:            bool(f.CodeOfConductMLH),
		DataSharing:              bool(f.DataSharingMLH),
		Communication:            bool(f.CommunicationMLH),
	}
}

// FormState is the round-trip representation of one submission: the raw
// values, whether they passed validation, and any field errors.
type FormState struct {
	Data   RegistrationForm  `json:"data"`
	Valid  bool              `json:"valid"`
	Errors []errs.FieldError `json:"errors,omitempty"`
}

// NewFormState wraps a form that has not been validated.
func NewFormState(f RegistrationForm) FormState {
	return FormState{Data: f}
}

// EchoForm implements validation.FormEchoer.
func (f *RegistrationForm) EchoForm(fieldErrors []errs.FieldError) any {
	return FormState{Data: *f, Valid: false, Errors: fieldErrors}
}

// LoadResponse is returned by the registration page loader.
type LoadResponse struct {
	Form               FormState     `json:"form"`
	ExistingSubmission *Registration `json:"existingSubmission"`
}

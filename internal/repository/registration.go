package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/deppfellow/hackreg/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the subset of pgxpool.Pool used by repositories. A pgx.Tx also
// satisfies it.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// registrationInsertColumns are the columns written from a mapped form.
var registrationInsertColumns = []string{
	"created_by",
	"contact_email",
	"name_first",
	"name_last",
	"dob",
	"phone",
	"gender",
	"race_ethnicity",
	"country",
	"school_name",
	"school_major",
	"level_of_study",
	"graduation_year",
	"address1",
	"city",
	"state",
	"zip_code",
	"is_attending_in_person",
	"shirt_size",
	"dietary_restrictions",
	"dietary_restrictions_other",
	"allergies",
	"allergies_other",
	"special_request",
	"how_you_heard",
	"why_attend",
	"code_of_conduct_ub_hacking",
	"code_of_conduct",
	"data_sharing",
	"communication",
}

var (
	registrationSelectColumns = "id, created_at, " + strings.Join(registrationInsertColumns, ", ")

	findRegistrationByCreatorSQL = `SELECT ` + registrationSelectColumns + `
FROM registration
WHERE created_by = @created_by
LIMIT 1`

	insertRegistrationSQL = fmt.Sprintf(`INSERT INTO registration (%s)
VALUES (@%s)
RETURNING id, created_at`,
		strings.Join(registrationInsertColumns, ", "),
		strings.Join(registrationInsertColumns, ", @"),
	)
)

// RegistrationRepository reads and writes the registration table.
type RegistrationRepository struct {
	db DBTX
}

func NewRegistrationRepository(db DBTX) *RegistrationRepository {
	return &RegistrationRepository{db: db}
}

// FindByCreator returns one registration made by userID, or nil if there
// is none. Rows are not ordered, so with several submissions any one of
// them may be returned.
func (r *RegistrationRepository) FindByCreator(ctx context.Context, userID string) (*model.Registration, error) {
	rows, err := r.db.Query(ctx, findRegistrationByCreatorSQL, pgx.NamedArgs{"created_by": userID})
	if err != nil {
		return nil, fmt.Errorf("table:registration: query by creator: %w", err)
	}

	found, err := pgx.CollectRows(rows, pgx.RowToStructByName[model.Registration])
	if err != nil {
		return nil, fmt.Errorf("table:registration: collect rows: %w", err)
	}

	if len(found) == 0 {
		return nil, nil
	}
	return &found[0], nil
}

// Insert stores reg and fills in its generated id and created_at.
func (r *RegistrationRepository) Insert(ctx context.Context, reg *model.Registration) error {
	err := r.db.QueryRow(ctx, insertRegistrationSQL, insertArgs(reg)).Scan(&reg.ID, &reg.CreatedAt)
	if err != nil {
		return fmt.Errorf("table:registration: insert: %w", err)
	}
	return nil
}

func insertArgs(reg *model.Registration) pgx.NamedArgs {
	return pgx.NamedArgs{
		"created_by":                 reg.CreatedBy,
		"contact_email":              reg.ContactEmail,
		"name_first":                 reg.NameFirst,
		"name_last":                  reg.NameLast,
		"dob":                        reg.DOB,
		"phone":                      reg.Phone,
		"gender":                     reg.Gender,
		"race_ethnicity":             reg.RaceEthnicity,
		"country":                    reg.Country,
		"school_name":                reg.SchoolName,
		"school_major":               reg.SchoolMajor,
		"level_of_study":             reg.LevelOfStudy,
		"graduation_year":            reg.GraduationYear,
		"address1":                   reg.Address1,
		"city":                       reg.City,
		"state":                      reg.State,
		"zip_code":                   reg.ZipCode,
		"is_attending_in_person":     reg.IsAttendingInPerson,
		"shirt_size":                 reg.ShirtSize,
		"dietary_restrictions":       reg.DietaryRestrictions,
		"dietary_restrictions_other": reg.DietaryRestrictionsOther,
		"allergies":                  reg.Allergies,
		"allergies_other":            reg.AllergiesOther,
		"special_request":            reg.SpecialRequest,
		"how_you_heard":              reg.HowYouHeard,
		"why_attend":                 reg.WhyAttend,
		"code_of_conduct_ub_hacking": reg.CodeOfConductUBHacking,
		"code_of_conduct":            reg.CodeOfConduct,
		"data_sharing":               reg.DataSharing,
		"communication":              reg.Communication,
	}
}

package email

// Template names an embedded email template.
type Template string

const (
	// TemplateRegistrationConfirmed is templates/registration_confirmed.html.
	TemplateRegistrationConfirmed Template = "registration_confirmed"
)

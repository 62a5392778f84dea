package email

// PreviewData holds sample values for every template, keyed by template
// name and then by template variable.
var PreviewData = map[Template]map[string]string{
	TemplateRegistrationConfirmed: {
		"FirstName":    "Ada",
		"ContactEmail": "ada@example.com",
		"EventName":    EventName,
	},
}

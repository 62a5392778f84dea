package email

// EventName appears in the subject and body of registration emails.
const EventName = "UB Hacking"

// SendRegistrationConfirmedEmail tells a registrant their form was received.
func (c *Client) SendRegistrationConfirmedEmail(to, firstName string) error {
	data := map[string]string{
		"FirstName":    firstName,
		"ContactEmail": to,
		"EventName":    EventName,
	}

	return c.SendEmail(
		to,
		"We received your "+EventName+" registration",
		TemplateRegistrationConfirmed,
		data,
	)
}

// internal/schema/routes.go
package schema

const (
	RouteCompensation = "compensation"
	RoutePolicy       = "policy"
)

// Default returns the registry with the built-in routes.
func Default() *Registry {
	return NewRegistry(Compensation(), Policy())
}

// Compensation is the schema for compensation package predictions.
func Compensation() RouteSchema {
	return RouteSchema{
		Route: RouteCompensation,
		Opener: "**Let's figure out the compensation package.**\n\n" +
			"Tell me about the relocation. Include any details you know, such as:\n" +
			"- Where the employee is moving from and to\n" +
			"- Their current salary\n" +
			"- How long the assignment will last\n" +
			"- Whether family is coming along\n" +
			"- Their role or seniority level\n\n" +
			"Describe the situation in your own words and I'll ask follow-up questions for anything I still need.",
		Fields: []Field{
			{Key: "origin_location", Label: "Origin Location", Description: "Employee's current city and country", Type: TypeText, Required: true},
			{Key: "destination_location", Label: "Destination Location", Description: "Where the employee will relocate to", Type: TypeText, Required: true},
			{Key: "current_compensation", Label: "Current Compensation", Description: "Annual salary with currency", Type: TypeMoney, Required: true},
			{Key: "assignment_duration", Label: "Assignment Duration", Description: "How long the assignment will last", Type: TypeDuration, Required: true},
			{Key: "job_level", Label: "Job Level/Title", Description: "Employee's position or seniority level", Type: TypeText, Required: true},
			{Key: "family_size", Label: "Family Size", Description: "Number of family members relocating, including the employee", Type: TypeCount, Required: true},
			{Key: "housing_preference", Label: "Housing Preference", Description: "Preferred housing arrangement", Type: TypeChoice, Required: true},
		},
	}
}

// Policy is the schema for assignment policy analysis.
func Policy() RouteSchema {
	return RouteSchema{
		Route: RoutePolicy,
		Opener: "**Let's analyze the policy requirements.**\n\n" +
			"Tell me about the international assignment. Include details like:\n" +
			"- Which countries are involved\n" +
			"- What type of assignment (short-term, long-term, permanent)\n" +
			"- How long it will be\n" +
			"- The employee's role or title\n\n" +
			"Describe the situation naturally and I'll ask for any missing details.",
		Fields: []Field{
			{Key: "origin_country", Label: "Origin Country", Description: "Employee's current country", Type: TypeText, Required: true},
			{Key: "destination_country", Label: "Destination Country", Description: "Country they're relocating to", Type: TypeText, Required: true},
			{Key: "assignment_type", Label: "Assignment Type", Description: "Type of assignment (Short-term, Long-term, Permanent)", Type: TypeChoice, Required: true},
			{Key: "assignment_duration", Label: "Assignment Duration", Description: "Duration of the assignment", Type: TypeDuration, Required: true},
			{Key: "job_title", Label: "Job Title", Description: "Employee's job title or position", Type: TypeText, Required: true},
		},
	}
}

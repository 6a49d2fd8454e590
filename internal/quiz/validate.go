package quiz

// Validate checks that a question's payload matches its type. It returns
// a *ConfigurationError that must block the save.
func (q Question) Validate() error {
	if q.Points < 0 {
		return &ConfigurationError{Field: "points", Reason: "must be non-negative"}
	}
	switch q.Type {
	case MultipleChoice:
		if len(q.Choices) < 2 {
			return &ConfigurationError{Field: "choices", Reason: "multiple choice needs at least 2 choices"}
		}
		found := false
		for _, c := range q.Choices {
			if c == q.CorrectChoice {
				found = true
				break
			}
		}
		if !found {
			return &ConfigurationError{Field: "correct_choice", Reason: "must equal one of the choices"}
		}
		if len(q.CorrectBlanks) != 0 {
			return &ConfigurationError{Field: "correct_blanks", Reason: "not allowed for multiple choice"}
		}
	case TrueFalse:
		if len(q.Choices) != 0 || q.CorrectChoice != "" || len(q.CorrectBlanks) != 0 {
			return &ConfigurationError{Field: "payload", Reason: "true/false carries only a boolean key"}
		}
	case FillInBlank:
		if len(q.CorrectBlanks) == 0 {
			return &ConfigurationError{Field: "correct_blanks", Reason: "fill in the blank needs at least 1 blank"}
		}
		if len(q.Choices) != 0 || q.CorrectChoice != "" {
			return &ConfigurationError{Field: "choices", Reason: "not allowed for fill in the blank"}
		}
	default:
		return &ConfigurationError{Field: "type", Reason: "unknown question type: " + string(q.Type)}
	}
	return nil
}

// Validate checks the quiz's own fields.
func (z Quiz) Validate() error {
	if z.Title == "" {
		return &ConfigurationError{Field: "title", Reason: "required"}
	}
	if z.Points < 0 {
		return &ConfigurationError{Field: "points", Reason: "must be non-negative"}
	}
	if z.MultipleAttempts && z.MaxAttempts < 1 {
		return &ConfigurationError{Field: "max_attempts", Reason: "must be >= 1 when multiple attempts are allowed"}
	}
	if z.TimeLimitMin < 0 {
		return &ConfigurationError{Field: "time_limit_min", Reason: "must be >= 0 (0 = unlimited)"}
	}
	if z.AvailableFrom != nil && z.AvailableUntil != nil && z.AvailableUntil.Before(*z.AvailableFrom) {
		return &ConfigurationError{Field: "available_until", Reason: "must not precede available_from"}
	}
	return nil
}

// ResetPayload clears the answer payload and seeds the empty shape for
// the question's current type. The editor calls this when faculty switch
// a question's type; it is an authoring convenience, not a storage rule.
func (q *Question) ResetPayload() {
	q.Choices = nil
	q.CorrectChoice = ""
	q.CorrectBool = false
	q.CorrectBlanks = nil
	switch q.Type {
	case MultipleChoice:
		q.Choices = []string{"", ""}
	case FillInBlank:
		q.CorrectBlanks = []string{""}
	}
}

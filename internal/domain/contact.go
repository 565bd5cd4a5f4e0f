package domain

// ContactSubmission is a single contact form post. It is never persisted.
type ContactSubmission struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone,omitempty"`
	Subject string `json:"subject" validate:"required"`
	Message string `json:"message" validate:"required"`
}

// PreviewLinks point at retrievable copies of sandbox deliveries.
type PreviewLinks struct {
	Owner  string `json:"owner"`
	Sender string `json:"sender"`
}

// DispatchResult reports the outcome of sending the contact emails.
type DispatchResult struct {
	Success      bool
	ErrorMessage string
	PreviewLinks *PreviewLinks
	// Simulated is set when a development transport failure was reported as
	// success.
	Simulated bool
}

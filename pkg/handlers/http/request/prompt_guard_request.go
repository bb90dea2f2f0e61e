package request

import "fmt"

// PromptGuardRequest carries raw text for injection screening.
type PromptGuardRequest struct {
	Text string `json:"text"`
}

func (r *PromptGuardRequest) Validate() error {
	if r.Text == "" {
		return ErrMissingField("text")
	}
	return nil
}

// ErrMissingField reports a required request field left empty.
func ErrMissingField(name string) error {
	return fmt.Errorf("%s is required", name)
}

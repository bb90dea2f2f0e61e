package request

// ToolGuardRequest carries one agent tool call for scoring. Only
// user_request is required; the other fields default to empty strings, which
// the prompt template embeds as-is.
type ToolGuardRequest struct {
	UserRequest        string `json:"user_request"`
	InteractionHistory string `json:"interaction_history"`
	CurrentAction      string `json:"current_action"`
	EnvInfo            string `json:"env_info"`
}

func (r *ToolGuardRequest) Validate() error {
	if r.UserRequest == "" {
		return ErrMissingField("user_request")
	}
	return nil
}

package guard

// Interaction is a single agent step submitted for safety scoring.
// All fields are opaque text; absent fields default to the empty string.
type Interaction struct {
	UserRequest        string `json:"user_request"`
	InteractionHistory string `json:"interaction_history"`
	CurrentAction      string `json:"current_action"`
	EnvInfo            string `json:"env_info"`
}

package provider

// Record summarizes one provider for introspection: the models it
// serves, which of those need credentials, and the configured credential
// key names. Records are derived from the registries after the build
// phase; they are descriptive only.
type Record struct {
	Name                   string   `json:"name"`
	Models                 []string `json:"models"`
	RequiresCredentialsFor []string `json:"requires_credentials_for,omitempty"`
	CredentialKeys         []string `json:"credential_keys,omitempty"`
}

package api

// Credential carries the bearer token and endpoint base URL for one
// orchestration run. It is immutable after construction and its token is
// never exposed through logging or formatting.
type Credential struct {
	host  string
	token string
}

// NewCredential creates a credential for the given endpoint and token.
// Validation happens in the config package before construction; the
// credential itself is a dumb carrier.
func NewCredential(host, token string) Credential {
	return Credential{host: host, token: token}
}

// Host returns the endpoint base URL.
func (c Credential) Host() string {
	return c.host
}

// authorization returns the value for the Authorization header.
func (c Credential) authorization() string {
	return "Bearer " + c.token
}

// String implements fmt.Stringer with the token redacted.
func (c Credential) String() string {
	return "Credential{host: " + c.host + ", token: [redacted]}"
}

package types

// RedactionKind identifies the kind of sensitive token that was redacted
type RedactionKind string

const (
	RedactionAPIKey           RedactionKind = "APIKey"
	RedactionBearerToken      RedactionKind = "BearerToken"
	RedactionAWSAccessKey     RedactionKind = "AWSAccessKey"
	RedactionGCPKey           RedactionKind = "GCPKey"
	RedactionPassword         RedactionKind = "Password"
	RedactionCreditCard       RedactionKind = "CreditCard"
	RedactionSSN              RedactionKind = "SSN"
	RedactionPrivateKey       RedactionKind = "PrivateKey"
	RedactionConnectionString RedactionKind = "ConnectionString"
	RedactionCredentialPair   RedactionKind = "CredentialPair"
)

// String returns the string representation of the redaction kind
func (k RedactionKind) String() string {
	return string(k)
}

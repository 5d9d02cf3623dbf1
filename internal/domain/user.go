package domain

// User is a custodial wallet owner.
// Corresponds to users table in PostgreSQL. SecretText is the encoded signing
// secret as stored at signup; it is decoded per swap invocation and must never
// appear in logs or error messages.
type User struct {
	PublicKey  string // wallet address, PRIMARY KEY
	SecretText string // base58 or base64 encoded signing secret
	CreatedAt  int64  // record creation timestamp (ms)
}

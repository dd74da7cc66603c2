// Package credentials carries storage secrets given on the command line or in the
// environment, shared by every upload target that does not bring its own.
package credentials

type Creds struct {
	AWS AWSCreds
	SMB SMBCreds
}

// AWSCreds apply to s3:// targets. Empty fields fall back to the AWS SDK defaults.
type AWSCreds struct {
	AccessKeyID     string
	SecretAccessKey string
	Region          string
	// Endpoint replaces s3.<region>.amazonaws.com, for s3-compatible services.
	Endpoint string
	// PathStyle addresses buckets as endpoint/bucket rather than bucket.endpoint.
	PathStyle bool
}

// SMBCreds apply to smb:// targets. User information in the URL is used when they are empty.
type SMBCreds struct {
	Domain   string
	Username string
	Password string
}

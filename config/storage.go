package config

import "strings"

// StorageProviderKind selects where uploaded images are written.
type StorageProviderKind string

const (
	StorageLocal StorageProviderKind = "local"
	StorageS3    StorageProviderKind = "s3"
)

// StorageConfig selects and configures the upload storage provider.
type StorageConfig struct {
	Provider StorageProviderKind `env:"STORAGE_PROVIDER" envDefault:"local"`

	// LocalRoot is the directory whose "uploads" subtree is served at /uploads/.
	LocalRoot string `env:"STORAGE_LOCAL_ROOT" envDefault:"public"`

	S3 S3Config `envPrefix:"S3_"`
}

// S3Config configures an S3-compatible bucket (AWS or MinIO).
type S3Config struct {
	Bucket          string `env:"BUCKET"`
	Region          string `env:"REGION"            envDefault:"us-east-1"`
	Endpoint        string `env:"ENDPOINT"`
	AccessKeyID     string `env:"ACCESS_KEY_ID"`
	SecretAccessKey string `env:"SECRET_ACCESS_KEY"`
	PublicBaseURL   string `env:"PUBLIC_BASE_URL"`
	UsePathStyle    bool   `env:"USE_PATH_STYLE"    envDefault:"false"`
}

// Sanitize normalises the provider name and falls back to local storage when
// S3 is selected without a bucket.
func (s *StorageConfig) Sanitize() {
	s.Provider = StorageProviderKind(strings.ToLower(strings.TrimSpace(string(s.Provider))))
	if s.LocalRoot = strings.TrimSpace(s.LocalRoot); s.LocalRoot == "" {
		s.LocalRoot = "public"
	}
	s.S3.Bucket = strings.TrimSpace(s.S3.Bucket)
	s.S3.Endpoint = strings.TrimSpace(s.S3.Endpoint)
	s.S3.PublicBaseURL = strings.TrimRight(strings.TrimSpace(s.S3.PublicBaseURL), "/")

	switch s.Provider {
	case StorageS3:
		if s.S3.Bucket == "" {
			s.Provider = StorageLocal
		}
	default:
		s.Provider = StorageLocal
	}
}

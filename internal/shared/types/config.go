package types

// Config represents the application configuration that can be loaded from a
// file or from TICKET_REPORTS_* environment variables.
// Flags explicitly set on the command line take precedence over both.
type Config struct {
	Input      string   `json:"input" yaml:"input" toml:"input" envconfig:"INPUT"`
	Sheet      string   `json:"sheet" yaml:"sheet" toml:"sheet" envconfig:"SHEET"`
	ReportType []string `json:"report_type" yaml:"report_type" toml:"report_type" envconfig:"REPORT_TYPE" validate:"dive,oneof=xlsx csv json pdf"`
	Dir        string   `json:"dir" yaml:"dir" toml:"dir" envconfig:"DIR"`
	Workers    int      `json:"workers" yaml:"workers" toml:"workers" envconfig:"WORKERS" validate:"gte=0,lte=32"`
	S3Bucket   string   `json:"s3_bucket" yaml:"s3_bucket" toml:"s3_bucket" envconfig:"S3_BUCKET"`
	S3Prefix   string   `json:"s3_prefix" yaml:"s3_prefix" toml:"s3_prefix" envconfig:"S3_PREFIX"`
	Profile    string   `json:"profile" yaml:"profile" toml:"profile" envconfig:"PROFILE"`
}

package types

// CLIArgs represents the command-line arguments.
type CLIArgs struct {
	ConfigFile string
	Input      string
	Sheet      string
	ReportType []string
	Dir        string
	Workers    int
	S3Bucket   string
	S3Prefix   string
	Profile    string
	NoBanner   bool
}

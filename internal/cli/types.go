package cli

type globalOptions struct {
	ConfigPath string
	LogLevel   string
	Encoding   string
}

type listOptions struct {
	Prefix string
	Suffix string
}

type putOptions struct {
	From        string
	ContentType string
}

type jobNewOptions struct {
	Prefix string
}

type jobListOptions struct {
	Prefix string
}

type jobCleanOptions struct {
	Prefix string
	Keep   int
	DryRun bool
}

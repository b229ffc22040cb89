package cli

import (
	"errors"
	"os"

	"github.com/spf13/pflag"
)

func newFlagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	return fs
}

func parseGlobalArgs(args []string, defaultConfig string) (globalOptions, []string, error) {
	fs := newFlagSet("artifactctl")
	fs.SetInterspersed(false)

	opts := globalOptions{}
	fs.StringVar(&opts.ConfigPath, "config", defaultConfig, "path to config file")
	fs.StringVar(&opts.LogLevel, "log-level", "", "override log level (debug|info|warn|error|none)")
	fs.StringVar(&opts.Encoding, "encoding", "", "text encoding for cat/put of text artifacts")

	if err := fs.Parse(args); err != nil {
		return globalOptions{}, nil, err
	}
	return opts, fs.Args(), nil
}

func parseListArgs(args []string) (listOptions, string, error) {
	fs := newFlagSet("ls")

	var opts listOptions
	fs.StringVar(&opts.Prefix, "prefix", "", "only list files under this relative prefix")
	fs.StringVar(&opts.Suffix, "suffix", "", "only list files whose names end with this suffix")

	if err := fs.Parse(args); err != nil {
		return listOptions{}, "", err
	}
	rest := fs.Args()
	if len(rest) != 1 {
		return listOptions{}, "", errors.New("usage: artifactctl ls [--prefix p] [--suffix s] <base>")
	}
	return opts, rest[0], nil
}

func parsePutArgs(args []string) (putOptions, string, error) {
	fs := newFlagSet("put")

	var opts putOptions
	fs.StringVarP(&opts.From, "from", "f", "", "read the payload from this local file instead of stdin")
	fs.StringVar(&opts.ContentType, "content-type", "", "content type recorded with the object on object stores")

	if err := fs.Parse(args); err != nil {
		return putOptions{}, "", err
	}
	rest := fs.Args()
	if len(rest) != 1 {
		return putOptions{}, "", errors.New("usage: artifactctl put [--from file] [--content-type type] <path>")
	}
	return opts, rest[0], nil
}

func parseJobNewArgs(args []string) (jobNewOptions, string, error) {
	fs := newFlagSet("job new")

	var opts jobNewOptions
	fs.StringVar(&opts.Prefix, "prefix", "job", "job id prefix")

	if err := fs.Parse(args); err != nil {
		return jobNewOptions{}, "", err
	}
	rest := fs.Args()
	if len(rest) != 1 {
		return jobNewOptions{}, "", errors.New("usage: artifactctl job new [--prefix name] <storage>")
	}
	if opts.Prefix == "" {
		return jobNewOptions{}, "", errors.New("prefix must not be empty")
	}
	return opts, rest[0], nil
}

func parseJobListArgs(args []string) (jobListOptions, string, error) {
	fs := newFlagSet("job ls")

	var opts jobListOptions
	fs.StringVar(&opts.Prefix, "prefix", "", "only list jobs with this prefix")

	if err := fs.Parse(args); err != nil {
		return jobListOptions{}, "", err
	}
	rest := fs.Args()
	if len(rest) != 1 {
		return jobListOptions{}, "", errors.New("usage: artifactctl job ls [--prefix name] <storage>")
	}
	return opts, rest[0], nil
}

func parseJobCleanArgs(args []string) (jobCleanOptions, string, error) {
	fs := newFlagSet("job clean")

	var opts jobCleanOptions
	fs.StringVar(&opts.Prefix, "prefix", "job", "only remove jobs with this prefix")
	fs.IntVar(&opts.Keep, "keep", 10, "number of most recent jobs to keep")
	fs.BoolVar(&opts.DryRun, "dry-run", false, "show jobs that would be removed without deleting")

	if err := fs.Parse(args); err != nil {
		return jobCleanOptions{}, "", err
	}
	rest := fs.Args()
	if len(rest) != 1 {
		return jobCleanOptions{}, "", errors.New("usage: artifactctl job clean [--prefix name] [--keep n] [--dry-run] <storage>")
	}
	if opts.Keep < 0 {
		return jobCleanOptions{}, "", errors.New("keep must be >= 0")
	}
	return opts, rest[0], nil
}

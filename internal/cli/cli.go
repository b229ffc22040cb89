package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/electric-coding/artifactstore"
	"github.com/electric-coding/artifactstore/internal/state"
	"github.com/electric-coding/artifactstore/jobs"
)

const usage = "usage: artifactctl [--config path] [--log-level level] [--encoding name] path|cat|put|ls|rm|cp|exists|job ..."

func Run(args []string) error {
	defaultConfig, err := state.ConfigPath()
	if err != nil {
		return err
	}

	global, rest, err := parseGlobalArgs(args, defaultConfig)
	if err != nil {
		return err
	}
	if len(rest) == 0 {
		return usageError()
	}

	sess, err := newSession(global)
	if err != nil {
		return err
	}
	defer sess.close()

	cmd, cmdArgs := rest[0], rest[1:]
	switch cmd {
	case "path":
		return runPath(sess, cmdArgs)
	case "cat":
		if len(cmdArgs) != 1 {
			return errors.New("usage: artifactctl cat <path>")
		}
		return runCat(sess, cmdArgs[0])
	case "put":
		opts, target, err := parsePutArgs(cmdArgs)
		if err != nil {
			return err
		}
		return runPut(sess, opts, target)
	case "ls":
		opts, base, err := parseListArgs(cmdArgs)
		if err != nil {
			return err
		}
		return runList(sess, opts, base)
	case "rm":
		if len(cmdArgs) != 1 {
			return errors.New("usage: artifactctl rm <path>")
		}
		return runRemove(sess, cmdArgs[0])
	case "cp":
		if len(cmdArgs) != 2 {
			return errors.New("usage: artifactctl cp <src> <dest>")
		}
		return runCopy(sess, cmdArgs[0], cmdArgs[1])
	case "exists":
		if len(cmdArgs) != 1 {
			return errors.New("usage: artifactctl exists <path>")
		}
		return runExists(sess, cmdArgs[0])
	case "job":
		return runJob(sess, cmdArgs)
	default:
		return usageError()
	}
}

func usageError() error {
	return errors.New(usage)
}

func runPath(sess *session, args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return errors.New("usage: artifactctl path <base> [relative]")
	}
	store, err := sess.open(args[0])
	if err != nil {
		return err
	}
	rel := ""
	if len(args) == 2 {
		rel = args[1]
	}
	fmt.Println(store.FullPath(rel))
	return nil
}

func runCat(sess *session, target string) error {
	store, name, err := sess.openFile(target)
	if err != nil {
		return err
	}
	data, err := store.ReadBytes(name)
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(data)
	return err
}

func runPut(sess *session, opts putOptions, target string) error {
	var (
		data []byte
		err  error
	)
	if opts.From != "" {
		data, err = os.ReadFile(opts.From)
	} else {
		data, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		return fmt.Errorf("read payload: %w", err)
	}

	store, name, err := sess.openFile(target)
	if err != nil {
		return err
	}
	if err := store.WriteBytes(name, data, artifactstore.ContentType(opts.ContentType)); err != nil {
		return err
	}
	fmt.Printf("wrote %d bytes to %s\n", len(data), store.FullPath(name))
	return nil
}

func runList(sess *session, opts listOptions, base string) error {
	store, err := sess.open(base)
	if err != nil {
		return err
	}
	files, err := store.ListFiles(opts.Prefix, opts.Suffix)
	if err != nil {
		return err
	}
	for _, f := range files {
		fmt.Println(f)
	}
	return nil
}

func runRemove(sess *session, target string) error {
	store, err := sess.open(target)
	if err != nil {
		return err
	}
	if err := store.Delete(""); err != nil {
		return err
	}
	fmt.Printf("removed %s\n", store.BasePath())
	return nil
}

func runCopy(sess *session, src, dest string) error {
	srcStore, srcName, err := sess.openFile(src)
	if err != nil {
		return err
	}
	destStore, destName, err := sess.openFile(dest)
	if err != nil {
		return err
	}
	if err := srcStore.CopyTo(srcName, destStore, destName); err != nil {
		return err
	}
	fmt.Printf("copied %s -> %s\n", srcStore.FullPath(srcName), destStore.FullPath(destName))
	return nil
}

func runExists(sess *session, target string) error {
	store, name, err := sess.openFile(target)
	if err != nil {
		return err
	}
	fmt.Println(store.Exists(name))
	return nil
}

func runJob(sess *session, args []string) error {
	if len(args) == 0 {
		return errors.New("missing job subcommand (new|ls|clean)")
	}
	switch args[0] {
	case "new":
		opts, storage, err := parseJobNewArgs(args[1:])
		if err != nil {
			return err
		}
		job := jobs.Create(storage, opts.Prefix)
		p, err := job.Path()
		if err != nil {
			return err
		}
		fmt.Printf("%s\t%s\n", job.ID, p)
		return nil
	case "ls":
		opts, storage, err := parseJobListArgs(args[1:])
		if err != nil {
			return err
		}
		root, err := sess.open(storage)
		if err != nil {
			return err
		}
		ids, err := jobs.List(root, opts.Prefix)
		if err != nil {
			return err
		}
		for _, id := range ids {
			fmt.Println(id)
		}
		return nil
	case "clean":
		opts, storage, err := parseJobCleanArgs(args[1:])
		if err != nil {
			return err
		}
		return runJobClean(sess, opts, storage)
	default:
		return errors.New("unknown job subcommand")
	}
}

func runJobClean(sess *session, opts jobCleanOptions, storage string) error {
	root, err := sess.open(storage)
	if err != nil {
		return err
	}

	if opts.DryRun {
		ids, err := jobs.List(root, opts.Prefix)
		if err != nil {
			return err
		}
		stale := []string{}
		if len(ids) > opts.Keep {
			stale = ids[:len(ids)-opts.Keep]
		}
		for _, id := range stale {
			fmt.Printf("would remove %s\n", id)
		}
		fmt.Printf("job clean dry-run: remove=%d keep=%d\n", len(stale), len(ids)-len(stale))
		return nil
	}

	removed, err := jobs.Cleanup(root, opts.Prefix, opts.Keep)
	if err != nil {
		return err
	}
	for _, id := range removed {
		fmt.Printf("removed %s\n", id)
	}
	fmt.Printf("job clean complete: removed=%d\n", len(removed))
	return nil
}

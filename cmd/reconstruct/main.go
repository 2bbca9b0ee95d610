package main

import (
	"context"
	"os"
	"runtime"

	"github.com/urfave/cli/v3"

	"github.com/arjunmahishi/reconstruct/output"
	"github.com/arjunmahishi/reconstruct/reconstruct"
	"github.com/arjunmahishi/reconstruct/util/logging"
)

func main() {
	app := &cli.Command{
		Name:  "reconstruct",
		Usage: "replace service-locator lookups with constructor injection",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "log verbosity (3 files, 5 migrations, 7 skipped lookups, 9 tree walks)",
			},
			&cli.BoolFlag{
				Name:  "logtostderr",
				Usage: "log to standard error instead of files",
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			logging.InitLogging(cmd.Bool("logtostderr"), cmd.Int("verbose"), false)
			return ctx, nil
		},
		Commands: []*cli.Command{
			processCommand(),
			locateCommand(),
			servicesCommand(),
			exampleConfigCommand(),
		},
	}

	err := app.Run(context.Background(), os.Args)
	logging.Flush()
	if err != nil {
		output.WriteError(os.Stderr, err)
		os.Exit(1)
	}
}

// scanFlags select the files a command works on.
func scanFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "path",
			Value: ".",
			Usage: "root path to scan",
		},
		&cli.StringFlag{
			Name:    "file",
			Aliases: []string{"f"},
			Usage:   "single file to process",
		},
		&cli.StringFlag{
			Name:  "language",
			Usage: "only process this language (typescript, tsx)",
		},
		&cli.IntFlag{
			Name:    "jobs",
			Aliases: []string{"j"},
			Value:   runtime.NumCPU(),
			Usage:   "number of parallel workers",
		},
		&cli.Int64Flag{
			Name:  "max-bytes",
			Value: 2 * 1024 * 1024,
			Usage: "skip files larger than this",
		},
		&cli.StringFlag{
			Name:  "lookup",
			Usage: "locator method name (default from config, else \"get\")",
		},
	}
}

// containerFlags configure the container boot.
func containerFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "config",
			Usage: "run configuration file (default: reconstruct.toml found upwards from --path)",
		},
		&cli.StringFlag{
			Name:  "manifest",
			Usage: "service manifest (.toml, .yaml or .yml)",
		},
		&cli.StringFlag{
			Name:  "env",
			Usage: "container environment (default \"dev\")",
		},
		&cli.BoolFlag{
			Name:  "debug",
			Usage: "boot the container with debug classes (default true)",
		},
		&cli.StringFlag{
			Name:  "cache-dir",
			Usage: "directory the container writes its service map to, removed when the run ends",
		},
		&cli.StringSliceFlag{
			Name:  "strip-suffix",
			Usage: "suffix removed from type names before they become member names (repeatable)",
		},
	}
}

func compactFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:  "compact",
		Usage: "minimize output",
	}
}

func options(cmd *cli.Command) reconstruct.Options {
	opts := reconstruct.Options{
		Path:        cmd.String("path"),
		File:        cmd.String("file"),
		Language:    cmd.String("language"),
		Jobs:        cmd.Int("jobs"),
		MaxBytes:    cmd.Int64("max-bytes"),
		LookupName:  cmd.String("lookup"),
		Config:      cmd.String("config"),
		Manifest:    cmd.String("manifest"),
		Environment: cmd.String("env"),
		CacheDir:    cmd.String("cache-dir"),
	}
	if cmd.IsSet("debug") {
		debug := cmd.Bool("debug")
		opts.Debug = &debug
	}
	if cmd.IsSet("strip-suffix") {
		opts.StripSuffixes = cmd.StringSlice("strip-suffix")
	}
	return opts
}

func processCommand() *cli.Command {
	flags := append(scanFlags(), containerFlags()...)
	flags = append(flags,
		&cli.BoolFlag{
			Name:    "dry-run",
			Aliases: []string{"n"},
			Usage:   "compute the rewrite without writing files",
		},
		&cli.BoolFlag{
			Name:  "diff",
			Usage: "include a unified diff of every changed file",
		},
		compactFlag(),
	)
	return &cli.Command{
		Name:   "process",
		Usage:  "rewrite service lookups into constructor injection",
		Flags:  flags,
		Action: runProcess,
	}
}

func runProcess(ctx context.Context, cmd *cli.Command) error {
	opts := options(cmd)
	opts.DryRun = cmd.Bool("dry-run")
	opts.Diff = cmd.Bool("diff")

	results, err := reconstruct.Process(ctx, opts)
	if results != nil {
		if werr := writeJSON(results, cmd.Bool("compact")); werr != nil {
			return werr
		}
	}
	return err
}

func locateCommand() *cli.Command {
	return &cli.Command{
		Name:  "locate",
		Usage: "list service lookups without resolving them",
		Flags: append(scanFlags(),
			&cli.StringFlag{
				Name:  "config",
				Usage: "run configuration file (default: reconstruct.toml found upwards from --path)",
			},
			compactFlag(),
		),
		Action: runLocate,
	}
}

func runLocate(ctx context.Context, cmd *cli.Command) error {
	sites, err := reconstruct.Locate(ctx, options(cmd))
	if sites != nil {
		if werr := writeJSON(sites, cmd.Bool("compact")); werr != nil {
			return werr
		}
	}
	return err
}

func servicesCommand() *cli.Command {
	return &cli.Command{
		Name:  "services",
		Usage: "boot the container and list its services with their types",
		Flags: append(containerFlags(),
			&cli.StringFlag{
				Name:  "path",
				Value: ".",
				Usage: "directory to search for reconstruct.toml from",
			},
			compactFlag(),
		),
		Action: runServices,
	}
}

func runServices(_ context.Context, cmd *cli.Command) error {
	infos, err := reconstruct.Services(options(cmd))
	if err != nil {
		return err
	}
	return writeJSON(infos, cmd.Bool("compact"))
}

func writeJSON(v any, compact bool) error {
	return output.New(output.Config{Compact: compact}).Write(v)
}

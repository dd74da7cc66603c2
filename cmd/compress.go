package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/databacker/dir-archiver/pkg/compression"
	"github.com/databacker/dir-archiver/pkg/core"
	"github.com/databacker/dir-archiver/pkg/storage"
	"github.com/databacker/dir-archiver/pkg/util"
)

func compressCmd(passedExecs execs, cmdConfig *cmdConfiguration) (*cobra.Command, error) {
	if cmdConfig == nil {
		return nil, fmt.Errorf("cmdConfig is nil")
	}
	var v *viper.Viper
	var cmd = &cobra.Command{
		Use:     "compress <source-dir> <target-dir>",
		Aliases: []string{"pack"},
		Short:   "pack a directory into a compressed archive",
		Long: `Pack the contents of source-dir into one compressed tar archive in target-dir,
		once or on a schedule, optionally copying it to one or more upload targets.
		The archive is named archive.tar.<ext> unless --name is given.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if err := cobra.ExactArgs(2)(cmd, args); err != nil {
				return &argumentError{err}
			}
			if err := checkPathArg("source", args[0]); err != nil {
				return err
			}
			return checkPathArg("target directory", args[1])
		},
		PreRun: func(cmd *cobra.Command, args []string) {
			bindFlags(cmd.LocalFlags(), v)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdConfig.logger.Debug("starting compress")
			ctx := context.Background()
			tracer := getTracer("compress")
			defer flushTracer(ctx)
			ctx = util.ContextWithTracer(ctx, tracer)
			_, startupSpan := tracer.Start(ctx, "startup")

			flags := cmd.Flags()
			conf := cmdConfig.configuration

			// compression algorithm: check config, then CLI/env var overrides
			compressionAlgo := stringFlag(flags, "compression")
			if !flags.Changed("compression") && conf != nil && conf.Compress.Compression != "" {
				compressionAlgo = conf.Compress.Compression
			}
			level, _ := flags.GetUint("level")
			if !flags.Changed("level") && conf != nil && conf.Compress.Level != nil {
				level = *conf.Compress.Level
			}
			compressor, err := compression.GetCompressor(compressionAlgo, level)
			if err != nil {
				return classify(err)
			}
			alg := compressor.Algorithm()

			fileName := stringFlag(flags, "name")
			if fileName == "" && conf != nil {
				fileName = conf.Compress.FileName
			}
			safechars := boolFlag(flags, "safechars")
			if !flags.Changed("safechars") && conf != nil {
				safechars = conf.Compress.Safechars
			}
			// fail on a bad pattern now rather than at the first scheduled run
			if _, err := core.ProcessFilenamePattern(fileName, alg, time.Now(), safechars); err != nil {
				return &argumentError{fmt.Errorf("invalid archive name %q: %w", fileName, err)}
			}
			preCompressScripts := stringFlag(flags, "pre-compress-scripts")
			if preCompressScripts == "" && conf != nil {
				preCompressScripts = conf.Compress.Scripts.PreCompress
			}
			postCompressScripts := stringFlag(flags, "post-compress-scripts")
			if postCompressScripts == "" && conf != nil {
				postCompressScripts = conf.Compress.Scripts.PostCompress
			}

			targets, err := uploadTargets(flags.Changed("upload"), stringSliceFlag(flags, "upload"), cmdConfig)
			if err != nil {
				return &argumentError{err}
			}

			// timer options
			timerOpts := core.TimerOptions{
				Once:      boolFlag(flags, "once"),
				Cron:      stringFlag(flags, "cron"),
				Begin:     stringFlag(flags, "begin"),
				Frequency: intFlag(flags, "frequency"),
			}
			if conf != nil && !flags.Changed("once") && !flags.Changed("cron") && !flags.Changed("begin") && !flags.Changed("frequency") {
				timerOpts = core.TimerOptions{
					Once:      conf.Compress.Schedule.Once,
					Cron:      conf.Compress.Schedule.Cron,
					Begin:     conf.Compress.Schedule.Begin,
					Frequency: conf.Compress.Schedule.Frequency,
				}
			}
			if err := timerOpts.Validate(); err != nil {
				return &argumentError{fmt.Errorf("invalid schedule: %w", err)}
			}

			var executor execs
			executor = &core.Executor{}
			if passedExecs != nil {
				executor = passedExecs
			}
			executor.SetLogger(cmdConfig.logger)

			// at this point, any errors should not have usage
			cmd.SilenceUsage = true
			startupSpan.End()

			source, targetDir := args[0], args[1]
			err = executor.Timer(timerOpts, func() error {
				uid := uuid.New()
				results, err := executor.Compress(ctx, core.CompressOptions{
					Source:              source,
					TargetDir:           targetDir,
					FileName:            fileName,
					Algorithm:           alg,
					Level:               level,
					Safechars:           safechars,
					Targets:             targets,
					PreCompressScripts:  preCompressScripts,
					PostCompressScripts: postCompressScripts,
					Run:                 uid,
				})
				if err != nil {
					return fmt.Errorf("error compressing: %w", err)
				}
				executor.GetLogger().WithField("run", uid.String()).Infof("Compress complete: %s, %d bytes", results.Archive, results.Bytes)
				return nil
			})
			return classify(err)
		},
	}

	v = viper.New()
	v.SetEnvPrefix("archiver_compress")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	flags := cmd.Flags()
	flags.String("name", "", "File name of the archive in the target directory, default archive.tar.<ext>. May be a template using {{ .now }}, {{ .year }}, {{ .month }}, {{ .day }}, {{ .hour }}, {{ .minute }}, {{ .second }}, {{ .compression }} and {{ .algorithm }}.")

	// compression
	flags.String("compression", compression.DefaultAlgorithm.String(), "Compression to use. Supported are: `gzip`, `zstd`, `xz`, `lz4`")
	flags.Uint("level", compression.DefaultLevel, "Compression level, 0-9, or 0-21 for zstd")

	// safechars
	flags.Bool("safechars", false, "The {{ .now }} timestamp includes the character `:`, to comply with RFC3339. Some systems and shells don't like that character. If true, will replace all `:` with `-`.")

	// upload targets
	flags.StringSlice("upload", []string{}, `URL to which to copy the finished archive, in addition to the target directory. Accepts multiple. Supports four formats:
Local: If it starts with a "/" character or "file:///", copies to a local path.
SMB: If it is a URL of the format smb://hostname/share/path/ then it will connect via SMB.
S3: If it is a URL of the format s3://bucketname/path then it will connect via S3 protocol.
SCP: If it is a URL of the format scp://user@hostname/path then it will connect via SSH.
A URL of the format config://name uses the target called name in the config file.`)

	// frequency
	flags.Int("frequency", 0, "how often to run, in minutes; 0 runs once")

	// begin
	flags.String("begin", "", "What time to do the first run. Must be in one of two formats: Absolute: HHMM, e.g. `2330` or `0415`; or Relative: +MM, i.e. how many minutes after starting, e.g. `+0` (immediate), `+10` (in 10 minutes), or `+90` in an hour and a half")

	// cron
	flags.String("cron", "", "Set the schedule using standard [crontab syntax](https://en.wikipedia.org/wiki/Cron), a single line.")

	// once
	flags.Bool("once", false, "Override all other settings and run once immediately and exit. This is the default when no schedule is given.")

	// pre-compress scripts
	flags.String("pre-compress-scripts", "", "Directory wherein any executable file will be run before packing.")

	// post-compress scripts
	flags.String("post-compress-scripts", "", "Directory wherein any executable file will be run after packing but before uploading.")

	cmd.MarkFlagsMutuallyExclusive("once", "cron")
	cmd.MarkFlagsMutuallyExclusive("once", "begin")
	cmd.MarkFlagsMutuallyExclusive("once", "frequency")
	cmd.MarkFlagsMutuallyExclusive("cron", "begin")
	cmd.MarkFlagsMutuallyExclusive("cron", "frequency")

	return cmd, nil
}

// uploadTargets resolves upload URLs, or the compress targets of the config file when none are given.
func uploadTargets(explicit bool, urls []string, cmdConfig *cmdConfiguration) ([]storage.Storage, error) {
	var targets []storage.Storage
	if !explicit && cmdConfig.configuration != nil {
		urls = nil
		for _, name := range cmdConfig.configuration.Compress.Targets {
			urls = append(urls, "config://"+name)
		}
	}
	for _, u := range urls {
		store, err := resolveStorage(u, cmdConfig)
		if err != nil {
			return nil, err
		}
		targets = append(targets, store)
	}
	return targets, nil
}

// resolveStorage turns a URL into a storage; config://name refers to a target in the config file.
func resolveStorage(raw string, cmdConfig *cmdConfiguration) (storage.Storage, error) {
	name, ok := strings.CutPrefix(raw, "config://")
	if !ok {
		store, err := storage.ParseURL(raw, cmdConfig.creds)
		if err != nil {
			return nil, fmt.Errorf("invalid target url %q: %w", raw, err)
		}
		return store, nil
	}
	if cmdConfig.configuration == nil {
		return nil, fmt.Errorf("target %s requires a config file", raw)
	}
	target, found := cmdConfig.configuration.Targets[name]
	if !found {
		return nil, fmt.Errorf("target %s not found in configuration", name)
	}
	store, err := target.Storage.Storage()
	if err != nil {
		return nil, fmt.Errorf("error creating storage for target %s: %w", name, err)
	}
	return store, nil
}

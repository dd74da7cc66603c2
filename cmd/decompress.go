package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/databacker/dir-archiver/pkg/compression"
	"github.com/databacker/dir-archiver/pkg/core"
	"github.com/databacker/dir-archiver/pkg/storage"
	"github.com/databacker/dir-archiver/pkg/util"
)

func decompressCmd(passedExecs execs, cmdConfig *cmdConfiguration) (*cobra.Command, error) {
	if cmdConfig == nil {
		return nil, fmt.Errorf("cmdConfig is nil")
	}
	var v *viper.Viper
	var cmd = &cobra.Command{
		Use:     "decompress <archive> <target-dir>",
		Aliases: []string{"unpack"},
		Short:   "unpack a compressed archive into a directory",
		Long: `Unpack a compressed tar archive into target-dir, replacing files that already exist there.
		The target directory is created if needed. With --from, the archive is a name relative to
		that storage URL and is downloaded first.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if err := cobra.ExactArgs(2)(cmd, args); err != nil {
				return &argumentError{err}
			}
			if err := checkPathArg("archive", args[0]); err != nil {
				return err
			}
			return checkPathArg("target directory", args[1])
		},
		PreRun: func(cmd *cobra.Command, args []string) {
			bindFlags(cmd.LocalFlags(), v)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdConfig.logger.Debug("starting decompress")
			ctx := context.Background()
			tracer := getTracer("decompress")
			defer flushTracer(ctx)
			ctx = util.ContextWithTracer(ctx, tracer)
			_, startupSpan := tracer.Start(ctx, "startup")

			flags := cmd.Flags()
			conf := cmdConfig.configuration

			// compression algorithm: check config, then CLI/env var overrides
			compressionAlgo := stringFlag(flags, "compression")
			if !flags.Changed("compression") && conf != nil && conf.Decompress.Compression != "" {
				compressionAlgo = conf.Decompress.Compression
			}
			alg, err := compression.ParseAlgorithm(compressionAlgo)
			if err != nil {
				return classify(err)
			}

			var store storage.Storage
			if from := stringFlag(flags, "from"); from != "" {
				if store, err = resolveStorage(from, cmdConfig); err != nil {
					return &argumentError{err}
				}
			}
			preDecompressScripts := stringFlag(flags, "pre-decompress-scripts")
			if preDecompressScripts == "" && conf != nil {
				preDecompressScripts = conf.Decompress.Scripts.PreDecompress
			}
			postDecompressScripts := stringFlag(flags, "post-decompress-scripts")
			if postDecompressScripts == "" && conf != nil {
				postDecompressScripts = conf.Decompress.Scripts.PostDecompress
			}

			var executor execs
			executor = &core.Executor{}
			if passedExecs != nil {
				executor = passedExecs
			}
			executor.SetLogger(cmdConfig.logger)

			// at this point, any errors should not have usage
			cmd.SilenceUsage = true
			uid := uuid.New()
			decompressOpts := core.DecompressOptions{
				Source:                args[0],
				Store:                 store,
				TargetDir:             args[1],
				Algorithm:             alg,
				PreDecompressScripts:  preDecompressScripts,
				PostDecompressScripts: postDecompressScripts,
				Run:                   uid,
			}
			startupSpan.End()
			results, err := executor.Decompress(ctx, decompressOpts)
			if err != nil {
				return classify(fmt.Errorf("error decompressing: %w", err))
			}
			executor.GetLogger().WithField("run", uid.String()).Infof("Decompress complete: %s into %s", results.Archive, args[1])
			return nil
		},
	}

	v = viper.New()
	v.SetEnvPrefix("archiver_decompress")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	flags := cmd.Flags()
	// compression
	flags.String("compression", compression.DefaultAlgorithm.String(), "Compression the archive was written with. Supported are: `gzip`, `zstd`, `xz`, `lz4`")

	// remote source
	flags.String("from", "", "URL of the storage holding the archive, in any format accepted by compress --upload; the archive argument is then a name relative to it")

	// pre-decompress scripts
	flags.String("pre-decompress-scripts", "", "Directory wherein any executable file will be run after retrieving the archive but before unpacking.")

	// post-decompress scripts
	flags.String("post-decompress-scripts", "", "Directory wherein any executable file will be run after unpacking.")

	return cmd, nil
}

package cmd

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/databacker/dir-archiver/pkg/config"
	"github.com/databacker/dir-archiver/pkg/core"
	applog "github.com/databacker/dir-archiver/pkg/log"
	"github.com/databacker/dir-archiver/pkg/storage/credentials"
)

type execs interface {
	SetLogger(logger *log.Logger)
	GetLogger() *log.Logger
	Compress(ctx context.Context, opts core.CompressOptions) (core.CompressResults, error)
	Decompress(ctx context.Context, opts core.DecompressOptions) (core.DecompressResults, error)
	Timer(timerOpts core.TimerOptions, cmd func() error) error
}

type subCommand func(execs, *cmdConfiguration) (*cobra.Command, error)

var subCommands = []subCommand{compressCmd, decompressCmd}

type cmdConfiguration struct {
	creds         credentials.Creds
	configuration *config.Config
	logger        *log.Logger
}

func rootCmd(execs execs) (*cobra.Command, error) {
	var (
		v         *viper.Viper
		cmd       *cobra.Command
		cmdConfig = &cmdConfiguration{}
		ctx       = context.Background()
	)
	cmd = &cobra.Command{
		Use:   "dir-archiver",
		Short: "pack a directory into a compressed tar archive, or unpack one",
		Long: `Pack the contents of a directory into a single compressed tar archive, or unpack
		such an archive into a directory. Supported compression is gzip, zstd, xz and lz4.
		In addition to the provided command-line flag options and environment variables,
		when uploading to or downloading from s3, supports the following AWS options:

		AWS_ACCESS_KEY_ID: AWS Key ID
		AWS_SECRET_ACCESS_KEY: AWS Secret Access Key
		AWS_REGION: Region in which the bucket resides
		AWS_ENDPOINT_URL: Endpoint URL to use instead of default s3.<region>.amazonaws.com
		`,
		SilenceErrors: true,
		PersistentPreRunE: func(c *cobra.Command, args []string) error {
			bindFlags(c.InheritedFlags(), v)
			bindFlags(c.PersistentFlags(), v)
			flags := c.Flags()
			var logger = log.New()

			// read the config file, if needed; the structure of the config differs quite some
			// from the necessarily flat env vars/CLI flags, so we can't just use viper's
			// automatic config file support.
			var tracerExporters []sdktrace.SpanExporter
			if configFilePath, _ := flags.GetString("config-file"); configFilePath != "" {
				f, err := os.Open(configFilePath)
				if err != nil {
					return fmt.Errorf("fatal error config file: %w", err)
				}
				defer f.Close()
				actualConfig, err := config.Load(f)
				if err != nil {
					return fmt.Errorf("unable to read provided config: %w", err)
				}
				cmdConfig.configuration = actualConfig
				level, err := log.ParseLevel(actualConfig.LogLevel())
				if err != nil {
					return fmt.Errorf("invalid logging level in config: %w", err)
				}
				logger.SetLevel(level)

				if telemetryURL := actualConfig.Telemetry.URL; telemetryURL != "" {
					hook, err := applog.NewTelemetry(actualConfig.Telemetry, nil)
					if err != nil {
						return &ioError{fmt.Errorf("unable to set up telemetry: %w", err)}
					}
					logger.AddHook(hook)

					exporter, err := traceExporter(ctx, telemetryURL)
					if err != nil {
						return &ioError{fmt.Errorf("unable to set up telemetry: %w", err)}
					}
					tracerExporters = append(tracerExporters, exporter)
				}
			}

			// CLI flags and env vars override the config file logging level
			verbose, _ := flags.GetInt("verbose")
			debug, _ := flags.GetBool("debug")
			switch {
			case flags.Changed("verbose") && verbose >= 2:
				logger.SetLevel(log.TraceLevel)
			case flags.Changed("verbose") && verbose == 1:
				logger.SetLevel(log.DebugLevel)
			case flags.Changed("verbose"):
				logger.SetLevel(log.InfoLevel)
			case debug:
				logger.SetLevel(log.DebugLevel)
			}

			// these are not from the config file, as they are generic credentials, used across all targets.
			// the config file uses specific ones per target
			cmdConfig.creds = credentials.Creds{
				AWS: credentials.AWSCreds{
					Endpoint:        stringFlag(flags, "aws-endpoint-url"),
					PathStyle:       boolFlag(flags, "aws-path-style"),
					AccessKeyID:     stringFlag(flags, "aws-access-key-id"),
					SecretAccessKey: stringFlag(flags, "aws-secret-access-key"),
					Region:          stringFlag(flags, "aws-region"),
				},
				SMB: credentials.SMBCreds{
					Username: stringFlag(flags, "smb-user"),
					Password: stringFlag(flags, "smb-pass"),
					Domain:   stringFlag(flags, "smb-domain"),
				},
			}
			cmdConfig.logger = logger

			if boolFlag(flags, "trace-stderr") {
				exp, err := stdouttrace.New(stdouttrace.WithPrettyPrint(), stdouttrace.WithWriter(os.Stderr))
				if err != nil {
					return fmt.Errorf("failed to initialize stdouttrace exporter: %w", err)
				}
				tracerExporters = append(tracerExporters, exp)
			}
			var tracerProviderOpts []sdktrace.TracerProviderOption
			for _, exp := range tracerExporters {
				tracerProviderOpts = append(tracerProviderOpts, sdktrace.WithBatcher(exp))
			}
			otel.SetTracerProvider(sdktrace.NewTracerProvider(tracerProviderOpts...))

			return nil
		},
	}
	cmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		return &argumentError{err}
	})

	v = viper.New()
	v.SetEnvPrefix("archiver")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	pflags := cmd.PersistentFlags()
	pflags.String("config-file", "", "config file to use, if any; individual CLI flags override config file")

	// debug via CLI or env var or default
	pflags.IntP("verbose", "v", 0, "set log level, 1 is debug, 2 is trace")
	pflags.Bool("debug", false, "set log level to debug, equivalent of --verbose=1; if both set, --verbose always overrides")
	pflags.Bool("trace-stderr", false, "trace to stderr, in addition to any configured telemetry")

	// aws options
	pflags.String("aws-endpoint-url", "", "Specify an alternative endpoint for s3 interoperable systems e.g. Digitalocean; ignored if not using s3.")
	pflags.Bool("aws-path-style", false, "Use path-style addressing of buckets instead of default virtual-host-style; ignored if not using s3.")
	pflags.String("aws-access-key-id", "", "Access Key for s3 and s3 interoperable systems; ignored if not using s3.")
	pflags.String("aws-secret-access-key", "", "Secret Access Key for s3 and s3 interoperable systems; ignored if not using s3.")
	pflags.String("aws-region", "", "Region for s3 and s3 interoperable systems; ignored if not using s3.")

	// smb options
	pflags.String("smb-user", "", "SMB username")
	pflags.String("smb-pass", "", "SMB password")
	pflags.String("smb-domain", "", "SMB domain")

	for _, subCmd := range subCommands {
		sc, err := subCmd(execs, cmdConfig)
		if err != nil {
			return nil, err
		}
		cmd.AddCommand(sc)
	}

	return cmd, nil
}

// traceExporter sends spans over OTLP/HTTP to the /v1/traces path under the telemetry URL.
func traceExporter(ctx context.Context, telemetryURL string) (sdktrace.SpanExporter, error) {
	u, err := url.Parse(telemetryURL)
	if err != nil {
		return nil, fmt.Errorf("invalid telemetry URL: %w", err)
	}
	opts := []otlptracehttp.Option{
		otlptracehttp.WithEndpoint(u.Host),
		otlptracehttp.WithURLPath(path.Join("/", u.Path, "v1/traces")),
	}
	if u.Scheme == "http" {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	return otlptracehttp.New(ctx, opts...)
}

// bindFlags applies environment values from v to each flag not set on the command line.
func bindFlags(flags *pflag.FlagSet, v *viper.Viper) {
	flags.VisitAll(func(f *pflag.Flag) {
		if !f.Changed && v.IsSet(f.Name) {
			_ = flags.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})
}

func stringFlag(flags *pflag.FlagSet, name string) string {
	s, _ := flags.GetString(name)
	return s
}

func boolFlag(flags *pflag.FlagSet, name string) bool {
	b, _ := flags.GetBool(name)
	return b
}

func intFlag(flags *pflag.FlagSet, name string) int {
	i, _ := flags.GetInt(name)
	return i
}

func stringSliceFlag(flags *pflag.FlagSet, name string) []string {
	s, _ := flags.GetStringSlice(name)
	return s
}

// Execute primary function for cobra
func Execute() {
	rootCmd, err := rootCmd(nil)
	if err != nil {
		log.Fatal(err)
	}
	if err := rootCmd.Execute(); err != nil {
		log.Error(err)
		os.Exit(exitCode(err))
	}
}

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials/stscreds"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/elasticloadbalancing"
	"github.com/aws/aws-sdk-go-v2/service/opsworks"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/fatih/color"
	"github.com/k0kubun/pp/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/ikorchynskyi/opsworks-curator/internal/config"
	"github.com/ikorchynskyi/opsworks-curator/internal/inventory"
	"github.com/ikorchynskyi/opsworks-curator/internal/logging"
	"github.com/ikorchynskyi/opsworks-curator/internal/render"
	"github.com/ikorchynskyi/opsworks-curator/internal/validator"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "opsworks-curator",
	Short: "OpsWorks stacks curator",
	Long: `A CLI application to inspect and operate fleets of OpsWorks stacks.

Stacks and layers are selected with filters (-f stack:wordpress-*,layer:webserver)
and commands are run on every matching stack at once.
	`,
}

var cfg *config.Config
var logger = zap.NewNop()

var configFile string
var filterFlag string
var outputFormat string
var assumeYes bool

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	_ = logger.Sync()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	// Assigned here rather than in the rootCmd literal to avoid an
	// initialization cycle (initConfig references rootCmd).
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return initConfig()
	}

	// DisableDefaultCmd prevents Cobra from creating a default 'completion' command
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	// SilenceUsage is an option to silence usage when an error occurs.
	rootCmd.SilenceUsage = true

	// Persistent flags which will be global for the application.
	config.BindFlags(rootCmd.PersistentFlags())
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to a config file")
	rootCmd.PersistentFlags().StringVarP(&filterFlag, "filter", "f", "", "Comma separated filters (format: name:value)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", render.FormatTree, fmt.Sprintf("Output format (%s)", strings.Join(render.Formats, ", ")))
	rootCmd.PersistentFlags().BoolVarP(&assumeYes, "yes", "y", false, "Skip confirmation")

	pp.PrintMapTypes = false
	pp.Default.SetExportedOnly(true)
	pp.Default.SetColoringEnabled(term.IsTerminal(int(os.Stdout.Fd())))
}

func initConfig() error {
	v := config.New(configFile)
	c, err := config.Load(v, rootCmd.PersistentFlags(), configFile != "")
	if err != nil {
		return err
	}
	if err = validator.ValidateConfig(c); err != nil {
		return err
	}
	if !slices.Contains(render.Formats, outputFormat) {
		return fmt.Errorf("unknown output format %q (expected %s)", outputFormat, strings.Join(render.Formats, ", "))
	}

	l, err := logging.New(c.LogLevel, c.LogFile)
	if err != nil {
		return err
	}

	cfg, logger = c, l
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		color.NoColor = true
	}
	logger.Debug("loaded configuration", zap.String("file", v.ConfigFileUsed()), zap.Any("config", cfg))
	return nil
}

func initAWS(ctx context.Context) (aws.Config, error) {
	// Using the SDK's default configuration, loading additional config
	// and credentials values from the environment variables, shared
	// credentials, and shared configuration files
	var clientLogMode aws.ClientLogMode
	if cfg.Debug {
		clientLogMode = aws.LogRequestWithBody | aws.LogResponseWithBody
	} else {
		clientLogMode = 0
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithClientLogMode(clientLogMode),
		awsconfig.WithLogger(logging.NewSmithyLogger(logger)),
	}
	if cfg.Profile != "" {
		opts = append(opts, awsconfig.WithSharedConfigProfile(cfg.Profile))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return awsCfg, err
	}

	if cfg.RoleARN != "" {
		logger.Debug("assuming role", zap.String("role", cfg.RoleARN))
		provider := stscreds.NewAssumeRoleProvider(sts.NewFromConfig(awsCfg), cfg.RoleARN, func(o *stscreds.AssumeRoleOptions) {
			o.RoleSessionName = "opsworks-curator"
		})
		awsCfg.Credentials = aws.NewCredentialsCache(provider)
	}
	return awsCfg, nil
}

func newInventoryClient(awsCfg aws.Config) *inventory.Client {
	return inventory.NewClient(opsworks.NewFromConfig(awsCfg), func(o *inventory.ClientOptions) {
		o.Logger = logger
		o.LoadBalancing = func(region string) inventory.LoadBalancingAPI {
			return elasticloadbalancing.NewFromConfig(awsCfg, func(o *elasticloadbalancing.Options) {
				o.Region = region
			})
		}
		o.EC2 = func(region string) ec2.DescribeInstancesAPIClient {
			return ec2.NewFromConfig(awsCfg, func(o *ec2.Options) {
				o.Region = region
			})
		}
	})
}

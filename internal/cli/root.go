package cli

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/debatewire-sdk-go/debatewire"
	"github.com/vovakirdan/debatewire-sdk-go/debatewire/rest"
	"github.com/vovakirdan/debatewire-sdk-go/internal/config"
	"github.com/vovakirdan/debatewire-sdk-go/internal/version"
)

type Dependencies struct {
	Config *config.Config
	Logger *slog.Logger
}

func NewRootCmd(deps *Dependencies) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "debatewire",
		Short:         "Follow the debate arena from the terminal",
		Long:          "A client for the debate backend: live feed, room transcripts, loop status and admin actions.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.Version = version.Version
	rootCmd.SetVersionTemplate(version.Full() + "\n")

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&deps.Config.URL, "url", deps.Config.URL, "websocket base URL")
	flags.StringVar(&deps.Config.APIURL, "api-url", deps.Config.APIURL, "REST base URL")
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if cmd.Flags().Changed("url") && !cmd.Flags().Changed("api-url") {
			deps.Config.APIURL = config.APIBase(deps.Config.URL)
		}
	}

	rootCmd.AddCommand(NewFeedCmd(deps))
	rootCmd.AddCommand(NewWatchCmd(deps))
	rootCmd.AddCommand(NewStatusCmd(deps))
	rootCmd.AddCommand(NewDebatesCmd(deps))
	rootCmd.AddCommand(NewTriggerCmd(deps))
	rootCmd.AddCommand(NewLoopCmd(deps))
	rootCmd.AddCommand(NewValidateCmd(deps))
	rootCmd.AddCommand(NewVersionCmd())

	return rootCmd
}

func newRESTClient(deps *Dependencies) *rest.Client {
	return rest.NewClient(deps.Config.APIURL)
}

func newDashboard(deps *Dependencies) *debatewire.Dashboard {
	opts := []debatewire.Option{debatewire.WithREST(newRESTClient(deps))}
	if deps.Logger != nil {
		opts = append(opts, debatewire.WithLogger(debatewire.NewSlogLogger(deps.Logger)))
	}
	return debatewire.NewDashboard(deps.Config.SDK(), opts...)
}

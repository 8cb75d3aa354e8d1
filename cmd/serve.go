package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kastheco/atlas/config"
	"github.com/kastheco/atlas/internal/gitops"
	"github.com/kastheco/atlas/internal/jira"
	"github.com/kastheco/atlas/internal/mcpclient"
	"github.com/kastheco/atlas/internal/sentry"
	"github.com/kastheco/atlas/ipc"
	"github.com/kastheco/atlas/ipc/createpr"
	"github.com/kastheco/atlas/ipc/onboarding"
	"github.com/kastheco/atlas/ipc/settings"
	"github.com/kastheco/atlas/ipc/startwork"
	"github.com/kastheco/atlas/ipc/welcome"
	"github.com/kastheco/atlas/log"
	"github.com/kastheco/atlas/model"
	"github.com/kastheco/atlas/webview"
)

type serveOptions struct {
	screen    string
	workspace string
	issue     string
	target    string
	remote    bool
}

// serveEnv holds the collaborators every screen is built from.
type serveEnv struct {
	cfg       *config.Config
	configDir string
	common    *webview.CommonHandler
	workspace *webview.Workspace
	// root is the workspace repository root, empty outside a git repository.
	root string
	// jira is nil when no Jira site is logged in or no MCP server is reachable.
	jira webview.JiraService
	// caller is the MCP session used to log in to new Jira sites.
	caller jira.MCPCaller
}

// newController builds the controller for opts.screen and the registry its
// inbound actions are decoded with. Screens that need Bitbucket report
// webview.ErrUnsupported.
func newController(opts serveOptions, env serveEnv, poster webview.MessagePoster) (webview.Controller, *ipc.ActionRegistry, error) {
	switch webview.ScreenID(opts.screen) {
	case webview.ScreenWelcome:
		return webview.NewWelcomeController(poster, env.common), welcome.Actions(), nil

	case webview.ScreenSettings:
		target := settings.Target(opts.target)
		switch target {
		case "":
			target = settings.TargetUser
		case settings.TargetUser, settings.TargetWorkspace:
		default:
			return nil, nil, fmt.Errorf("unknown settings target %q", opts.target)
		}
		return webview.NewSettingsController(poster, newConfigBackend(env), env.common, target), settings.Actions(), nil

	case webview.ScreenOnboarding:
		api := webview.OnboardingBackend{ConfigBackend: newConfigBackend(env)}
		return webview.NewOnboardingController(poster, api, env.common, opts.remote), onboarding.Actions(), nil

	case webview.ScreenStartWork:
		if env.jira == nil {
			return nil, nil, fmt.Errorf("start work: %w", jira.ErrNotConfigured)
		}
		if opts.issue == "" {
			return nil, nil, errors.New("start work: --issue is required")
		}
		api := &webview.StartWorkBackend{Jira: env.jira, Workspace: env.workspace}
		issue := model.MinimalIssue{Key: opts.issue, Site: env.jira.Site()}
		c := webview.NewStartWorkController(poster, api, env.common, issue,
			webview.WithBranchTemplate(env.cfg.BranchTemplate),
			webview.WithBranchPrefixes(env.cfg.BranchPrefixes))
		return c, startwork.Actions(), nil

	case webview.ScreenCreatePullRequest:
		api := &webview.LocalPullRequestBackend{Workspace: env.workspace, Jira: env.jira}
		return webview.NewCreatePullRequestController(poster, api, env.common), createpr.Actions(), nil

	case webview.ScreenBitbucketIssue, webview.ScreenCreateBitbucketIssue,
		webview.ScreenPullRequestDetails, webview.ScreenPipelineSummary:
		return nil, nil, fmt.Errorf("serve %s: %w", opts.screen, webview.ErrUnsupported)
	}
	return nil, nil, fmt.Errorf("unknown screen %q", opts.screen)
}

func newConfigBackend(env serveEnv) *webview.ConfigBackend {
	opts := []webview.ConfigOption{}
	if env.root != "" {
		opts = append(opts, webview.WithWorkspaceRoot(env.root))
	}
	if env.caller != nil {
		opts = append(opts, webview.WithAuthenticator(model.ProductJira, webview.JiraAuthenticator{Caller: env.caller}))
	}
	return webview.NewConfigBackend(env.configDir, env.cfg, opts...)
}

// connectJira opens the MCP session and, when a Jira site is logged in, a
// client for it. Both are nil when no server is configured.
func connectJira(ctx context.Context, cfg *config.Config, repoDir, configDir string) (*mcpclient.Client, *jira.Client, error) {
	server, err := jira.ServerConfig(cfg, repoDir, configDir)
	if err != nil {
		return nil, nil, err
	}
	session, err := jira.Connect(ctx, server)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to Jira MCP server: %w", err)
	}
	if len(cfg.JiraSites) == 0 {
		return session, nil, nil
	}
	site := cfg.JiraSites[0]
	cloudID := site.ID
	if cloudID == "" {
		if cloudID, err = jira.ResolveCloudID(ctx, session, site.Host); err != nil {
			_ = session.Close()
			return nil, nil, err
		}
	}
	return session, jira.NewClient(session, cloudID, site), nil
}

// runServe hosts one screen over in and out until the peer hangs up.
func runServe(ctx context.Context, version string, opts serveOptions, in io.ReadCloser, out io.Writer) error {
	cfg := config.LoadConfig()
	if err := sentry.Init(version, cfg.IsTelemetryEnabled()); err != nil {
		// Non-fatal: the host runs without crash reporting.
		_ = err
	}
	defer sentry.Flush()
	defer sentry.RecoverPanic()

	// stdout carries the protocol, so logs go to the file only.
	log.Initialize(true, cfg.IsTelemetryEnabled())
	defer log.Close()

	configDir, err := config.GetConfigDir()
	if err != nil {
		return fmt.Errorf("failed to get config directory: %w", err)
	}
	st, err := openStores(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	env := serveEnv{cfg: cfg, configDir: configDir}

	dir, err := filepath.Abs(opts.workspace)
	if err != nil {
		return fmt.Errorf("failed to resolve workspace: %w", err)
	}
	var repos []*gitops.Repo
	if repo, err := gitops.Open(dir); err != nil {
		log.InfoLog.Printf("serve: %s is not a git repository: %v", dir, err)
	} else {
		repos = append(repos, repo)
		env.root = repo.Path()
	}
	env.workspace = webview.NewWorkspace(cfg.BranchPrefixes, repos...)

	session, client, err := connectJira(ctx, cfg, dir, configDir)
	switch {
	case errors.Is(err, jira.ErrNotConfigured):
		log.InfoLog.Printf("serve: %v", err)
	case err != nil:
		log.WarningLog.Printf("serve: %v", err)
	}
	if session != nil {
		defer session.Close()
		env.caller = session
	}
	deps := webview.CommonDeps{
		Links:    webview.DefaultKnownLinks().Merge(cfg.KnownLinks),
		Feedback: webview.NewFeedbackRecorder(filepath.Join(configDir, "feedback.jsonl")),
		PMF:      st.pmf,
		Events:   st.events,
	}
	if client != nil {
		env.jira = client
		deps.Issues = webview.IssueBrowser{Site: client.Site()}
	}
	env.common = webview.NewCommonHandler(deps)

	transport := ipc.NewStdioTransport(in, out)
	defer transport.Close()
	poster := webview.NewTransportPoster(transport)

	controller, actions, err := newController(opts, env, poster)
	if err != nil {
		return err
	}
	log.InfoLog.Printf("serve: hosting %s", controller.Title())
	return webview.NewHost(transport, poster, actions, controller).Run(ctx)
}

// NewServeCmd builds `atlas serve`, which hosts one screen over stdio for
// the UI process that spawned it.
func NewServeCmd(version string) *cobra.Command {
	var opts serveOptions
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "host a screen over stdin/stdout",
		Long: `Host one screen controller over stdin/stdout. Each line is a JSON
action from the UI or a JSON message to it.

Screens: welcomeScreen, settingsScreen, onboardingScreen, startWorkScreen,
createPullRequestScreen.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, version, opts, os.Stdin, os.Stdout)
		},
	}
	serveCmd.Flags().StringVar(&opts.screen, "screen", string(webview.ScreenWelcome), "screen to host")
	serveCmd.Flags().StringVar(&opts.workspace, "workspace", ".", "workspace repository")
	serveCmd.Flags().StringVar(&opts.issue, "issue", "", "Jira issue key for startWorkScreen")
	serveCmd.Flags().StringVar(&opts.target, "target", "", "settings scope for settingsScreen (user or workspace)")
	serveCmd.Flags().BoolVar(&opts.remote, "remote", false, "tell onboardingScreen it runs in a remote workspace")
	return serveCmd
}

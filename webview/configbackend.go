package webview

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/kastheco/atlas/config"
	"github.com/kastheco/atlas/internal/browser"
	"github.com/kastheco/atlas/internal/jira"
	"github.com/kastheco/atlas/ipc"
	"github.com/kastheco/atlas/ipc/settings"
	"github.com/kastheco/atlas/log"
	"github.com/kastheco/atlas/model"
)

// Authenticator verifies a login and returns the site as it should be
// remembered.
type Authenticator interface {
	Authenticate(ctx context.Context, site model.SiteInfo, auth model.AuthInfo) (model.SiteInfo, error)
}

// JiraAuthenticator logs in to Jira Cloud sites through the Atlassian MCP
// server, which holds the OAuth session. The AuthInfo is not used.
type JiraAuthenticator struct {
	Caller jira.MCPCaller
}

func (a JiraAuthenticator) Authenticate(ctx context.Context, site model.SiteInfo, _ model.AuthInfo) (model.SiteInfo, error) {
	cloudID, err := jira.ResolveCloudID(ctx, a.Caller, site.Host)
	if err != nil {
		return site, err
	}
	user, err := jira.NewClient(a.Caller, cloudID, site).CurrentUser(ctx)
	if err != nil {
		return site, err
	}
	site.ID = cloudID
	site.UserID = user.AccountID
	site.IsCloud = true
	if site.BaseURL == "" {
		site.BaseURL = "https://" + site.Host
	}
	if site.Name == "" {
		site.Name = site.Host
	}
	return site, nil
}

const workspaceSettingsPath = ".atlas/settings.json"

// ConfigBackend keeps settings and known sites in the atlas config
// directory. Workspace-scoped settings live in the workspace root.
type ConfigBackend struct {
	mu            sync.Mutex
	dir           string
	cfg           *config.Config
	workspaceRoot string
	auth          map[model.Product]Authenticator
	openFile      func(path string) error
}

// ConfigOption configures a ConfigBackend.
type ConfigOption func(*ConfigBackend)

// WithWorkspaceRoot enables the workspace settings scope.
func WithWorkspaceRoot(root string) ConfigOption {
	return func(b *ConfigBackend) { b.workspaceRoot = root }
}

// WithAuthenticator handles logins to sites of product.
func WithAuthenticator(product model.Product, a Authenticator) ConfigOption {
	return func(b *ConfigBackend) { b.auth[product] = a }
}

// WithFileOpener replaces browser.OpenFile for OpenJSON.
func WithFileOpener(open func(path string) error) ConfigOption {
	return func(b *ConfigBackend) { b.openFile = open }
}

// NewConfigBackend serves cfg, saving it to dir on every change.
func NewConfigBackend(dir string, cfg *config.Config, opts ...ConfigOption) *ConfigBackend {
	b := &ConfigBackend{
		dir:      dir,
		cfg:      cfg,
		auth:     make(map[model.Product]Authenticator),
		openFile: browser.OpenFile,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *ConfigBackend) sites() Sites {
	return Sites{
		Jira:      append([]model.SiteInfo(nil), b.cfg.JiraSites...),
		Bitbucket: append([]model.SiteInfo(nil), b.cfg.BitbucketSites...),
	}
}

func (b *ConfigBackend) Sites(context.Context) (Sites, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.sites(), nil
}

func (b *ConfigBackend) Login(ctx context.Context, site model.SiteInfo, auth model.AuthInfo) (Sites, error) {
	a, ok := b.auth[site.Product]
	if !ok {
		return Sites{}, fmt.Errorf("log in to %s: %w", site.Product, ErrUnsupported)
	}
	site, err := a.Authenticate(ctx, site, auth)
	if err != nil {
		return Sites{}, fmt.Errorf("log in to %s: %w", site.Host, err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.cfg.AddSite(site)
	if err := config.SaveConfigTo(b.cfg, b.dir); err != nil {
		return Sites{}, err
	}
	log.InfoLog.Printf("logged in to %s", site.Key())
	return b.sites(), nil
}

func (b *ConfigBackend) Logout(_ context.Context, site model.SiteInfo) (Sites, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.cfg.RemoveSite(site) {
		return b.sites(), nil
	}
	if err := config.SaveConfigTo(b.cfg, b.dir); err != nil {
		return Sites{}, err
	}
	return b.sites(), nil
}

func (b *ConfigBackend) Config(_ context.Context, target settings.Target) (map[string]any, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if target == settings.TargetWorkspace {
		return b.readWorkspace()
	}
	return b.userSettings(), nil
}

func (b *ConfigBackend) userSettings() map[string]any {
	if b.cfg.Settings == nil {
		return map[string]any{}
	}
	return maps.Clone(b.cfg.Settings)
}

func (b *ConfigBackend) SaveSettings(_ context.Context, target settings.Target, changes map[string]any, removes []string) (map[string]any, error) {
	log.InfoLog.Printf("saving %s settings: set %v, unset %v", target, sortedKeys(changes), removes)
	b.mu.Lock()
	defer b.mu.Unlock()

	if target == settings.TargetWorkspace {
		current, err := b.readWorkspace()
		if err != nil {
			return nil, err
		}
		maps.Copy(current, changes)
		for _, k := range removes {
			delete(current, k)
		}
		if err := b.writeWorkspace(current); err != nil {
			return nil, err
		}
		return current, nil
	}

	touched := b.cfg.ApplySettings(changes, removes)
	if len(touched) > 0 {
		if err := config.SaveConfigTo(b.cfg, b.dir); err != nil {
			return nil, err
		}
	}
	return b.userSettings(), nil
}

func (b *ConfigBackend) OpenJSON(_ context.Context, target settings.Target) error {
	path := filepath.Join(b.dir, config.ConfigFileName)
	if target == settings.TargetWorkspace {
		var err error
		if path, err = b.workspacePath(); err != nil {
			return err
		}
	}
	return b.openFile(path)
}

func (b *ConfigBackend) workspacePath() (string, error) {
	if b.workspaceRoot == "" {
		return "", fmt.Errorf("workspace settings: %w", ErrUnsupported)
	}
	return filepath.Join(b.workspaceRoot, workspaceSettingsPath), nil
}

func (b *ConfigBackend) readWorkspace() (map[string]any, error) {
	path, err := b.workspacePath()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]any{}, nil
	}
	if err != nil {
		return nil, err
	}
	out := map[string]any{}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return out, nil
}

func (b *ConfigBackend) writeWorkspace(values map[string]any) error {
	path, err := b.workspacePath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// OnboardingBackend adapts a ConfigBackend to the onboarding screen, which
// always edits the user scope.
type OnboardingBackend struct {
	*ConfigBackend
	Navigator Navigator
}

func (b OnboardingBackend) SaveSettings(ctx context.Context, changes map[string]any, removes []string) error {
	_, err := b.ConfigBackend.SaveSettings(ctx, settings.TargetUser, changes, removes)
	return err
}

func (b OnboardingBackend) OpenSettings(ctx context.Context) error {
	return navigate(ctx, b.Navigator, ScreenSettings, settings.TargetUser)
}

// FeedbackRecorder appends feedback and survey answers to a JSON lines file
// for later upload.
type FeedbackRecorder struct {
	mu   sync.Mutex
	path string
	now  func() time.Time
}

func NewFeedbackRecorder(path string) *FeedbackRecorder {
	return &FeedbackRecorder{path: path, now: time.Now}
}

type feedbackRecord struct {
	Kind     string            `json:"kind"`
	Time     time.Time         `json:"ts"`
	Feedback *ipc.FeedbackData `json:"feedback,omitempty"`
	PMF      *ipc.PMFData      `json:"pmf,omitempty"`
}

func (r *FeedbackRecorder) SubmitFeedback(_ context.Context, f ipc.FeedbackData) error {
	if f.Description == "" {
		return errors.New("feedback description is empty")
	}
	return r.append(feedbackRecord{Kind: "feedback", Time: r.now().UTC(), Feedback: &f})
}

func (r *FeedbackRecorder) SubmitPMF(_ context.Context, answers ipc.PMFData) error {
	return r.append(feedbackRecord{Kind: "pmf", Time: r.now().UTC(), PMF: &answers})
}

func (r *FeedbackRecorder) append(rec feedbackRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := os.MkdirAll(filepath.Dir(r.path), 0755); err != nil {
		return err
	}
	f, err := os.OpenFile(r.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.Write(append(data, '\n'))
	return err
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

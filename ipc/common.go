package ipc

// Actions every screen accepts.
const (
	ActionRefresh         ActionType = "refresh"
	ActionSubmitFeedback  ActionType = "submitFeedback"
	ActionExternalLink    ActionType = "externalLink"
	ActionCopyLink        ActionType = "copyLink"
	ActionOpenJiraIssue   ActionType = "openJiraIssue"
	ActionCancelRequest   ActionType = "cancelRequest"
	ActionDismissPMFLater ActionType = "dismissPMFLater"
	ActionDismissPMFNever ActionType = "dismissPMFNever"
	ActionOpenPMFSurvey   ActionType = "openPMFSurvey"
	ActionSubmitPMF       ActionType = "submitPMF"
	ActionSendAnalytics   ActionType = "sendAnalytics"
)

// Messages every screen's UI accepts.
const (
	MessageError        MessageType = "error"
	MessagePMFStatus    MessageType = "pmfStatus"
	MessageOnlineStatus MessageType = "onlineStatus"
)

// Refresh asks the screen controller to reload everything it shows.
type Refresh struct{}

func (Refresh) ActionType() ActionType { return ActionRefresh }

// FeedbackData is the free-form feedback form.
type FeedbackData struct {
	Description    string `json:"description"`
	UserName       string `json:"userName"`
	EmailAddress   string `json:"emailAddress"`
	CanBeContacted bool   `json:"canBeContacted"`
	Source         string `json:"source"`
}

type SubmitFeedback struct {
	Feedback FeedbackData `json:"feedback"`
}

func (SubmitFeedback) ActionType() ActionType { return ActionSubmitFeedback }

// ExternalLink opens a link outside the panel. LinkID names a well-known
// destination; URL is used when LinkID is empty or unknown.
type ExternalLink struct {
	Source string `json:"source"`
	LinkID string `json:"linkId,omitempty"`
	URL    string `json:"url,omitempty"`
}

func (ExternalLink) ActionType() ActionType { return ActionExternalLink }

type CopyLink struct {
	LinkType string `json:"linkType"`
	URL      string `json:"url"`
}

func (CopyLink) ActionType() ActionType { return ActionCopyLink }

type OpenJiraIssue struct {
	IssueOrKey string `json:"issueOrKey"`
}

func (OpenJiraIssue) ActionType() ActionType { return ActionOpenJiraIssue }

// CancelRequest aborts the in-flight request registered under AbortKey.
type CancelRequest struct {
	AbortKey string `json:"abortKey"`
}

func (CancelRequest) ActionType() ActionType { return ActionCancelRequest }

type DismissPMFLater struct{}

func (DismissPMFLater) ActionType() ActionType { return ActionDismissPMFLater }

type DismissPMFNever struct{}

func (DismissPMFNever) ActionType() ActionType { return ActionDismissPMFNever }

type OpenPMFSurvey struct{}

func (OpenPMFSurvey) ActionType() ActionType { return ActionOpenPMFSurvey }

// PMFData holds the four survey answers.
type PMFData struct {
	Q1 string `json:"q1"`
	Q2 string `json:"q2"`
	Q3 string `json:"q3"`
	Q4 string `json:"q4"`
}

type SubmitPMF struct {
	PMFData PMFData `json:"pmfData"`
}

func (SubmitPMF) ActionType() ActionType { return ActionSubmitPMF }

// ErrorInfo describes an error the UI hit on its own side.
type ErrorInfo struct {
	Name    string `json:"name"`
	Message string `json:"message"`
	Stack   string `json:"stack,omitempty"`
}

type SendAnalytics struct {
	ErrorInfo ErrorInfo `json:"errorInfo"`
}

func (SendAnalytics) ActionType() ActionType { return ActionSendAnalytics }

// ErrorMessage reports a failure. Nonce echoes the failing action's nonce.
type ErrorMessage struct {
	Reason ErrorReason `json:"reason"`
	Nonce  string      `json:"nonce,omitempty"`
}

func (ErrorMessage) MessageType() MessageType { return MessageError }
func (m ErrorMessage) GetNonce() string      { return m.Nonce }

type PMFStatus struct {
	ShowPMF bool `json:"showPMF"`
}

func (PMFStatus) MessageType() MessageType { return MessagePMFStatus }

type OnlineStatus struct {
	IsOnline bool `json:"isOnline"`
}

func (OnlineStatus) MessageType() MessageType { return MessageOnlineStatus }

// CommonActions returns zero values of every common action, for registries.
func CommonActions() []Action {
	return []Action{
		Refresh{},
		SubmitFeedback{},
		ExternalLink{},
		CopyLink{},
		OpenJiraIssue{},
		CancelRequest{},
		DismissPMFLater{},
		DismissPMFNever{},
		OpenPMFSurvey{},
		SubmitPMF{},
		SendAnalytics{},
	}
}

// CommonMessages returns zero values of every common message, for registries.
func CommonMessages() []Message {
	return []Message{
		ErrorMessage{},
		PMFStatus{},
		OnlineStatus{},
	}
}

// IsCommonAction reports whether a belongs to the shared action set.
func IsCommonAction(a Action) bool {
	switch a.(type) {
	case Refresh, SubmitFeedback, ExternalLink, CopyLink, OpenJiraIssue, CancelRequest,
		DismissPMFLater, DismissPMFNever, OpenPMFSurvey, SubmitPMF, SendAnalytics:
		return true
	}
	return false
}

// IsCommonMessage reports whether m belongs to the shared message set.
func IsCommonMessage(m Message) bool {
	switch m.(type) {
	case ErrorMessage, PMFStatus, OnlineStatus:
		return true
	}
	return false
}

package webview

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kastheco/atlas/ipc"
	"github.com/kastheco/atlas/ipc/prdetails"
	"github.com/kastheco/atlas/model"
)

type fakePRAPI struct {
	mu    sync.Mutex
	calls []string

	comments    []model.Comment
	commits     []model.Commit
	tasks       []model.Task
	buildErr    error
	commentsErr error

	// what the dependent fetches were given
	diffComments   []model.Comment
	relatedCommits []model.Commit
}

func (f *fakePRAPI) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakePRAPI) GetPullRequest(_ context.Context, pr model.PullRequest) (model.PullRequest, error) {
	f.record("pr")
	pr.Title = "Fix crash"
	return pr, nil
}

func (f *fakePRAPI) CurrentUser(context.Context, model.SiteInfo) (model.User, error) {
	return model.User{AccountID: "me"}, nil
}

func (f *fakePRAPI) CurrentBranch(context.Context, model.PullRequest) (string, error) {
	return "feature/AX-1", nil
}

func (f *fakePRAPI) GetComments(context.Context, model.PullRequest) ([]model.Comment, error) {
	f.record("comments")
	return f.comments, f.commentsErr
}

func (f *fakePRAPI) GetCommits(context.Context, model.PullRequest) ([]model.Commit, error) {
	f.record("commits")
	return f.commits, nil
}

func (f *fakePRAPI) GetBuildStatuses(context.Context, model.PullRequest) ([]model.BuildStatus, error) {
	f.record("builds")
	if f.buildErr != nil {
		return nil, f.buildErr
	}
	return []model.BuildStatus{{Key: "ci"}}, nil
}

func (f *fakePRAPI) GetMergeStrategies(context.Context, model.PullRequest) ([]model.MergeStrategy, error) {
	f.record("strategies")
	return []model.MergeStrategy{{Value: "squash", IsDefault: true}}, nil
}

func (f *fakePRAPI) GetTasks(context.Context, model.PullRequest) ([]model.Task, error) {
	f.record("tasks")
	return f.tasks, nil
}

func (f *fakePRAPI) GetFileDiffs(_ context.Context, _ model.PullRequest, comments []model.Comment) ([]model.FileDiff, error) {
	f.mu.Lock()
	f.diffComments = comments
	f.mu.Unlock()
	f.record("diffs")
	return []model.FileDiff{{File: "main.go", Status: model.FileModified}}, nil
}

func (f *fakePRAPI) GetRelatedJiraIssues(_ context.Context, _ model.PullRequest, commits []model.Commit, _ []model.Comment) ([]model.MinimalIssue, error) {
	f.mu.Lock()
	f.relatedCommits = commits
	f.mu.Unlock()
	f.record("jira")
	return []model.MinimalIssue{{Key: "AX-1"}}, nil
}

func (f *fakePRAPI) GetRelatedBitbucketIssues(context.Context, model.PullRequest, []model.Commit, []model.Comment) ([]model.BitbucketIssue, error) {
	f.record("bbissues")
	return nil, nil
}

func (f *fakePRAPI) FetchUsers(context.Context, model.BitbucketSite, string) ([]model.User, error) {
	return nil, nil
}

func (f *fakePRAPI) UpdateSummary(_ context.Context, _ model.PullRequest, text string) (model.Content, error) {
	return model.Content{Raw: text}, nil
}

func (f *fakePRAPI) UpdateTitle(_ context.Context, _ model.PullRequest, text string) (string, error) {
	return text, nil
}

func (f *fakePRAPI) UpdateReviewers(_ context.Context, _ model.PullRequest, users []model.User) ([]model.Reviewer, error) {
	out := make([]model.Reviewer, 0, len(users))
	for _, u := range users {
		out = append(out, model.Reviewer{User: u, Role: "REVIEWER"})
	}
	return out, nil
}

func (f *fakePRAPI) UpdateApprovalStatus(_ context.Context, _ model.PullRequest, s model.ApprovalStatus) (model.ApprovalStatus, error) {
	return s, nil
}

func (f *fakePRAPI) Checkout(_ context.Context, pr model.PullRequest) (string, error) {
	return pr.Source.Branch, nil
}

func (f *fakePRAPI) PostComment(_ context.Context, _ model.PullRequest, text string, parentID *int, inline *model.CommentInline) ([]model.Comment, error) {
	return append(f.comments, model.Comment{ID: 99, ParentID: parentID, Inline: inline, Content: model.Content{Raw: text}}), nil
}

func (f *fakePRAPI) EditComment(context.Context, model.PullRequest, string, int) ([]model.Comment, error) {
	return f.comments, nil
}

func (f *fakePRAPI) DeleteComment(context.Context, model.PullRequest, model.Comment) ([]model.Comment, error) {
	return f.comments, nil
}

func (f *fakePRAPI) AddTask(_ context.Context, _ model.PullRequest, content string, commentID *int) (TasksResult, error) {
	tasks := append(f.tasks, model.Task{ID: "new", Content: content, CommentID: commentID})
	return TasksResult{Tasks: tasks, Comments: f.comments}, nil
}

func (f *fakePRAPI) EditTask(context.Context, model.PullRequest, model.Task) (TasksResult, error) {
	return TasksResult{Tasks: f.tasks, Comments: f.comments}, nil
}

func (f *fakePRAPI) DeleteTask(context.Context, model.PullRequest, model.Task) (TasksResult, error) {
	return TasksResult{Comments: f.comments}, nil
}

func (f *fakePRAPI) OpenDiff(context.Context, model.FileDiff) error { return nil }

func (f *fakePRAPI) Merge(context.Context, model.PullRequest, model.MergeStrategy, string, bool, []model.MinimalIssue) (model.MergeStatus, error) {
	return model.MergeStatus{State: "MERGED", Merged: true}, nil
}

func (f *fakePRAPI) OpenBuildStatus(context.Context, model.BuildStatus) error { return nil }

func (f *fakePRAPI) indexOf(call string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, c := range f.calls {
		if c == call {
			return i
		}
	}
	return -1
}

func prFixture() *fakePRAPI {
	return &fakePRAPI{
		comments: []model.Comment{
			{ID: 1},
			{ID: 2, Inline: &model.CommentInline{Path: "main.go"}},
		},
		commits: []model.Commit{{Hash: "abc", Message: "AX-1 fix crash"}},
		tasks:   []model.Task{{ID: "t1", CommentID: intPtr(2)}},
	}
}

func TestPullRequest_InvalidatePostsEverything(t *testing.T) {
	rec := &recorder{}
	api := prFixture()
	ctrl := NewPullRequestController(rec, api, testCommon(nil), model.PullRequest{ID: "5"})

	ctrl.OnMessageReceived(context.Background(), ipc.Refresh{})

	types := rec.types()
	require.NotEmpty(t, types)
	assert.Equal(t, prdetails.MessageInit, types[0])
	assert.Equal(t, ipc.MessagePMFStatus, types[len(types)-1])

	inits := posted[prdetails.Init](rec)
	require.Len(t, inits, 1)
	assert.Equal(t, "Fix crash", inits[0].PR.Title)
	assert.Equal(t, "me", inits[0].CurrentUser.AccountID)
	assert.Equal(t, "feature/AX-1", inits[0].CurrentBranch)

	for _, typ := range []ipc.MessageType{
		prdetails.MessageUpdateCommits,
		prdetails.MessageUpdateBuildStatuses,
		prdetails.MessageUpdateMergeStrategies,
		prdetails.MessageUpdateFileDiffs,
		prdetails.MessageUpdateRelatedJiraIssues,
		prdetails.MessageUpdateRelatedBitbucketIssues,
		prdetails.MessageUpdateTasks,
	} {
		assert.Contains(t, types, typ)
	}

	// Comments go out once on arrival and again with tasks folded in.
	comments := posted[prdetails.UpdateComments](rec)
	require.Len(t, comments, 2)
	assert.Equal(t, []int{1}, ids(comments[1].Comments))
	require.Len(t, comments[1].InlineComments, 1)
	assert.Empty(t, comments[0].InlineComments[0].Tasks)
	assert.Equal(t, "t1", comments[1].InlineComments[0].Tasks[0].ID)

	// Dependent fetches start only after what they need has arrived.
	assert.Less(t, api.indexOf("comments"), api.indexOf("diffs"))
	assert.Less(t, api.indexOf("comments"), api.indexOf("tasks"))
	assert.Less(t, api.indexOf("commits"), api.indexOf("jira"))
	assert.Less(t, api.indexOf("commits"), api.indexOf("bbissues"))
	assert.Equal(t, api.comments, api.diffComments)
	assert.Equal(t, api.commits, api.relatedCommits)
}

func TestPullRequest_FailuresAreIsolated(t *testing.T) {
	rec := &recorder{}
	api := prFixture()
	api.buildErr = errors.New("ci unreachable")
	api.commentsErr = errors.New("comments unreachable")
	ctrl := NewPullRequestController(rec, api, testCommon(nil), model.PullRequest{ID: "5"})

	ctrl.OnMessageReceived(context.Background(), ipc.Refresh{})

	errs := posted[ipc.ErrorMessage](rec)
	require.Len(t, errs, 2)
	titles := []string{errs[0].Reason.Title, errs[1].Reason.Title}
	assert.ElementsMatch(t, []string{"Error fetching build statuses", "Error fetching comments"}, titles)

	types := rec.types()
	assert.Contains(t, types, prdetails.MessageUpdateMergeStrategies)
	assert.Contains(t, types, prdetails.MessageUpdateCommits)
	assert.Contains(t, types, prdetails.MessageUpdateRelatedJiraIssues)
	// Without comments neither tasks nor diffs are fetched.
	assert.NotContains(t, types, prdetails.MessageUpdateTasks)
	assert.NotContains(t, types, prdetails.MessageUpdateFileDiffs)
	assert.Equal(t, -1, api.indexOf("tasks"))
}

func TestPullRequest_CommentAndTaskMutations(t *testing.T) {
	rec := &recorder{}
	api := prFixture()
	ctrl := NewPullRequestController(rec, api, testCommon(nil), model.PullRequest{ID: "5"})
	ctx := context.Background()

	ctrl.OnMessageReceived(ctx, prdetails.AddTask{Content: "write tests", CommentID: intPtr(1), Nonce: "t"})
	ctrl.OnMessageReceived(ctx, prdetails.PostComment{RawText: "looks good", Nonce: "c"})

	tasks := posted[prdetails.UpdateTasks](rec)
	require.Len(t, tasks, 1)
	assert.Equal(t, "t", tasks[0].Nonce)
	assert.Len(t, tasks[0].Tasks, 2)

	comments := posted[prdetails.UpdateComments](rec)
	require.Len(t, comments, 2)
	last := comments[1]
	assert.Equal(t, "c", last.Nonce)
	assert.Equal(t, []int{1, 99}, ids(last.Comments))
	// Known tasks stay attached after a comment mutation.
	require.Len(t, last.Comments[0].Tasks, 1)
	assert.Equal(t, "new", last.Comments[0].Tasks[0].ID)
}

func TestPullRequest_MergeReportsStatusAndReloads(t *testing.T) {
	rec := &recorder{}
	ctrl := NewPullRequestController(rec, prFixture(), testCommon(nil), model.PullRequest{ID: "5"})

	ctrl.OnMessageReceived(context.Background(), prdetails.Merge{MergeStrategy: model.MergeStrategy{Value: "squash"}, Nonce: "m"})

	status := posted[prdetails.UpdateMergeStatus](rec)
	require.Len(t, status, 1)
	assert.True(t, status[0].Status.Merged)
	assert.Equal(t, "m", status[0].Nonce)
	assert.Len(t, posted[prdetails.Init](rec), 1)
}

func TestFuture_Wait(t *testing.T) {
	f := async(context.Background(), func(context.Context) (int, error) { return 42, nil })
	v, err := f.wait()
	require.NoError(t, err)
	assert.Equal(t, 42, v)

	// Waiting again returns the same result.
	v, _ = f.wait()
	assert.Equal(t, 42, v)
}

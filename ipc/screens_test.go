package ipc_test

import (
	"testing"

	"github.com/kastheco/atlas/ipc"
	"github.com/kastheco/atlas/ipc/bbissue"
	"github.com/kastheco/atlas/ipc/createissue"
	"github.com/kastheco/atlas/ipc/createpr"
	"github.com/kastheco/atlas/ipc/onboarding"
	"github.com/kastheco/atlas/ipc/pipeline"
	"github.com/kastheco/atlas/ipc/prdetails"
	"github.com/kastheco/atlas/ipc/settings"
	"github.com/kastheco/atlas/ipc/startwork"
	"github.com/kastheco/atlas/ipc/welcome"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScreenRegistries_IncludeCommonVariants(t *testing.T) {
	screens := map[string]struct {
		actions  *ipc.ActionRegistry
		messages *ipc.MessageRegistry
	}{
		"bbissue":     {bbissue.Actions(), bbissue.Messages()},
		"createissue": {createissue.Actions(), createissue.Messages()},
		"createpr":    {createpr.Actions(), createpr.Messages()},
		"prdetails":   {prdetails.Actions(), prdetails.Messages()},
		"settings":    {settings.Actions(), settings.Messages()},
		"onboarding":  {onboarding.Actions(), onboarding.Messages()},
		"startwork":   {startwork.Actions(), startwork.Messages()},
		"pipeline":    {pipeline.Actions(), pipeline.Messages()},
		"welcome":     {welcome.Actions(), welcome.Messages()},
	}
	for name, s := range screens {
		t.Run(name, func(t *testing.T) {
			for _, a := range ipc.CommonActions() {
				assert.Contains(t, s.actions.Types(), a.ActionType())
			}
			for _, m := range ipc.CommonMessages() {
				assert.Contains(t, s.messages.Types(), m.MessageType())
			}
		})
	}
}

func TestStartWorkResponse_OmitsSkippedSteps(t *testing.T) {
	data, err := ipc.EncodeMessage(startwork.StartWorkResponse{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"startWorkResponse"}`, string(data))

	data, err = ipc.EncodeMessage(startwork.StartWorkResponse{TransistionStatus: "In Progress", Branch: "feature/ABC-1", Upstream: "origin"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"startWorkResponse","transistionStatus":"In Progress","branch":"feature/ABC-1","upstream":"origin"}`, string(data))
}

func TestPRDetails_ReviewerActionAndMessageShareWireName(t *testing.T) {
	a, err := prdetails.Actions().Decode([]byte(`{"type":"updateReviewers","reviewers":[{"accountId":"u1"}]}`))
	require.NoError(t, err)
	set, ok := a.(prdetails.SetReviewers)
	require.True(t, ok)
	require.Len(t, set.Reviewers, 1)
	assert.Equal(t, "u1", set.Reviewers[0].AccountID)

	m, err := prdetails.Messages().Decode([]byte(`{"type":"updateReviewers","reviewers":[{"role":"REVIEWER"}]}`))
	require.NoError(t, err)
	_, ok = m.(prdetails.UpdateReviewers)
	assert.True(t, ok)
}

package censustest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mark3labs/census/internal/api"
	"github.com/mark3labs/census/internal/census"
)

func TestServerAuthFlow(t *testing.T) {
	srv := New()
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	ctx := context.Background()

	client := api.New(ts.URL + "/api")
	u, err := client.Register(ctx, api.Registration{Username: "ama", Password: "secret1", Role: "AGENT"})
	require.NoError(t, err)
	assert.NotEmpty(t, u.ID)

	_, err = client.Register(ctx, api.Registration{Username: "ama", Password: "secret1", Role: "AGENT"})
	var apiErr *api.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.StatusCode)

	_, err = client.Login(ctx, api.Credentials{Username: "ama", Password: "wrong"})
	assert.ErrorIs(t, err, api.ErrUnauthorized)

	token, err := client.Login(ctx, api.Credentials{Username: "ama", Password: "secret1"})
	require.NoError(t, err)

	_, err = client.CurrentUser(ctx)
	assert.ErrorIs(t, err, api.ErrUnauthorized)

	client.Tokens = api.StaticToken(token)
	me, err := client.CurrentUser(ctx)
	require.NoError(t, err)
	assert.Equal(t, u.ID, me.ID)
}

func TestServerRecordsAreScopedToOwner(t *testing.T) {
	srv := New()
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	ctx := context.Background()

	for _, name := range []string{"ama", "kofi"} {
		_, err := srv.AddUser(name, "secret1", "AGENT")
		require.NoError(t, err)
	}
	amaTok, err := srv.Token("ama")
	require.NoError(t, err)
	kofiTok, err := srv.Token("kofi")
	require.NoError(t, err)

	ama := api.New(ts.URL+"/api", api.WithTokenSource(api.StaticToken(amaTok)), api.WithReadAttempts(1))
	kofi := api.New(ts.URL+"/api", api.WithTokenSource(api.StaticToken(kofiTok)), api.WithReadAttempts(1))

	rec, err := ama.CreateRecord(ctx)
	require.NoError(t, err)
	assert.Equal(t, census.StepLocation, rec.CurrentStep)
	assert.Equal(t, census.StatusInProgress, rec.Status)

	recs, err := kofi.ListRecords(ctx)
	require.NoError(t, err)
	assert.Empty(t, recs)

	_, err = kofi.GetRecord(ctx, rec.ID)
	var apiErr *api.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)

	recs, err = ama.ListRecords(ctx)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, rec.ID, recs[0].ID)
}

func TestServerValidateAndComplete(t *testing.T) {
	srv := New()
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	ctx := context.Background()

	_, err := srv.AddUser("ama", "secret1", "AGENT")
	require.NoError(t, err)
	tok, err := srv.Token("ama")
	require.NoError(t, err)
	client := api.New(ts.URL+"/api", api.WithTokenSource(api.StaticToken(tok)), api.WithReadAttempts(1))

	rec, err := client.CreateRecord(ctx)
	require.NoError(t, err)

	_, err = client.CompleteRecord(ctx, rec.ID)
	require.Error(t, err)

	_, err = client.SubmitStep(ctx, rec.ID, census.StepRoster, ValidPayload(census.StepRoster))
	require.Error(t, err, "steps ahead of the current one are rejected")

	report, err := client.ValidateRecord(ctx, rec.ID)
	require.NoError(t, err)
	assert.False(t, report.Valid)
	assert.Contains(t, report.Errors, "step1Data")

	for _, step := range census.AllSteps() {
		rec, err = client.SubmitStep(ctx, rec.ID, step, ValidPayload(step))
		require.NoError(t, err, "step %d", step)
	}
	assert.Equal(t, census.LastStep, rec.CurrentStep)

	report, err = client.ValidateRecord(ctx, rec.ID)
	require.NoError(t, err)
	assert.True(t, report.Valid, "%v", report.Errors)

	rec, err = client.CompleteRecord(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, census.StatusCompleted, rec.Status)
}

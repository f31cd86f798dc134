package testfixtures

import (
	"net/http/httptest"
	"testing"

	"github.com/mark3labs/census/internal/api"
	"github.com/mark3labs/census/internal/census"
	"github.com/mark3labs/census/internal/censustest"
	"github.com/mark3labs/census/internal/records"
	"github.com/mark3labs/census/internal/validate"
	"github.com/mark3labs/census/internal/wizard"
)

// Service is an in-memory census service with controllers wired to it.
type Service struct {
	Fake    *censustest.Server
	Client  *api.Client
	Records *records.Controller
	Wizard  *wizard.Controller
}

// NewService starts a fake census service for FixedUser.
func NewService(t *testing.T, opts ...wizard.Option) *Service {
	t.Helper()

	fake := censustest.New(censustest.WithClock(Now))
	ts := httptest.NewServer(fake.Handler())
	t.Cleanup(ts.Close)

	if _, err := fake.AddUser(FixedUser, "secret1", "AGENT"); err != nil {
		t.Fatalf("failed to add user: %v", err)
	}
	token, err := fake.Token(FixedUser)
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}

	client := api.New(ts.URL+"/api", api.WithTokenSource(api.StaticToken(token)), api.WithReadAttempts(1))
	v, err := validate.New()
	if err != nil {
		t.Fatalf("failed to create validator: %v", err)
	}

	return &Service{
		Fake:    fake,
		Client:  client,
		Records: records.New(client),
		Wizard:  wizard.New(client, v, opts...),
	}
}

// Seed stores records on the service and returns them with their ids.
func (s *Service) Seed(t *testing.T, recs ...census.Record) []census.Record {
	t.Helper()
	out := make([]census.Record, 0, len(recs))
	for _, rec := range recs {
		seeded, err := s.Fake.SeedRecord(FixedUser, rec)
		if err != nil {
			t.Fatalf("failed to seed record: %v", err)
		}
		out = append(out, seeded)
	}
	return out
}

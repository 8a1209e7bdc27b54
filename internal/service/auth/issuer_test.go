package auth

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bank-demo/internal/domain"
	"bank-demo/internal/metrics"
	"bank-demo/internal/repository"
	mocks "bank-demo/internal/testutil"
	"bank-demo/internal/token"
)

var now = time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)

func newTestCodec(t *testing.T) *token.Codec {
	t.Helper()
	c, err := token.NewCodec("issuer-test-secret", "bank-demo")
	require.NoError(t, err)
	return c.WithClock(func() time.Time { return now })
}

func newTestIssuer(t *testing.T, ttl time.Duration, m *metrics.Metrics) (*IssuerService, *token.Codec) {
	t.Helper()
	repo := repository.NewPrincipalRepo()
	require.NoError(t, repo.Create(context.Background(), domain.Principal{Identity: "john_doe", Secret: "password123"}))
	codec := newTestCodec(t)
	return NewIssuerService(repo, codec, ttl, m, slog.New(slog.DiscardHandler)), codec
}

func TestIssuer_Success(t *testing.T) {
	t.Parallel()
	issuer, codec := newTestIssuer(t, 0, nil)

	issued, err := issuer.Issue(context.Background(), "john_doe", "password123")
	require.NoError(t, err)
	assert.True(t, now.Add(DefaultTokenTTL).Equal(issued.ExpiresAt))
	assert.Equal(t, DefaultTokenTTL, issuer.TTL())

	claims, err := codec.Verify(issued.Token)
	require.NoError(t, err)
	assert.Equal(t, "john_doe", claims.Identity)
}

func TestIssuer_CustomTTL(t *testing.T) {
	t.Parallel()
	issuer, _ := newTestIssuer(t, 15*time.Minute, nil)

	issued, err := issuer.Issue(context.Background(), "john_doe", "password123")
	require.NoError(t, err)
	assert.True(t, now.Add(15*time.Minute).Equal(issued.ExpiresAt))
}

func TestIssuer_Rejections(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		identity string
		secret   string
		wantKind domain.ErrorKind
	}{
		{name: "missing identity", identity: "", secret: "password123", wantKind: domain.KindMissingFields},
		{name: "missing secret", identity: "john_doe", secret: "", wantKind: domain.KindMissingFields},
		{name: "missing both", wantKind: domain.KindMissingFields},
		{name: "wrong secret", identity: "john_doe", secret: "wrong", wantKind: domain.KindInvalidCredentials},
		{name: "secret prefix", identity: "john_doe", secret: "password12", wantKind: domain.KindInvalidCredentials},
		{name: "unknown identity", identity: "jane_doe", secret: "password123", wantKind: domain.KindInvalidCredentials},
		{name: "identity case differs", identity: "John_Doe", secret: "password123", wantKind: domain.KindInvalidCredentials},
	}

	issuer, _ := newTestIssuer(t, 0, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			issued, err := issuer.Issue(context.Background(), tt.identity, tt.secret)
			assert.Nil(t, issued)
			assert.Equal(t, tt.wantKind, domain.KindOf(err))
		})
	}
}

func TestIssuer_UnknownIdentityAndWrongSecretAreIndistinguishable(t *testing.T) {
	t.Parallel()
	issuer, _ := newTestIssuer(t, 0, nil)

	_, unknown := issuer.Issue(context.Background(), "jane_doe", "password123")
	_, wrong := issuer.Issue(context.Background(), "john_doe", "nope")

	require.Error(t, unknown)
	require.Error(t, wrong)
	assert.Equal(t, unknown.Error(), wrong.Error())
	assert.Equal(t, domain.KindOf(unknown), domain.KindOf(wrong))
}

func TestIssuer_LookupFailureIsInternal(t *testing.T) {
	t.Parallel()
	lookup := &mocks.MockPrincipalLookup{
		GetByIdentityFn: func(context.Context, string) (*domain.Principal, error) {
			return nil, errors.New("store offline")
		},
	}
	issuer := NewIssuerService(lookup, newTestCodec(t), time.Hour, nil, nil)

	_, err := issuer.Issue(context.Background(), "john_doe", "password123")
	require.Error(t, err)
	assert.Equal(t, domain.KindInternal, domain.KindOf(err))
	assert.ErrorContains(t, err, "store offline")
	assert.Equal(t, []string{"john_doe"}, lookup.Calls())
}

func TestIssuer_MissingFieldsSkipLookup(t *testing.T) {
	t.Parallel()
	lookup := &mocks.MockPrincipalLookup{}
	issuer := NewIssuerService(lookup, newTestCodec(t), time.Hour, nil, nil)

	_, err := issuer.Issue(context.Background(), "", "password123")
	assert.Equal(t, domain.KindMissingFields, domain.KindOf(err))
	assert.Empty(t, lookup.Calls())
}

func TestIssuer_RecordsMetrics(t *testing.T) {
	t.Parallel()
	m := metrics.New(prometheus.NewRegistry())
	issuer, _ := newTestIssuer(t, 0, m)
	ctx := context.Background()

	_, _ = issuer.Issue(ctx, "john_doe", "password123")
	_, _ = issuer.Issue(ctx, "john_doe", "wrong")
	_, _ = issuer.Issue(ctx, "", "")

	assert.InDelta(t, 1, testutil.ToFloat64(m.TokensIssued), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.AuthFailures.WithLabelValues("InvalidCredentials")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.AuthFailures.WithLabelValues("MissingFields")), 0)
}

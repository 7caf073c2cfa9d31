package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/shashiranjanraj/atelier/app/models"
	"github.com/shashiranjanraj/atelier/pkg/expo"
)

type fakeUserStore struct {
	users map[string]*models.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: map[string]*models.User{}}
}

func (f *fakeUserStore) add(role string, lease models.PushLease) *models.User {
	u := &models.User{ID: primitive.NewObjectID(), Role: role, PushLease: lease}
	f.users[u.ID.Hex()] = u
	return u
}

func (f *fakeUserStore) FindByID(_ context.Context, id string) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserStore) AllWithToken(_ context.Context) ([]models.User, error) {
	var out []models.User
	for _, u := range f.users {
		if u.PushLease.HasToken() {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (f *fakeUserStore) UpdateLease(_ context.Context, userID primitive.ObjectID, lease models.PushLease) error {
	u, ok := f.users[userID.Hex()]
	if !ok {
		return mongo.ErrNoDocuments
	}
	u.PushLease = lease
	return nil
}

func (f *fakeUserStore) ClearLease(_ context.Context, userID primitive.ObjectID) error {
	u, ok := f.users[userID.Hex()]
	if !ok {
		return mongo.ErrNoDocuments
	}
	u.PushLease = models.PushLease{}
	return nil
}

// fakeGateway accepts ExponentPushToken-shaped strings and answers probes
// from a scripted ticket list.
type fakeGateway struct {
	tickets []expo.Ticket
	sendErr error
	sent    [][]expo.Message
}

func (f *fakeGateway) ValidToken(token string) bool {
	return expo.IsExpoToken(token)
}

func (f *fakeGateway) Send(_ context.Context, msgs []expo.Message) ([]expo.Ticket, error) {
	f.sent = append(f.sent, msgs)
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	if f.tickets != nil {
		return f.tickets, nil
	}
	tickets := make([]expo.Ticket, len(msgs))
	for i := range tickets {
		tickets[i] = expo.Ticket{Status: "ok", ID: "t1"}
	}
	return tickets, nil
}

func freezeClock(t *testing.T, at time.Time) {
	t.Helper()
	old := timeNow
	timeNow = func() time.Time { return at }
	t.Cleanup(func() { timeNow = old })
}

func lease(token string, expires, validated time.Time) models.PushLease {
	return models.PushLease{Token: &token, ExpiresAt: &expires, ValidatedAt: &validated}
}

const goodToken = "ExponentPushToken[abc123def456]"

// ─── Registration ────────────────────────────────────────────────────────────

func TestSetPushTokenWritesThirtyDayLease(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	freezeClock(t, now)

	store := newFakeUserStore()
	u := store.add(models.RoleUser, models.PushLease{})
	svc := NewPushTokenService(store, &fakeGateway{})

	require.NoError(t, svc.SetPushToken(context.Background(), u.ID.Hex(), goodToken))

	got := store.users[u.ID.Hex()].PushLease
	require.True(t, got.HasToken())
	assert.Equal(t, goodToken, *got.Token)
	assert.Equal(t, now.Add(TokenTTL), *got.ExpiresAt)
	assert.Equal(t, now, *got.ValidatedAt)
}

func TestSetPushTokenRejectsAdmins(t *testing.T) {
	store := newFakeUserStore()
	u := store.add(models.RoleAdmin, models.PushLease{})
	svc := NewPushTokenService(store, &fakeGateway{})

	err := svc.SetPushToken(context.Background(), u.ID.Hex(), goodToken)
	assert.ErrorIs(t, err, ErrTokenRoleForbidden)
	assert.False(t, store.users[u.ID.Hex()].PushLease.HasToken())
}

func TestSetPushTokenRejectsMalformedToken(t *testing.T) {
	store := newFakeUserStore()
	u := store.add(models.RoleUser, models.PushLease{})
	svc := NewPushTokenService(store, &fakeGateway{})

	err := svc.SetPushToken(context.Background(), u.ID.Hex(), "not-a-token")
	var verrs ValidationErrors
	require.True(t, errors.As(err, &verrs))
	assert.Contains(t, verrs, "pushToken")
}

func TestMarkValidatedRollsLeaseForward(t *testing.T) {
	registered := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	store := newFakeUserStore()
	u := store.add(models.RoleUser, lease(goodToken, registered.Add(TokenTTL), registered))

	// 20 days later a probe succeeds: expiry moves to probe time + 30d.
	probeTime := registered.Add(20 * 24 * time.Hour)
	freezeClock(t, probeTime)

	svc := NewPushTokenService(store, &fakeGateway{})
	require.NoError(t, svc.MarkValidated(context.Background(), store.users[u.ID.Hex()]))

	got := store.users[u.ID.Hex()].PushLease
	assert.Equal(t, probeTime.Add(TokenTTL), *got.ExpiresAt)
	assert.Equal(t, probeTime, *got.ValidatedAt)
	assert.Equal(t, goodToken, *got.Token)
}

// ─── Cleanup sweep ───────────────────────────────────────────────────────────

func TestCleanupSweepCategories(t *testing.T) {
	now := time.Date(2026, 4, 15, 9, 0, 0, 0, time.UTC)
	freezeClock(t, now)

	store := newFakeUserStore()
	expired := store.add(models.RoleUser, lease(goodToken, now.Add(-time.Hour), now.Add(-31*24*time.Hour)))
	malformed := store.add(models.RoleUser, lease("garbage", now.Add(TokenTTL), now.Add(-2*ValidationInterval)))
	fresh := store.add(models.RoleUser, lease(goodToken, now.Add(TokenTTL), now.Add(-time.Hour)))
	stale := store.add(models.RoleUser, lease(goodToken, now.Add(TokenTTL), now.Add(-2*ValidationInterval)))
	store.add(models.RoleUser, models.PushLease{}) // no token, not swept

	gw := &fakeGateway{}
	svc := NewPushTokenService(store, gw)

	report, err := svc.CleanupSweep(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 4, report.Total)
	assert.Equal(t, 1, report.Expired)
	assert.Equal(t, 1, report.InvalidFormat)
	assert.Equal(t, 1, report.Validated)
	assert.Equal(t, 1, report.Skipped)
	assert.Equal(t, 0, report.InvalidToken)
	assert.Equal(t, 0, report.Errors)

	assert.False(t, store.users[expired.ID.Hex()].PushLease.HasToken())
	assert.False(t, store.users[malformed.ID.Hex()].PushLease.HasToken())
	assert.True(t, store.users[fresh.ID.Hex()].PushLease.HasToken())

	// The stale lease was probed and renewed.
	renewed := store.users[stale.ID.Hex()].PushLease
	require.True(t, renewed.HasToken())
	assert.Equal(t, now.Add(TokenTTL), *renewed.ExpiresAt)

	// Exactly one probe went out, silent and addressed to the stale token.
	require.Len(t, gw.sent, 1)
	require.Len(t, gw.sent[0], 1)
	assert.Equal(t, goodToken, gw.sent[0][0].To)
	assert.Empty(t, gw.sent[0][0].Title)
	assert.Equal(t, "probe", gw.sent[0][0].Data["type"])
}

func TestCleanupSweepClearsDeadToken(t *testing.T) {
	now := time.Date(2026, 4, 15, 9, 0, 0, 0, time.UTC)
	freezeClock(t, now)

	store := newFakeUserStore()
	u := store.add(models.RoleUser, lease(goodToken, now.Add(TokenTTL), now.Add(-2*ValidationInterval)))

	gw := &fakeGateway{tickets: []expo.Ticket{{
		Status:  "error",
		Message: "device gone",
		Details: map[string]interface{}{"error": "DeviceNotRegistered"},
	}}}
	svc := NewPushTokenService(store, gw)

	report, err := svc.CleanupSweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.InvalidToken)
	assert.False(t, store.users[u.ID.Hex()].PushLease.HasToken())
}

func TestCleanupSweepTransportErrorLeavesLeaseAlone(t *testing.T) {
	now := time.Date(2026, 4, 15, 9, 0, 0, 0, time.UTC)
	freezeClock(t, now)

	store := newFakeUserStore()
	before := lease(goodToken, now.Add(TokenTTL), now.Add(-2*ValidationInterval))
	u := store.add(models.RoleUser, before)

	gw := &fakeGateway{sendErr: errors.New("gateway unreachable")}
	svc := NewPushTokenService(store, gw)

	report, err := svc.CleanupSweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Errors)

	got := store.users[u.ID.Hex()].PushLease
	require.True(t, got.HasToken())
	assert.Equal(t, *before.ExpiresAt, *got.ExpiresAt)
	assert.Equal(t, *before.ValidatedAt, *got.ValidatedAt)
}

func TestStatusReportsLeaseState(t *testing.T) {
	now := time.Date(2026, 4, 15, 9, 0, 0, 0, time.UTC)
	freezeClock(t, now)

	store := newFakeUserStore()
	live := store.add(models.RoleUser, lease(goodToken, now.Add(time.Hour), now))
	bare := store.add(models.RoleUser, models.PushLease{})
	svc := NewPushTokenService(store, &fakeGateway{})

	st, err := svc.Status(context.Background(), live.ID.Hex())
	require.NoError(t, err)
	assert.True(t, st.HasToken)
	assert.False(t, st.Expired)

	st, err = svc.Status(context.Background(), bare.ID.Hex())
	require.NoError(t, err)
	assert.False(t, st.HasToken)
	assert.True(t, st.Expired)
}

package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestAuditRecordAndList(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	svc := NewAuditService(env.db, env.log)
	alice := env.user(t, "alice")
	bob := env.user(t, "bob")

	require.NoError(t, svc.Record(ctx, AuditEntry{AdminID: alice, Action: "moderate_track", TargetType: "track", TargetID: 7, Details: map[string]any{"status": "approved"}, IPAddress: "10.0.0.1"}))
	require.NoError(t, svc.Record(ctx, AuditEntry{AdminID: alice, Action: "create_genre", TargetType: "genre", TargetID: 1}))
	require.NoError(t, svc.Record(ctx, AuditEntry{AdminID: bob, Action: "moderate_track", TargetType: "track", TargetID: 8}))

	page, err := svc.List(ctx, AuditFilter{}, 0, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 3, page.TotalCount)
	assert.Equal(t, "moderate_track", page.Items[0].Action)
	assert.Equal(t, uint(8), page.Items[0].TargetID)
	require.NotNil(t, page.Items[0].Admin)
	assert.Equal(t, "bob", page.Items[0].Admin.Username)

	page, err = svc.List(ctx, AuditFilter{AdminID: &alice, Action: "moderate_track"}, 1, 10)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "10.0.0.1", page.Items[0].IPAddress)

	var details map[string]string
	require.NoError(t, json.Unmarshal([]byte(page.Items[0].Details), &details))
	assert.Equal(t, "approved", details["status"])

	n, err := svc.ActionCount(ctx, alice, "create_genre", time.Now().Add(-time.Minute))
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestAuditWarnsOnDeletionBurst(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	core, logs := observer.New(zap.WarnLevel)
	svc := NewAuditService(env.db, zap.New(core))
	admin := env.user(t, "admin")

	for i := 1; i < suspiciousDeletes; i++ {
		require.NoError(t, svc.Record(ctx, AuditEntry{AdminID: admin, Action: "delete_comment", TargetType: "comment", TargetID: uint(i)}))
	}
	assert.Zero(t, logs.FilterMessage("suspicious admin activity").Len())

	require.NoError(t, svc.Record(ctx, AuditEntry{AdminID: admin, Action: "delete_artist", TargetType: "artist", TargetID: 1}))
	assert.Equal(t, 1, logs.FilterMessage("suspicious admin activity").Len())
}

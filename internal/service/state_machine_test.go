package service

import (
	"testing"

	"whatsappmgr/internal/errors"
	"whatsappmgr/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetStatus_Transition(t *testing.T) {
	sink := &recordingSink{}
	manager := newTestManager(stubTransport{}, sink)

	_, err := manager.CreateSession("s1")
	require.NoError(t, err)
	waitForCount(t, sink.statusCount, 1) // initializing

	require.NoError(t, manager.SetStatus("s1", models.SessionStatusAuthenticated))

	status, err := manager.GetStatus("s1")
	require.NoError(t, err)
	assert.Equal(t, models.SessionStatusAuthenticated, status)

	waitForCount(t, sink.statusCount, 2)
	assert.Equal(t, models.SessionStatusAuthenticated, sink.lastStatus())
}

func TestSetStatus_IdenticalStatusIsNoOp(t *testing.T) {
	sink := &recordingSink{}
	manager := newTestManager(stubTransport{}, sink)

	_, err := manager.CreateSession("s1")
	require.NoError(t, err)
	waitForCount(t, sink.statusCount, 1)

	require.NoError(t, manager.SetStatus("s1", models.SessionStatusDisconnected))
	require.NoError(t, manager.SetStatus("s1", models.SessionStatusDisconnected))

	// the repeated transition produces no second notification
	waitForCount(t, sink.statusCount, 2)
}

func TestSetStatus_ReadyClearsPairing(t *testing.T) {
	manager := newTestManager(stubTransport{}, nil)

	_, err := manager.CreateSession("s1")
	require.NoError(t, err)
	require.NoError(t, manager.OnPairingCode("s1", "PAYLOAD", testNow))

	_, err = manager.GetPairingCode("s1", testNow)
	require.NoError(t, err)

	require.NoError(t, manager.SetStatus("s1", models.SessionStatusReady))

	_, err = manager.GetPairingCode("s1", testNow)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeUnavailable, errors.GetCode(err))

	stats, err := manager.GetPairingStats("s1")
	require.NoError(t, err)
	assert.False(t, stats.HasCode)
	assert.False(t, stats.HasDedupState)
	assert.Equal(t, models.SessionStatusReady, stats.Status)
}

func TestSetStatus_UnknownSession(t *testing.T) {
	manager := newTestManager(stubTransport{}, nil)

	err := manager.SetStatus("missing", models.SessionStatusReady)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeNotFound, errors.GetCode(err))
}

func TestSetStatus_InvalidStatus(t *testing.T) {
	manager := newTestManager(stubTransport{}, nil)

	err := manager.SetStatus("s1", models.SessionStatus("bogus"))
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeInvalidInput, errors.GetCode(err))
}

func TestHandleLifecycleEvent(t *testing.T) {
	tests := []struct {
		event    string
		expected models.SessionStatus
	}{
		{EventAuthenticated, models.SessionStatusAuthenticated},
		{EventReady, models.SessionStatusReady},
		{EventAuthFailure, models.SessionStatusAuthFailure},
		{EventDisconnected, models.SessionStatusDisconnected},
	}

	for _, tt := range tests {
		t.Run(tt.event, func(t *testing.T) {
			manager := newTestManager(stubTransport{}, nil)
			_, err := manager.CreateSession("s1")
			require.NoError(t, err)

			require.NoError(t, manager.HandleLifecycleEvent("s1", tt.event))

			status, err := manager.GetStatus("s1")
			require.NoError(t, err)
			assert.Equal(t, tt.expected, status)
		})
	}
}

func TestHandleLifecycleEvent_Unknown(t *testing.T) {
	manager := newTestManager(stubTransport{}, nil)
	_, err := manager.CreateSession("s1")
	require.NoError(t, err)

	err = manager.HandleLifecycleEvent("s1", "rebooted")
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeInvalidInput, errors.GetCode(err))
}

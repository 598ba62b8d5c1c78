package services

import (
	"sync"
	"testing"

	"github.com/codewithedgar/bothost/models"
	"github.com/codewithedgar/bothost/provisioning"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvisioner struct {
	mu       sync.Mutex
	requests []provisioning.ProvisionRequest
	fail     bool
}

func (f *fakeProvisioner) RequestProvision(req provisioning.ProvisionRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return assert.AnError
	}
	f.requests = append(f.requests, req)
	return nil
}

func TestRequestDeploymentDebitsAndCreatesPendingBot(t *testing.T) {
	db := newTestDB(t)
	deployments := NewDeploymentService(db, nil)
	user := createUser(t, db, "alice")
	fund(t, db, user, 50)

	bot, err := deployments.RequestDeployment(user.ID, "echo-bot", "TOKEN=abc")
	require.NoError(t, err)
	assert.Equal(t, models.BotStatusPending, bot.Status)
	assert.Equal(t, user.ID, bot.UserID)

	assert.Equal(t, int64(0), currentCoins(t, db, user))

	var event models.LedgerEvent
	require.NoError(t, db.Where("user_id = ? AND kind = ?", user.ID, models.KindDeploymentDebit).First(&event).Error)
	assert.Equal(t, int64(-DeploymentCost), event.Amount)

	assert.Equal(t, currentCoins(t, db, user), eventSum(t, db, user))
}

func TestRequestDeploymentInsufficientBalanceHasNoSideEffects(t *testing.T) {
	db := newTestDB(t)
	deployments := NewDeploymentService(db, nil)
	user := createUser(t, db, "bob")
	fund(t, db, user, 40)

	_, err := deployments.RequestDeployment(user.ID, "echo-bot", "")
	require.ErrorIs(t, err, ErrInsufficientBalance)

	assert.Equal(t, int64(40), currentCoins(t, db, user))
	var count int64
	db.Model(&models.Bot{}).Where("user_id = ?", user.ID).Count(&count)
	assert.Zero(t, count)
}

func TestConcurrentDeploymentsOneWins(t *testing.T) {
	db := newTestDB(t)
	deployments := NewDeploymentService(db, nil)
	user := createUser(t, db, "carol")
	fund(t, db, user, 50)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = deployments.RequestDeployment(user.ID, "racer", "")
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, err := range errs {
		if err == nil {
			successes++
		} else {
			require.ErrorIs(t, err, ErrInsufficientBalance)
		}
	}
	assert.Equal(t, 1, successes)
	assert.Equal(t, int64(0), currentCoins(t, db, user))

	var count int64
	db.Model(&models.Bot{}).Where("user_id = ?", user.ID).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestDispatchMovesBotToDeploying(t *testing.T) {
	db := newTestDB(t)
	fake := &fakeProvisioner{}
	deployments := NewDeploymentService(db, fake)
	user := createUser(t, db, "dave")
	fund(t, db, user, 50)

	bot, err := deployments.RequestDeployment(user.ID, "worker", "A=1")
	require.NoError(t, err)

	// RequestDeployment dispatches on a goroutine; call it directly for a
	// deterministic check.
	deployments.Dispatch(*bot)

	var fresh models.Bot
	require.NoError(t, db.First(&fresh, "id = ?", bot.ID).Error)
	assert.Equal(t, models.BotStatusDeploying, fresh.Status)

	fake.mu.Lock()
	defer fake.mu.Unlock()
	require.NotEmpty(t, fake.requests)
	assert.Equal(t, bot.ID.String(), fake.requests[len(fake.requests)-1].BotID)
}

func TestDispatchFailureLeavesBotPending(t *testing.T) {
	db := newTestDB(t)
	fake := &fakeProvisioner{fail: true}
	deployments := NewDeploymentService(db, fake)
	user := createUser(t, db, "erin")
	fund(t, db, user, 50)

	bot, err := deployments.RequestDeployment(user.ID, "worker", "")
	require.NoError(t, err)

	deployments.Dispatch(*bot)

	var fresh models.Bot
	require.NoError(t, db.First(&fresh, "id = ?", bot.ID).Error)
	assert.Equal(t, models.BotStatusPending, fresh.Status)

	// no refund on provisioning failure
	assert.Equal(t, int64(0), currentCoins(t, db, user))
}

func TestUpdateStatusFollowsStateMachine(t *testing.T) {
	db := newTestDB(t)
	deployments := NewDeploymentService(db, nil)
	user := createUser(t, db, "frank")
	fund(t, db, user, 50)

	bot, err := deployments.RequestDeployment(user.ID, "worker", "")
	require.NoError(t, err)

	// pending -> deployed skips deploying
	err = deployments.UpdateStatus(bot.ID, models.BotStatusDeployed)
	require.ErrorIs(t, err, ErrInvalidTransition)

	require.NoError(t, deployments.UpdateStatus(bot.ID, models.BotStatusDeploying))
	require.NoError(t, deployments.UpdateStatus(bot.ID, models.BotStatusDeployed))
	require.NoError(t, deployments.UpdateStatus(bot.ID, models.BotStatusStopped))

	// stopped is terminal
	err = deployments.UpdateStatus(bot.ID, models.BotStatusDeploying)
	require.ErrorIs(t, err, ErrInvalidTransition)
}

package usecase_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/fedmod/ostracon/pkg/domain/model"
	"github.com/fedmod/ostracon/pkg/domain/types"
	"github.com/fedmod/ostracon/pkg/repository/memory"
	"github.com/fedmod/ostracon/pkg/usecase"
)

const (
	communityA = types.CommunityID("C0000000A")
	communityB = types.CommunityID("C0000000B")
	ownerA     = types.UserID("U000OWNERA")
	ownerB     = types.UserID("U000OWNERB")
	targetUser = types.UserID("U000TARGET")
	logChannel = "C0000000LOG"
)

type fakeGateway struct {
	mu        sync.Mutex
	decide    map[types.UserID]func(ctx context.Context) (types.Decision, error)
	prompts   map[types.UserID]int
	notices   map[types.UserID][]string
	announced []string
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		decide:  make(map[types.UserID]func(ctx context.Context) (types.Decision, error)),
		prompts: make(map[types.UserID]int),
		notices: make(map[types.UserID][]string),
	}
}

func (g *fakeGateway) decideWith(person types.UserID, decision types.Decision) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.decide[person] = func(ctx context.Context) (types.Decision, error) {
		return decision, nil
	}
}

func (g *fakeGateway) Notify(ctx context.Context, person types.UserID, text string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.notices[person] = append(g.notices[person], text)
	return true, nil
}

func (g *fakeGateway) PresentDecision(ctx context.Context, person types.UserID, text string) (types.Decision, error) {
	g.mu.Lock()
	g.prompts[person]++
	fn := g.decide[person]
	g.mu.Unlock()

	if fn != nil {
		return fn(ctx)
	}
	<-ctx.Done()
	return "", ctx.Err()
}

func (g *fakeGateway) Announce(ctx context.Context, channelID string, text string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.announced = append(g.announced, text)
	return nil
}

func (g *fakeGateway) noticesFor(person types.UserID) []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]string, len(g.notices[person]))
	copy(out, g.notices[person])
	return out
}

func (g *fakeGateway) promptCount(person types.UserID) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.prompts[person]
}

func (g *fakeGateway) announcements() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]string, len(g.announced))
	copy(out, g.announced)
	return out
}

func reminderCount(notices []string) int {
	n := 0
	for _, text := range notices {
		if strings.HasPrefix(text, "Reminder:") {
			n++
		}
	}
	return n
}

type fakeMembership struct {
	mu      sync.Mutex
	members map[types.CommunityID][]types.UserID
	errFor  map[types.CommunityID]error
}

func (m *fakeMembership) IsPresent(ctx context.Context, community types.CommunityID, person types.UserID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.errFor[community]; err != nil {
		return false, err
	}
	for _, p := range m.members[community] {
		if p == person {
			return true, nil
		}
	}
	return false, nil
}

type removal struct {
	community types.CommunityID
	person    types.UserID
	reason    string
}

type fakeActions struct {
	mu      sync.Mutex
	removed []removal
	failFor map[types.CommunityID]error
}

func (a *fakeActions) Remove(ctx context.Context, community types.CommunityID, person types.UserID, reason string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.failFor[community]; err != nil {
		return err
	}
	a.removed = append(a.removed, removal{community: community, person: person, reason: reason})
	return nil
}

func (a *fakeActions) removals() []removal {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]removal, len(a.removed))
	copy(out, a.removed)
	return out
}

type fakeRegistry struct {
	mu        sync.Mutex
	upserts   int
	lastAux   map[string]string
	removes   []string
	entries   map[types.UserID]*model.BlacklistEntry
	upsertErr error
	checkErr  error
}

func (r *fakeRegistry) Upsert(ctx context.Context, target model.Target, reason string, auxiliaryIDs map[string]string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.upsertErr != nil {
		return false, r.upsertErr
	}
	r.upserts++
	r.lastAux = auxiliaryIDs
	return true, nil
}

func (r *fakeRegistry) Remove(ctx context.Context, identifier string, field types.RemoveField) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.removes = append(r.removes, identifier)
	return true, nil
}

func (r *fakeRegistry) Check(ctx context.Context, target types.UserID) (*model.BlacklistEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.checkErr != nil {
		return nil, r.checkErr
	}
	return r.entries[target], nil
}

func (r *fakeRegistry) upsertCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.upserts
}

type env struct {
	store      *memory.Memory
	gateway    *fakeGateway
	membership *fakeMembership
	actions    *fakeActions
	registry   *fakeRegistry
	uc         *usecase.UseCases
}

func newEnv(t *testing.T, deadline, reminderInterval time.Duration) *env {
	t.Helper()

	federation, err := model.NewFederation([]model.Community{
		{ID: communityA, Name: "Alpha", OwnerID: ownerA},
		{ID: communityB, Name: "Beta", OwnerID: ownerB},
	}, logChannel)
	gt.NoError(t, err).Required()

	e := &env{
		store:   memory.New(),
		gateway: newFakeGateway(),
		membership: &fakeMembership{
			members: map[types.CommunityID][]types.UserID{
				communityA: {targetUser},
				communityB: {targetUser},
			},
		},
		actions:  &fakeActions{},
		registry: &fakeRegistry{entries: make(map[types.UserID]*model.BlacklistEntry)},
	}
	e.uc = usecase.New(e.store, federation,
		usecase.WithGateway(e.gateway),
		usecase.WithMembership(e.membership),
		usecase.WithActions(e.actions),
		usecase.WithRegistry(e.registry),
		usecase.WithDeadline(deadline),
		usecase.WithReminderInterval(reminderInterval),
	)
	return e
}

func (e *env) confirm(t *testing.T) *model.RemovalRequest {
	t.Helper()
	req, err := e.uc.ConfirmRequest(context.Background(), &model.RemovalRequest{
		Target: model.Target{ID: targetUser, DisplayName: "JohnDoe"},
		Reason: "harassment",
		Status: types.RequestStatusDraft,
	})
	gt.NoError(t, err).Required()
	return req
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestRunApproveAndTimeout(t *testing.T) {
	e := newEnv(t, 200*time.Millisecond, 60*time.Millisecond)
	e.gateway.decideWith(ownerA, types.DecisionApprove)
	req := e.confirm(t)

	done, err := e.uc.StartRun(context.Background(), req.ID)
	gt.NoError(t, err).Required()

	gt.Value(t, done.Status).Equal(types.RequestStatusCompleted)
	gt.Value(t, done.CompletedAt != nil).Equal(true)
	gt.Array(t, done.Outcomes).Length(2)
	gt.Value(t, done.Outcome(communityA).State).Equal(types.DecisionStateActionSucceeded)
	gt.Value(t, done.Outcome(communityB).State).Equal(types.DecisionStateTimedOut)

	removed := e.actions.removals()
	gt.Array(t, removed).Length(1)
	gt.Value(t, removed[0].community).Equal(communityA)
	gt.Value(t, removed[0].person).Equal(targetUser)

	gt.Value(t, e.registry.upsertCount()).Equal(1)

	// Unresponsive owner was reminded before the deadline, but not flooded
	reminders := reminderCount(e.gateway.noticesFor(ownerB))
	gt.Bool(t, reminders >= 1).True()
	gt.Bool(t, reminders <= 3).True()

	// Target learns which community removed them
	targetNotices := e.gateway.noticesFor(targetUser)
	gt.Array(t, targetNotices).Length(1)
	gt.Bool(t, strings.Contains(targetNotices[0], "Alpha")).True()

	gt.Bool(t, len(e.gateway.announcements()) > 0).True()

	stored, err := e.store.Get(context.Background(), req.ID)
	gt.NoError(t, err).Required()
	gt.Value(t, stored.Status).Equal(types.RequestStatusCompleted)
}

func TestRunDenied(t *testing.T) {
	e := newEnv(t, 200*time.Millisecond, time.Hour)
	e.gateway.decideWith(ownerA, types.DecisionDeny)
	e.gateway.decideWith(ownerB, types.DecisionDeny)
	req := e.confirm(t)

	done, err := e.uc.StartRun(context.Background(), req.ID)
	gt.NoError(t, err).Required()

	gt.Value(t, done.Status).Equal(types.RequestStatusCompleted)
	gt.Value(t, done.Outcome(communityA).State).Equal(types.DecisionStateDenied)
	gt.Value(t, done.Outcome(communityB).State).Equal(types.DecisionStateDenied)
	gt.Array(t, e.actions.removals()).Length(0)
	gt.Value(t, e.registry.upsertCount()).Equal(1)
}

func TestRunZeroCommunities(t *testing.T) {
	e := newEnv(t, 200*time.Millisecond, time.Hour)
	e.membership.members = map[types.CommunityID][]types.UserID{}
	req := e.confirm(t)

	done, err := e.uc.StartRun(context.Background(), req.ID)
	gt.NoError(t, err).Required()

	gt.Value(t, done.Status).Equal(types.RequestStatusCompleted)
	gt.Array(t, done.Outcomes).Length(0)
	gt.Array(t, e.actions.removals()).Length(0)
	gt.Value(t, e.registry.upsertCount()).Equal(1)
	gt.Array(t, e.gateway.noticesFor(targetUser)).Length(0)
}

func TestRunMembershipFailureTreatedAsAbsent(t *testing.T) {
	e := newEnv(t, 200*time.Millisecond, time.Hour)
	e.membership.errFor = map[types.CommunityID]error{communityA: errors.New("missing_scope")}
	e.gateway.decideWith(ownerB, types.DecisionApprove)
	req := e.confirm(t)

	done, err := e.uc.StartRun(context.Background(), req.ID)
	gt.NoError(t, err).Required()

	gt.Array(t, done.Outcomes).Length(1)
	gt.Value(t, done.Outcomes[0].CommunityID).Equal(communityB)
	gt.Value(t, done.Outcomes[0].State).Equal(types.DecisionStateActionSucceeded)
}

func TestRunActionFailureIsRecorded(t *testing.T) {
	e := newEnv(t, 200*time.Millisecond, time.Hour)
	e.gateway.decideWith(ownerA, types.DecisionApprove)
	e.gateway.decideWith(ownerB, types.DecisionApprove)
	e.actions.failFor = map[types.CommunityID]error{communityB: errors.New("not_in_channel")}
	req := e.confirm(t)

	done, err := e.uc.StartRun(context.Background(), req.ID)
	gt.NoError(t, err).Required()

	gt.Value(t, done.Status).Equal(types.RequestStatusCompleted)
	gt.Value(t, done.Outcome(communityA).State).Equal(types.DecisionStateActionSucceeded)
	gt.Value(t, done.Outcome(communityB).State).Equal(types.DecisionStateActionFailed)
	gt.Bool(t, strings.Contains(done.Outcome(communityB).FailureReason, "not_in_channel")).True()
	gt.Value(t, e.registry.upsertCount()).Equal(1)
}

func TestRunPromptUndeliverable(t *testing.T) {
	e := newEnv(t, 200*time.Millisecond, time.Hour)
	e.gateway.decide[ownerA] = func(ctx context.Context) (types.Decision, error) {
		return "", errors.New("failed to open DM: cannot_dm_bot")
	}
	e.membership.members = map[types.CommunityID][]types.UserID{communityA: {targetUser}}
	req := e.confirm(t)

	done, err := e.uc.StartRun(context.Background(), req.ID)
	gt.NoError(t, err).Required()

	// No affordance was shown, so no consent exists
	gt.Value(t, done.Outcome(communityA).State).Equal(types.DecisionStateTimedOut)
	gt.Array(t, e.actions.removals()).Length(0)
}

func TestCancelMidFlight(t *testing.T) {
	e := newEnv(t, 5*time.Second, time.Hour)
	req := e.confirm(t)

	runDone := make(chan struct{})
	go func() {
		defer close(runDone)
		_, _ = e.uc.StartRun(context.Background(), req.ID)
	}()

	waitFor(t, 2*time.Second, func() bool {
		return e.gateway.promptCount(ownerA) > 0 && e.gateway.promptCount(ownerB) > 0
	})

	gt.NoError(t, e.uc.CancelRequest(context.Background(), req.ID))
	<-runDone

	stored, err := e.store.Get(context.Background(), req.ID)
	gt.NoError(t, err).Required()
	gt.Value(t, stored.Status).Equal(types.RequestStatusCancelled)
	gt.Value(t, stored.Outcome(communityA).State).Equal(types.DecisionStateCancelled)
	gt.Value(t, stored.Outcome(communityB).State).Equal(types.DecisionStateCancelled)
	gt.Array(t, e.actions.removals()).Length(0)
	gt.Value(t, e.registry.upsertCount()).Equal(0)

	// Cancelling again is a no-op
	gt.NoError(t, e.uc.CancelRequest(context.Background(), req.ID))
}

func TestCancelAfterApproval(t *testing.T) {
	e := newEnv(t, 5*time.Second, time.Hour)
	e.gateway.decideWith(ownerA, types.DecisionApprove)
	req := e.confirm(t)

	runDone := make(chan struct{})
	go func() {
		defer close(runDone)
		_, _ = e.uc.StartRun(context.Background(), req.ID)
	}()

	waitFor(t, 2*time.Second, func() bool {
		stored, err := e.store.Get(context.Background(), req.ID)
		if err != nil {
			return false
		}
		outcome := stored.Outcome(communityA)
		return outcome != nil && outcome.State == types.DecisionStateApproved
	})

	gt.NoError(t, e.uc.CancelRequest(context.Background(), req.ID))
	<-runDone

	// The approved but unapplied outcome is cancelled with the rest
	stored, err := e.store.Get(context.Background(), req.ID)
	gt.NoError(t, err).Required()
	gt.Value(t, stored.Status).Equal(types.RequestStatusCancelled)
	gt.Value(t, stored.Outcome(communityA).State).Equal(types.DecisionStateCancelled)
	gt.Value(t, stored.Outcome(communityB).State).Equal(types.DecisionStateCancelled)
	gt.Array(t, e.actions.removals()).Length(0)
}

func TestCancelStoredRequest(t *testing.T) {
	e := newEnv(t, time.Hour, time.Hour)
	req := e.confirm(t)

	gt.NoError(t, e.uc.CancelRequest(context.Background(), req.ID))

	stored, err := e.store.Get(context.Background(), req.ID)
	gt.NoError(t, err).Required()
	gt.Value(t, stored.Status).Equal(types.RequestStatusCancelled)
}

func TestSweepResumesWithPersistedState(t *testing.T) {
	e := newEnv(t, 500*time.Millisecond, 10*time.Millisecond)

	// Simulate a crashed run: in_progress, deadline close, most reminder
	// slots already elapsed
	deadline := time.Now().UTC().Add(40 * time.Millisecond)
	req := &model.RemovalRequest{
		ID:     model.NewRequestID(),
		Target: model.Target{ID: targetUser, DisplayName: "JohnDoe"},
		Reason: "harassment",
		Status: types.RequestStatusInProgress,
		Outcomes: []*model.CommunityDecision{
			model.NewCommunityDecision(communityA, ownerA, deadline),
		},
		CreatedAt: time.Now().UTC().Add(-time.Hour),
	}
	gt.NoError(t, e.store.Put(context.Background(), req)).Required()

	gt.NoError(t, e.uc.Sweep(context.Background()))

	waitFor(t, 2*time.Second, func() bool {
		stored, err := e.store.Get(context.Background(), req.ID)
		return err == nil && stored.Status == types.RequestStatusCompleted
	})

	stored, err := e.store.Get(context.Background(), req.ID)
	gt.NoError(t, err).Required()
	gt.Value(t, stored.Outcome(communityA).State).Equal(types.DecisionStateTimedOut)
	// The persisted deadline is honored, not restarted
	gt.Value(t, stored.Outcome(communityA).Deadline.Unix()).Equal(deadline.Unix())

	// Dozens of reminder slots elapsed while "down"; the resume sends one
	// catch-up reminder instead of replaying the backlog
	reminders := reminderCount(e.gateway.noticesFor(ownerA))
	gt.Bool(t, reminders >= 1).True()
	gt.Bool(t, reminders <= 6).True()
	gt.Bool(t, stored.Outcome(communityA).RemindersSent >= 40).True()
}

func TestSweepDoesNotDoubleRun(t *testing.T) {
	e := newEnv(t, 5*time.Second, time.Hour)
	req := e.confirm(t)

	gt.NoError(t, e.uc.Sweep(context.Background()))
	waitFor(t, 2*time.Second, func() bool {
		return e.gateway.promptCount(ownerA) > 0 && e.gateway.promptCount(ownerB) > 0
	})
	gt.NoError(t, e.uc.Sweep(context.Background()))

	time.Sleep(50 * time.Millisecond)
	gt.Value(t, e.gateway.promptCount(ownerA)).Equal(1)
	gt.Value(t, e.gateway.promptCount(ownerB)).Equal(1)

	gt.NoError(t, e.uc.CancelRequest(context.Background(), req.ID))
	waitFor(t, 2*time.Second, func() bool {
		return !e.uc.IsRunning(req.ID)
	})
}

func TestStartRunRejectsSecondClaim(t *testing.T) {
	e := newEnv(t, 5*time.Second, time.Hour)
	req := e.confirm(t)

	runDone := make(chan struct{})
	go func() {
		defer close(runDone)
		_, _ = e.uc.StartRun(context.Background(), req.ID)
	}()

	waitFor(t, 2*time.Second, func() bool {
		return e.uc.IsRunning(req.ID)
	})

	_, err := e.uc.StartRun(context.Background(), req.ID)
	gt.Error(t, err)

	gt.NoError(t, e.uc.CancelRequest(context.Background(), req.ID))
	<-runDone
}

// Package profile loads the signed-in user's composed profile: the base
// profile row, its optional symbol and the role extension for the user type.
package profile

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"healgenie-portal/internal/portal/backend"
	"healgenie-portal/internal/portal/eventloop"
	"healgenie-portal/internal/portal/notify"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/panics"
)

var ErrUnknownUserType = errors.New("unknown user type")

type State int

const (
	StateUnauthenticated State = iota
	StateLoading
	StateReady
	StateErrored
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateErrored:
		return "errored"
	default:
		return "unauthenticated"
	}
}

// View is one complete load. Exactly one of Doctor and Patient is set.
// Views are shared between snapshots and must not be modified.
type View struct {
	Profile *backend.Profile
	Doctor  *backend.DoctorProfile
	Patient *backend.PatientProfile
	Symbol  *backend.ProfileSymbol
}

func (v *View) UserType() string {
	switch {
	case v == nil:
		return ""
	case v.Doctor != nil:
		return "doctor"
	case v.Patient != nil:
		return "patient"
	}
	return v.Profile.UserType
}

type Snapshot struct {
	State      State
	IdentityID uuid.UUID
	View       *View
	Err        error
}

// tag identifies one load attempt. A completion whose tag is no longer
// current belongs to a previous identity or a superseded load.
type tag struct {
	identity   uuid.UUID
	generation uint64
}

// Loader owns profile state. FetchProfileData and Clear must run on the
// event loop; Refresh, Snapshot, Subscribe and Idle are safe anywhere.
type Loader struct {
	client   backend.Client
	loop     *eventloop.Loop
	notifier notify.Notifier
	log      *logrus.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     conc.WaitGroup

	// loop-owned
	current  tag
	hint     string
	state    State
	view     *View
	err      error
	inflight int
	idle     []chan struct{}

	mu          sync.RWMutex
	snapshot    Snapshot
	subscribers map[int]func(Snapshot)
	nextSubID   int
}

func NewLoader(client backend.Client, loop *eventloop.Loop, notifier notify.Notifier, log *logrus.Logger) *Loader {
	ctx, cancel := context.WithCancel(context.Background())
	return &Loader{
		client:      client,
		loop:        loop,
		notifier:    notifier,
		log:         log,
		ctx:         ctx,
		cancel:      cancel,
		subscribers: make(map[int]func(Snapshot)),
	}
}

// FetchProfileData starts a load for identityID. userTypeHint, when set,
// picks the role extension before the base profile says otherwise.
func (l *Loader) FetchProfileData(identityID uuid.UUID, userTypeHint string) {
	if l.current.identity != identityID {
		l.view = nil
	}
	l.current = tag{identity: identityID, generation: l.current.generation + 1}
	l.hint = userTypeHint
	l.state = StateLoading
	l.err = nil
	l.publish()

	t := l.current
	l.inflight++
	l.wg.Go(func() {
		var view *View
		var err error
		if r := panics.Try(func() { view, err = l.load(l.ctx, identityID, userTypeHint) }); r != nil {
			err = r.AsError()
		}

		if postErr := l.loop.Post(func() { l.finish(t, view, err) }); postErr != nil {
			l.log.Debugf("Dropping profile load for %s: %v", identityID, postErr)
		}
	})
}

// Refresh reloads the current identity. It does nothing when signed out.
func (l *Loader) Refresh() error {
	return l.loop.Post(func() {
		if l.current.identity == uuid.Nil {
			return
		}
		l.FetchProfileData(l.current.identity, l.hint)
	})
}

// Clear drops all profile state and invalidates every load in flight.
func (l *Loader) Clear() {
	l.current = tag{generation: l.current.generation + 1}
	l.hint = ""
	l.state = StateUnauthenticated
	l.view = nil
	l.err = nil
	l.publish()
}

func (l *Loader) Snapshot() Snapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.snapshot
}

// Subscribe calls fn on the event loop after every state transition.
func (l *Loader) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	l.mu.Lock()
	defer l.mu.Unlock()
	id := l.nextSubID
	l.nextSubID++
	l.subscribers[id] = fn

	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.subscribers, id)
	}
}

// Idle blocks until no load is in flight and the last completion has been
// applied. Loads started while it waits are waited for too. Not for use on
// the loop.
func (l *Loader) Idle(ctx context.Context) error {
	var idle chan struct{}
	err := l.loop.Do(ctx, func() {
		if l.inflight > 0 {
			idle = make(chan struct{})
			l.idle = append(l.idle, idle)
		}
	})
	if err != nil || idle == nil {
		return err
	}

	select {
	case <-idle:
		return nil
	case <-l.loop.Done():
		return eventloop.ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close aborts loads in flight and waits for them. The loop must no longer
// start loads by then.
func (l *Loader) Close() {
	l.cancel()
	l.wg.Wait()
}

func (l *Loader) load(ctx context.Context, identityID uuid.UUID, userTypeHint string) (*View, error) {
	profile, err := l.client.GetProfile(ctx, identityID)
	if err != nil {
		return nil, err
	}
	view := &View{Profile: profile}

	if profile.ProfileSymbolID != nil {
		symbol, err := l.client.GetProfileSymbol(ctx, *profile.ProfileSymbolID)
		if err != nil {
			l.log.Warnf("Failed to load profile symbol %d: %+v", *profile.ProfileSymbolID, err)
		} else {
			view.Symbol = symbol
		}
	}

	userType := userTypeHint
	if userType == "" {
		userType = profile.UserType
	}

	switch userType {
	case "doctor":
		view.Doctor, err = l.client.GetDoctorProfile(ctx, identityID)
	case "patient":
		view.Patient, err = l.client.GetPatientProfile(ctx, identityID)
	default:
		err = fmt.Errorf("%w: %q", ErrUnknownUserType, userType)
	}
	if err != nil {
		return nil, err
	}
	return view, nil
}

func (l *Loader) finish(t tag, view *View, err error) {
	l.complete(t, view, err)

	l.inflight--
	if l.inflight == 0 {
		for _, ch := range l.idle {
			close(ch)
		}
		l.idle = nil
	}
}

func (l *Loader) complete(t tag, view *View, err error) {
	if t != l.current {
		l.log.Debugf("Discarding stale profile load for %s", t.identity)
		return
	}

	if err != nil {
		l.log.Warnf("Failed to load profile for %s: %+v", t.identity, err)
		l.state = StateErrored
		l.view = nil
		l.err = err
		l.publish()
		notify.Error(l.notifier, "Failed to load profile", err)
		return
	}

	l.state = StateReady
	l.view = view
	l.err = nil
	l.publish()
}

func (l *Loader) publish() {
	snap := Snapshot{
		State:      l.state,
		IdentityID: l.current.identity,
		View:       l.view,
		Err:        l.err,
	}

	l.mu.Lock()
	l.snapshot = snap
	subscribers := make([]func(Snapshot), 0, len(l.subscribers))
	for _, fn := range l.subscribers {
		subscribers = append(subscribers, fn)
	}
	l.mu.Unlock()

	for _, fn := range subscribers {
		fn(snap)
	}
}

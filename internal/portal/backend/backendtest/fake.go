// Package backendtest provides an in-memory backend.Client for tests.
package backendtest

import (
	"context"
	"net/http"
	"sort"
	"strings"
	"sync"

	"healgenie-portal/internal/portal/backend"

	"github.com/google/uuid"
)

// Fake serves records from maps and emits auth events the way the real
// client does. Calls can be failed or held open per method name.
type Fake struct {
	// OnSignIn and OnSignUp decide the outcome of those calls. A nil hook
	// rejects sign-in and accepts sign-up with a fresh user id.
	OnSignIn func(email, password string) (*backend.Session, error)
	OnSignUp func(req *backend.SignUpRequest) (*backend.Session, error)

	mu            sync.Mutex
	session       *backend.Session
	profiles      map[uuid.UUID]*backend.Profile
	doctors       map[uuid.UUID]*backend.DoctorProfile
	patients      map[uuid.UUID]*backend.PatientProfile
	symbols       map[int]*backend.ProfileSymbol
	records       map[uuid.UUID]*backend.PatientRecord
	prescriptions []backend.Prescription
	failures      map[string]error
	gates         map[string]chan struct{}
	calls         map[string]int
	updates       []*backend.ProfileUpdate
	listeners     map[int]backend.AuthListener
	nextID        int
}

func New() *Fake {
	return &Fake{
		profiles:  make(map[uuid.UUID]*backend.Profile),
		doctors:   make(map[uuid.UUID]*backend.DoctorProfile),
		patients:  make(map[uuid.UUID]*backend.PatientProfile),
		symbols:   make(map[int]*backend.ProfileSymbol),
		records:   make(map[uuid.UUID]*backend.PatientRecord),
		failures:  make(map[string]error),
		gates:     make(map[string]chan struct{}),
		calls:     make(map[string]int),
		listeners: make(map[int]backend.AuthListener),
	}
}

// Session builds a session for a user id and role.
func Session(id uuid.UUID, email, userType string) *backend.Session {
	return &backend.Session{
		AccessToken:  "access-" + id.String(),
		RefreshToken: "refresh-" + id.String(),
		TokenType:    "bearer",
		User: backend.User{
			ID:           id,
			Email:        email,
			UserMetadata: map[string]interface{}{"user_type": userType},
		},
	}
}

func (f *Fake) SetSession(s *backend.Session) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.session = s
}

func (f *Fake) PutProfile(p *backend.Profile) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.profiles[p.ID] = p
}

func (f *Fake) PutDoctor(d *backend.DoctorProfile) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.doctors[d.ID] = d
}

func (f *Fake) PutPatient(p *backend.PatientProfile) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.patients[p.ID] = p
}

func (f *Fake) PutSymbol(s *backend.ProfileSymbol) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.symbols[s.ID] = s
}

func (f *Fake) PutRecord(id uuid.UUID, r *backend.PatientRecord) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records[id] = r
}

func (f *Fake) SetPrescriptions(p []backend.Prescription) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prescriptions = p
}

// Fail makes every later call to method return err.
func (f *Fake) Fail(method string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[method] = err
}

// Block holds calls to method until release is called.
func (f *Fake) Block(method string) (release func()) {
	gate := make(chan struct{})
	f.mu.Lock()
	f.gates[method] = gate
	f.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			f.mu.Lock()
			delete(f.gates, method)
			f.mu.Unlock()
			close(gate)
		})
	}
}

func (f *Fake) Calls(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[method]
}

// TotalCalls counts every record and auth call made so far.
func (f *Fake) TotalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := 0
	for _, n := range f.calls {
		total += n
	}
	return total
}

func (f *Fake) Updates() []*backend.ProfileUpdate {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*backend.ProfileUpdate(nil), f.updates...)
}

// Emit delivers an auth event to every listener on the caller's goroutine.
func (f *Fake) Emit(event backend.AuthEvent, session *backend.Session) {
	f.mu.Lock()
	f.session = session
	listeners := make([]backend.AuthListener, 0, len(f.listeners))
	for _, fn := range f.listeners {
		listeners = append(listeners, fn)
	}
	f.mu.Unlock()

	for _, fn := range listeners {
		fn(event, session)
	}
}

func (f *Fake) Listeners() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.listeners)
}

// enter records the call, waits on any gate and returns the configured failure.
func (f *Fake) enter(ctx context.Context, method string) error {
	f.mu.Lock()
	f.calls[method]++
	gate := f.gates[method]
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	return f.failures[method]
}

func notFound(what string) error {
	return &backend.APIError{Status: http.StatusNotFound, Message: what + " not found"}
}

func (f *Fake) SignInWithPassword(ctx context.Context, email, password string) (*backend.Session, error) {
	if err := f.enter(ctx, "SignInWithPassword"); err != nil {
		return nil, err
	}
	if f.OnSignIn == nil {
		return nil, &backend.APIError{Status: http.StatusUnauthorized, Message: "Invalid login credentials"}
	}
	session, err := f.OnSignIn(email, password)
	if err != nil {
		return nil, err
	}
	f.Emit(backend.EventSignedIn, session)
	return session, nil
}

func (f *Fake) SignUp(ctx context.Context, req *backend.SignUpRequest) (*backend.Session, error) {
	if err := f.enter(ctx, "SignUp"); err != nil {
		return nil, err
	}
	hook := f.OnSignUp
	if hook == nil {
		hook = func(req *backend.SignUpRequest) (*backend.Session, error) {
			return Session(uuid.New(), strings.ToLower(req.Email), req.Data.UserType), nil
		}
	}
	session, err := hook(req)
	if err != nil {
		return nil, err
	}
	f.Emit(backend.EventSignedIn, session)
	return session, nil
}

func (f *Fake) SignOut(ctx context.Context) error {
	if err := f.enter(ctx, "SignOut"); err != nil {
		return err
	}
	f.Emit(backend.EventSignedOut, nil)
	return nil
}

func (f *Fake) GetSession(ctx context.Context) (*backend.Session, error) {
	if err := f.enter(ctx, "GetSession"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.session, nil
}

func (f *Fake) OnAuthStateChange(fn backend.AuthListener) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.nextID
	f.nextID++
	f.listeners[id] = fn
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		delete(f.listeners, id)
	}
}

func (f *Fake) GetProfile(ctx context.Context, id uuid.UUID) (*backend.Profile, error) {
	if err := f.enter(ctx, "GetProfile"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.profiles[id]; ok {
		return p, nil
	}
	return nil, notFound("Profile")
}

func (f *Fake) UpdateProfile(ctx context.Context, id uuid.UUID, update *backend.ProfileUpdate) (*backend.Profile, error) {
	f.mu.Lock()
	f.updates = append(f.updates, update)
	f.mu.Unlock()

	if err := f.enter(ctx, "UpdateProfile"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.profiles[id]
	if !ok {
		p = &backend.Profile{ID: id}
		f.profiles[id] = p
	}
	updated := *p
	if update.ProfileSymbolID != nil {
		updated.ProfileSymbolID = update.ProfileSymbolID
	}
	if update.FirstName != nil {
		updated.FirstName = *update.FirstName
	}
	if update.LastName != nil {
		updated.LastName = *update.LastName
	}
	if update.Phone != nil {
		updated.Phone = update.Phone
	}
	f.profiles[id] = &updated
	return &updated, nil
}

func (f *Fake) GetDoctorProfile(ctx context.Context, id uuid.UUID) (*backend.DoctorProfile, error) {
	if err := f.enter(ctx, "GetDoctorProfile"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if d, ok := f.doctors[id]; ok {
		return d, nil
	}
	return nil, notFound("Doctor profile")
}

func (f *Fake) GetPatientProfile(ctx context.Context, id uuid.UUID) (*backend.PatientProfile, error) {
	if err := f.enter(ctx, "GetPatientProfile"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.patients[id]; ok {
		return p, nil
	}
	return nil, notFound("Patient profile")
}

func (f *Fake) GetProfileSymbol(ctx context.Context, id int) (*backend.ProfileSymbol, error) {
	if err := f.enter(ctx, "GetProfileSymbol"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.symbols[id]; ok {
		return s, nil
	}
	return nil, notFound("Profile symbol")
}

func (f *Fake) ListProfileSymbols(ctx context.Context) ([]backend.ProfileSymbol, error) {
	if err := f.enter(ctx, "ListProfileSymbols"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := make([]int, 0, len(f.symbols))
	for id := range f.symbols {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	out := make([]backend.ProfileSymbol, len(ids))
	for i, id := range ids {
		out[i] = *f.symbols[id]
	}
	return out, nil
}

func (f *Fake) SearchPatients(ctx context.Context, query string, limit int) ([]backend.PatientSearchItem, error) {
	if err := f.enter(ctx, "SearchPatients"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []backend.PatientSearchItem
	for id, p := range f.profiles {
		if p.UserType != "patient" {
			continue
		}
		name := p.FirstName + " " + p.LastName
		if !strings.Contains(strings.ToLower(name), strings.ToLower(query)) {
			continue
		}
		item := backend.PatientSearchItem{ID: id, Name: name}
		if ext, ok := f.patients[id]; ok {
			item.Age = ext.Age
		}
		out = append(out, item)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *Fake) GetPatientRecord(ctx context.Context, id uuid.UUID) (*backend.PatientRecord, error) {
	if err := f.enter(ctx, "GetPatientRecord"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if r, ok := f.records[id]; ok {
		return r, nil
	}
	return nil, notFound("Patient")
}

func (f *Fake) ListPrescriptions(ctx context.Context) ([]backend.Prescription, error) {
	if err := f.enter(ctx, "ListPrescriptions"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]backend.Prescription(nil), f.prescriptions...), nil
}

var _ backend.Client = (*Fake)(nil)

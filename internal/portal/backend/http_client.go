package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"healgenie-portal/config"
	"healgenie-portal/internal/delivery/dto"
	"healgenie-portal/pkg/response"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// HTTPClient talks to the portal server over its JSON API. It owns the
// persisted session and refreshes it when the access token has expired.
type HTTPClient struct {
	baseURL string
	http    *http.Client
	storage SessionStorage
	log     *logrus.Logger
	now     func() time.Time

	mu      sync.Mutex
	session *Session
	loaded  bool
	// epoch moves on every sign-in, refresh and sign-out.
	epoch uint64

	// refreshMu serializes refreshes; a refresh token is single use.
	refreshMu sync.Mutex
	// emitMu keeps listeners seeing changes in the order they were made.
	emitMu sync.Mutex

	listenersMu sync.Mutex
	listeners   map[int]AuthListener
	nextID      int
}

func NewHTTPClient(cfg config.PortalConfig, storage SessionStorage, log *logrus.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL:   strings.TrimRight(cfg.BackendURL, "/"),
		http:      &http.Client{Timeout: cfg.RequestTimeout},
		storage:   storage,
		log:       log,
		now:       time.Now,
		listeners: make(map[int]AuthListener),
	}
}

func (c *HTTPClient) SignInWithPassword(ctx context.Context, email, password string) (*Session, error) {
	var session Session
	req := dto.PasswordGrantRequest{Email: email, Password: password}
	if err := c.do(ctx, http.MethodPost, "/auth/v1/token?grant_type=password", "", req, &session); err != nil {
		return nil, err
	}
	c.setSession(&session, EventSignedIn)
	return &session, nil
}

func (c *HTTPClient) SignUp(ctx context.Context, req *SignUpRequest) (*Session, error) {
	var session Session
	if err := c.do(ctx, http.MethodPost, "/auth/v1/signup", "", req, &session); err != nil {
		return nil, err
	}
	c.setSession(&session, EventSignedIn)
	return &session, nil
}

// SignOut always drops the local session. A rejected token on the server
// side is not an error since the session is gone either way. The local state
// goes first so a refresh still in flight sees it and discards its result.
func (c *HTTPClient) SignOut(ctx context.Context) error {
	// A session still on disk has to be loaded to be revoked.
	c.currentSession()
	dropped := c.clearSession()
	if dropped == nil {
		return nil
	}

	err := c.do(ctx, http.MethodPost, "/auth/v1/logout", dropped.AccessToken, dto.LogoutRequest{RefreshToken: dropped.RefreshToken}, nil)
	if err != nil && !errors.Is(err, ErrUnauthorized) {
		return err
	}
	return nil
}

// GetSession returns the current session, refreshing it first when the
// access token is about to expire. It returns nil without error when no one
// is signed in.
func (c *HTTPClient) GetSession(ctx context.Context) (*Session, error) {
	session, err := c.currentSession()
	if err != nil || session == nil {
		return nil, err
	}
	if !session.Expired(c.now()) {
		return session, nil
	}
	return c.refresh(ctx)
}

func (c *HTTPClient) OnAuthStateChange(fn AuthListener) func() {
	c.listenersMu.Lock()
	defer c.listenersMu.Unlock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = fn

	return func() {
		c.listenersMu.Lock()
		defer c.listenersMu.Unlock()
		delete(c.listeners, id)
	}
}

func (c *HTTPClient) GetProfile(ctx context.Context, id uuid.UUID) (*Profile, error) {
	var profile Profile
	if err := c.authed(ctx, http.MethodGet, "/rest/v1/profiles/"+id.String(), nil, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

func (c *HTTPClient) UpdateProfile(ctx context.Context, id uuid.UUID, update *ProfileUpdate) (*Profile, error) {
	var profile Profile
	if err := c.authed(ctx, http.MethodPatch, "/rest/v1/profiles/"+id.String(), update, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

func (c *HTTPClient) GetDoctorProfile(ctx context.Context, id uuid.UUID) (*DoctorProfile, error) {
	var doctor DoctorProfile
	if err := c.authed(ctx, http.MethodGet, "/rest/v1/doctor_profiles/"+id.String(), nil, &doctor); err != nil {
		return nil, err
	}
	return &doctor, nil
}

func (c *HTTPClient) GetPatientProfile(ctx context.Context, id uuid.UUID) (*PatientProfile, error) {
	var patient PatientProfile
	if err := c.authed(ctx, http.MethodGet, "/rest/v1/patient_profiles/"+id.String(), nil, &patient); err != nil {
		return nil, err
	}
	return &patient, nil
}

func (c *HTTPClient) GetProfileSymbol(ctx context.Context, id int) (*ProfileSymbol, error) {
	var symbol ProfileSymbol
	if err := c.authed(ctx, http.MethodGet, "/rest/v1/profile_symbols/"+strconv.Itoa(id), nil, &symbol); err != nil {
		return nil, err
	}
	return &symbol, nil
}

func (c *HTTPClient) ListProfileSymbols(ctx context.Context) ([]ProfileSymbol, error) {
	var list dto.ProfileSymbolListResponse
	if err := c.authed(ctx, http.MethodGet, "/rest/v1/profile_symbols", nil, &list); err != nil {
		return nil, err
	}
	return list.Symbols, nil
}

func (c *HTTPClient) SearchPatients(ctx context.Context, query string, limit int) ([]PatientSearchItem, error) {
	params := url.Values{}
	params.Set("q", query)
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}

	var result dto.PatientSearchResponse
	if err := c.authed(ctx, http.MethodGet, "/rest/v1/patients?"+params.Encode(), nil, &result); err != nil {
		return nil, err
	}
	return result.Patients, nil
}

func (c *HTTPClient) GetPatientRecord(ctx context.Context, id uuid.UUID) (*PatientRecord, error) {
	var record PatientRecord
	if err := c.authed(ctx, http.MethodGet, "/rest/v1/patients/"+id.String()+"/record", nil, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

func (c *HTTPClient) ListPrescriptions(ctx context.Context) ([]Prescription, error) {
	var prescriptions []Prescription
	if err := c.authed(ctx, http.MethodGet, "/rest/v1/prescriptions", nil, &prescriptions); err != nil {
		return nil, err
	}
	return prescriptions, nil
}

func (c *HTTPClient) currentSession() (*Session, error) {
	session, _, err := c.snapshot()
	return session, err
}

func (c *HTTPClient) snapshot() (*Session, uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.loaded {
		session, err := c.storage.Load()
		if err != nil {
			c.log.Warnf("Failed to load stored session: %+v", err)
		}
		c.session = session
		c.loaded = true
	}
	if c.session == nil {
		return nil, c.epoch, nil
	}
	copied := *c.session
	return &copied, c.epoch, nil
}

func (c *HTTPClient) refresh(ctx context.Context) (*Session, error) {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	// Another caller may have refreshed while we waited.
	current, epoch, err := c.snapshot()
	if err != nil || current == nil {
		return nil, err
	}
	if !current.Expired(c.now()) {
		return current, nil
	}

	var session Session
	req := dto.RefreshTokenRequest{RefreshToken: current.RefreshToken}
	if err := c.do(ctx, http.MethodPost, "/auth/v1/token?grant_type=refresh_token", "", req, &session); err != nil {
		if errors.Is(err, ErrUnauthorized) {
			c.clearSessionAt(epoch)
		}
		return nil, fmt.Errorf("refresh session: %w", err)
	}
	if !c.setSessionAt(epoch, &session, EventTokenRefreshed) {
		// Signed out or in again mid-refresh; the new pair must not outlive it.
		c.revoke(ctx, &session)
		return c.currentSession()
	}
	return &session, nil
}

// revoke logs out a token pair the client will never use.
func (c *HTTPClient) revoke(ctx context.Context, session *Session) {
	err := c.do(ctx, http.MethodPost, "/auth/v1/logout", session.AccessToken, dto.LogoutRequest{RefreshToken: session.RefreshToken}, nil)
	if err != nil {
		c.log.Warnf("Failed to revoke discarded session: %+v", err)
	}
}

func (c *HTTPClient) setSession(session *Session, event AuthEvent) {
	c.mu.Lock()
	c.commit(session, event)
}

// setSessionAt installs session only if nothing changed since epoch.
func (c *HTTPClient) setSessionAt(epoch uint64, session *Session, event AuthEvent) bool {
	c.mu.Lock()
	if c.epoch != epoch {
		c.mu.Unlock()
		return false
	}
	c.commit(session, event)
	return true
}

// clearSession signs out locally and returns the session it dropped.
func (c *HTTPClient) clearSession() *Session {
	c.mu.Lock()
	dropped := c.session
	c.commit(nil, EventSignedOut)
	return dropped
}

func (c *HTTPClient) clearSessionAt(epoch uint64) {
	c.mu.Lock()
	if c.epoch != epoch {
		c.mu.Unlock()
		return
	}
	c.commit(nil, EventSignedOut)
}

// commit is entered with c.mu held and releases it. Storage is written under
// the lock so the file never disagrees with memory; emitMu is taken before
// c.mu is dropped so events go out in commit order.
func (c *HTTPClient) commit(session *Session, event AuthEvent) {
	c.epoch++
	c.loaded = true
	if session == nil {
		c.session = nil
		if err := c.storage.Clear(); err != nil {
			c.log.Warnf("Failed to clear stored session: %+v", err)
		}
	} else {
		copied := *session
		c.session = &copied
		if err := c.storage.Save(session); err != nil {
			c.log.Warnf("Failed to persist session: %+v", err)
		}
	}

	c.emitMu.Lock()
	c.mu.Unlock()
	defer c.emitMu.Unlock()
	c.emit(event, session)
}

// emit calls listeners on the caller's goroutine with only emitMu held.
// Listeners must not change the auth state from inside the callback.
func (c *HTTPClient) emit(event AuthEvent, session *Session) {
	c.listenersMu.Lock()
	listeners := make([]AuthListener, 0, len(c.listeners))
	for _, fn := range c.listeners {
		listeners = append(listeners, fn)
	}
	c.listenersMu.Unlock()

	for _, fn := range listeners {
		if session == nil {
			fn(event, nil)
			continue
		}
		copied := *session
		fn(event, &copied)
	}
}

func (c *HTTPClient) authed(ctx context.Context, method, path string, body, out interface{}) error {
	session, err := c.GetSession(ctx)
	if err != nil {
		return err
	}
	if session == nil {
		return ErrNoSession
	}
	return c.do(ctx, method, path, session.AccessToken, body, out)
}

func (c *HTTPClient) do(ctx context.Context, method, path, token string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	var env response.Envelope
	decodeErr := json.NewDecoder(resp.Body).Decode(&env)

	if resp.StatusCode >= http.StatusMultipleChoices {
		apiErr := &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		if decodeErr == nil {
			if env.Message != "" {
				apiErr.Message = env.Message
			}
			apiErr.Fields = env.Error
		}
		return apiErr
	}
	if decodeErr != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, decodeErr)
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decode %s %s: %w", method, path, err)
		}
	}
	return nil
}

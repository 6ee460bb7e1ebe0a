// Package storetest provides an in-memory implementation of the service
// store interfaces for tests. It mirrors the database's semantics where
// they matter to the engine: the one-active-seat and one-active-waitlist
// partial uniqueness constraints, the per-outing team name constraint, and
// all-or-nothing member batches.
package storetest

import (
	"context"
	"sync"

	"github.com/fairwaylabs/outings/internal/model"
	"github.com/fairwaylabs/outings/internal/repository"
)

// Store holds every collection behind one mutex, so operations are
// linearized exactly like single statements against the database.
type Store struct {
	mu       sync.Mutex
	outings  []*model.Outing
	teams    []*model.Team
	regs     []*model.Registration
	members  []*model.TeamMember
	waitlist []*model.WaitlistEntry

	// OnCreateRegistration runs at the start of CreateWithMembers, before
	// the lock is taken. Tests use it to hold concurrent requests at the
	// persistence step after they have all passed the advisory checks.
	OnCreateRegistration func()
}

// New constructs an empty Store.
func New() *Store {
	return &Store{}
}

// Outings returns the store's OutingStore view.
func (s *Store) Outings() *OutingStore { return &OutingStore{s} }

// Teams returns the store's TeamStore view.
func (s *Store) Teams() *TeamStore { return &TeamStore{s} }

// Registrations returns the store's RegistrationStore view.
func (s *Store) Registrations() *RegistrationStore { return &RegistrationStore{s} }

// Members returns the store's MemberStore view.
func (s *Store) Members() *MemberStore { return &MemberStore{s} }

// Waitlist returns the store's WaitlistStore view.
func (s *Store) Waitlist() *WaitlistStore { return &WaitlistStore{s} }

// hasActiveSeat reports whether (outingID, key) already holds an active
// member; the in-memory stand-in for the partial unique index.
func (s *Store) hasActiveSeat(outingID, key string) bool {
	for _, m := range s.members {
		if m.OutingID == outingID && m.EmailKey == key && m.Status == model.MemberActive {
			return true
		}
	}
	return false
}

// OutingStore implements service.OutingStore.
type OutingStore struct{ s *Store }

func (o *OutingStore) Create(_ context.Context, v *model.Outing) error {
	o.s.mu.Lock()
	defer o.s.mu.Unlock()
	c := *v
	o.s.outings = append(o.s.outings, &c)
	return nil
}

func (o *OutingStore) Update(_ context.Context, v *model.Outing) error {
	o.s.mu.Lock()
	defer o.s.mu.Unlock()
	for i, existing := range o.s.outings {
		if existing.ID == v.ID {
			c := *v
			o.s.outings[i] = &c
			return nil
		}
	}
	return repository.ErrNotFound
}

func (o *OutingStore) GetByID(_ context.Context, id string) (*model.Outing, error) {
	o.s.mu.Lock()
	defer o.s.mu.Unlock()
	for _, existing := range o.s.outings {
		if existing.ID == id {
			c := *existing
			return &c, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (o *OutingStore) List(_ context.Context) ([]model.Outing, error) {
	o.s.mu.Lock()
	defer o.s.mu.Unlock()
	out := make([]model.Outing, 0, len(o.s.outings))
	for _, existing := range o.s.outings {
		out = append(out, *existing)
	}
	return out, nil
}

// TeamStore implements service.TeamStore.
type TeamStore struct{ s *Store }

func (t *TeamStore) Create(_ context.Context, v *model.Team) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	for _, existing := range t.s.teams {
		if existing.OutingID == v.OutingID && existing.Name == v.Name {
			return repository.ErrDuplicateTeamName
		}
	}
	c := *v
	t.s.teams = append(t.s.teams, &c)
	return nil
}

func (t *TeamStore) GetByID(_ context.Context, id string) (*model.Team, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	for _, existing := range t.s.teams {
		if existing.ID == id {
			c := *existing
			return &c, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (t *TeamStore) UpdateStatus(_ context.Context, id, status string) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	for _, existing := range t.s.teams {
		if existing.ID == id {
			existing.Status = status
			return nil
		}
	}
	return repository.ErrNotFound
}

func (t *TeamStore) Delete(_ context.Context, id string) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	for i, existing := range t.s.teams {
		if existing.ID == id {
			t.s.teams = append(t.s.teams[:i], t.s.teams[i+1:]...)
			return nil
		}
	}
	return nil
}

func (t *TeamStore) ListByOuting(_ context.Context, outingID string) ([]model.Team, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	var out []model.Team
	for _, existing := range t.s.teams {
		if existing.OutingID == outingID && existing.Status != model.TeamCancelled {
			out = append(out, *existing)
		}
	}
	return out, nil
}

func (t *TeamStore) CountActive(_ context.Context, outingID string) (int, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	n := 0
	for _, existing := range t.s.teams {
		if existing.OutingID == outingID &&
			(existing.Status == model.TeamActive || existing.Status == model.TeamIncomplete) {
			n++
		}
	}
	return n, nil
}

// RegistrationStore implements service.RegistrationStore.
type RegistrationStore struct{ s *Store }

func (r *RegistrationStore) CreateWithMembers(_ context.Context, reg *model.Registration, members []*model.TeamMember) error {
	if r.s.OnCreateRegistration != nil {
		r.s.OnCreateRegistration()
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	// Constraint check first so the whole batch is all-or-nothing.
	seen := map[string]bool{}
	for _, m := range members {
		if m.Status == model.MemberActive && (r.s.hasActiveSeat(m.OutingID, m.EmailKey) || seen[m.EmailKey]) {
			return repository.ErrDuplicateMember
		}
		seen[m.EmailKey] = true
	}

	c := *reg
	r.s.regs = append(r.s.regs, &c)
	for _, m := range members {
		mc := *m
		r.s.members = append(r.s.members, &mc)
	}
	return nil
}

func (r *RegistrationStore) GetByID(_ context.Context, id string) (*model.Registration, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.regs {
		if existing.ID == id {
			c := *existing
			return &c, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *RegistrationStore) Update(_ context.Context, reg *model.Registration) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.regs {
		if existing.ID == reg.ID {
			existing.Status = reg.Status
			existing.Notes = reg.Notes
			existing.PaymentStatus = reg.PaymentStatus
			existing.CancelledAt = reg.CancelledAt
			existing.UpdatedAt = reg.UpdatedAt
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *RegistrationStore) ListByOuting(_ context.Context, outingID string) ([]model.Registration, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.Registration
	for _, existing := range r.s.regs {
		if existing.OutingID == outingID {
			out = append(out, *existing)
		}
	}
	return out, nil
}

func (r *RegistrationStore) CountByStatus(_ context.Context, outingID, status string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n := 0
	for _, existing := range r.s.regs {
		if existing.OutingID == outingID && existing.Status == status {
			n++
		}
	}
	return n, nil
}

// MemberStore implements service.MemberStore.
type MemberStore struct{ s *Store }

func (m *MemberStore) AddMembers(_ context.Context, members []*model.TeamMember) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	seen := map[string]bool{}
	for _, mem := range members {
		if mem.Status == model.MemberActive && (m.s.hasActiveSeat(mem.OutingID, mem.EmailKey) || seen[mem.EmailKey]) {
			return repository.ErrDuplicateMember
		}
		seen[mem.EmailKey] = true
	}
	for _, mem := range members {
		mc := *mem
		m.s.members = append(m.s.members, &mc)
	}
	return nil
}

func (m *MemberStore) GetByID(_ context.Context, id string) (*model.TeamMember, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, existing := range m.s.members {
		if existing.ID == id {
			c := *existing
			return &c, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MemberStore) Cancel(_ context.Context, id string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, existing := range m.s.members {
		if existing.ID == id {
			existing.Status = model.MemberCancelled
			return nil
		}
	}
	return repository.ErrNotFound
}

func (m *MemberStore) CancelByRegistration(_ context.Context, registrationID string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, existing := range m.s.members {
		if existing.RegistrationID == registrationID {
			existing.Status = model.MemberCancelled
		}
	}
	return nil
}

func (m *MemberStore) ListByRegistration(_ context.Context, registrationID string) ([]model.TeamMember, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var out []model.TeamMember
	for _, existing := range m.s.members {
		if existing.RegistrationID == registrationID {
			out = append(out, *existing)
		}
	}
	return out, nil
}

func (m *MemberStore) ListByTeam(_ context.Context, teamID string) ([]model.TeamMember, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var out []model.TeamMember
	for _, existing := range m.s.members {
		if existing.TeamID == teamID && existing.Status == model.MemberActive {
			out = append(out, *existing)
		}
	}
	return out, nil
}

func (m *MemberStore) FindActiveByEmailKeys(_ context.Context, outingID string, keys []string) ([]model.TeamMember, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	keySet := map[string]bool{}
	for _, k := range keys {
		keySet[k] = true
	}
	var out []model.TeamMember
	for _, existing := range m.s.members {
		if existing.OutingID == outingID && existing.Status == model.MemberActive && keySet[existing.EmailKey] {
			out = append(out, *existing)
		}
	}
	return out, nil
}

func (m *MemberStore) FindActiveByEmail(_ context.Context, outingID, key string) (*model.TeamMember, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, existing := range m.s.members {
		if existing.OutingID == outingID && existing.Status == model.MemberActive && existing.EmailKey == key {
			c := *existing
			return &c, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MemberStore) CountActiveByOuting(_ context.Context, outingID string) (int, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	n := 0
	for _, existing := range m.s.members {
		if existing.OutingID == outingID && existing.Status == model.MemberActive {
			n++
		}
	}
	return n, nil
}

func (m *MemberStore) CountActiveByTeam(_ context.Context, teamID string) (int, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	n := 0
	for _, existing := range m.s.members {
		if existing.TeamID == teamID && existing.Status == model.MemberActive {
			n++
		}
	}
	return n, nil
}

// WaitlistStore implements service.WaitlistStore.
type WaitlistStore struct{ s *Store }

func (w *WaitlistStore) Create(_ context.Context, e *model.WaitlistEntry) error {
	w.s.mu.Lock()
	defer w.s.mu.Unlock()
	for _, existing := range w.s.waitlist {
		if existing.OutingID == e.OutingID && existing.EmailKey == e.EmailKey && existing.Status == model.WaitlistActive {
			return repository.ErrDuplicateWaitlist
		}
	}
	c := *e
	w.s.waitlist = append(w.s.waitlist, &c)
	return nil
}

func (w *WaitlistStore) FindActiveByEmail(_ context.Context, outingID, key string) (*model.WaitlistEntry, error) {
	w.s.mu.Lock()
	defer w.s.mu.Unlock()
	for _, existing := range w.s.waitlist {
		if existing.OutingID == outingID && existing.EmailKey == key && existing.Status == model.WaitlistActive {
			c := *existing
			return &c, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (w *WaitlistStore) ListByOuting(_ context.Context, outingID string) ([]model.WaitlistEntry, error) {
	w.s.mu.Lock()
	defer w.s.mu.Unlock()
	var out []model.WaitlistEntry
	for _, existing := range w.s.waitlist {
		if existing.OutingID == outingID {
			out = append(out, *existing)
		}
	}
	return out, nil
}

func (w *WaitlistStore) CountActive(_ context.Context, outingID string) (int, error) {
	w.s.mu.Lock()
	defer w.s.mu.Unlock()
	n := 0
	for _, existing := range w.s.waitlist {
		if existing.OutingID == outingID && existing.Status == model.WaitlistActive {
			n++
		}
	}
	return n, nil
}

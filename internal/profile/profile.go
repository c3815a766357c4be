// Package profile manages family member profiles and the emergency
// contact.
package profile

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/echohealth/echohealth/internal/model"
	"github.com/echohealth/echohealth/internal/store"
)

var (
	// ErrProfileLimit rejects additions once MaxProfiles exist. The store
	// is left untouched.
	ErrProfileLimit = fmt.Errorf("at most %d profiles allowed", model.MaxProfiles)
	// ErrNotFound means no profile has the given id.
	ErrNotFound = errors.New("profile not found")
)

// DefaultRelation is used when a profile is added without one.
const DefaultRelation = "Family Member"

// IDSource mints profile IDs.
type IDSource interface {
	NewID() string
}

// Manager layers profile invariants over the durable bucket: at most
// MaxProfiles, zero or one current, current pointer repaired when its
// target disappears.
type Manager struct {
	kv  store.KV
	ids IDSource
}

// NewManager builds a manager over the durable bucket.
func NewManager(kv store.KV, ids IDSource) *Manager {
	return &Manager{kv: kv, ids: ids}
}

// List returns all profiles. Missing or corrupt storage yields none.
func (m *Manager) List(ctx context.Context) ([]model.FamilyProfile, error) {
	var profiles []model.FamilyProfile
	if _, err := store.GetJSON(ctx, m.kv, store.KeyFamilyProfiles, &profiles); err != nil {
		return nil, err
	}
	return profiles, nil
}

// Add creates a profile. The first profile added becomes current.
func (m *Manager) Add(ctx context.Context, name, relation string) (model.FamilyProfile, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.FamilyProfile{}, errors.New("profile name is required")
	}
	relation = strings.TrimSpace(relation)
	if relation == "" {
		relation = DefaultRelation
	}

	profiles, err := m.List(ctx)
	if err != nil {
		return model.FamilyProfile{}, err
	}
	if len(profiles) >= model.MaxProfiles {
		return model.FamilyProfile{}, ErrProfileLimit
	}

	p := model.FamilyProfile{
		ID:        m.ids.NewID(),
		Name:      name,
		Relation:  relation,
		DateAdded: time.Now().UTC(),
		Results:   []model.ResultSnapshot{},
	}
	profiles = append(profiles, p)
	if err := store.SetJSON(ctx, m.kv, store.KeyFamilyProfiles, profiles); err != nil {
		return model.FamilyProfile{}, err
	}
	if len(profiles) == 1 {
		if err := m.setCurrentID(ctx, p.ID); err != nil {
			return model.FamilyProfile{}, err
		}
	}
	return p, nil
}

// Remove deletes a profile. When the current profile is removed the
// pointer moves to the first remaining profile, or clears if none remain.
func (m *Manager) Remove(ctx context.Context, id string) error {
	profiles, err := m.List(ctx)
	if err != nil {
		return err
	}
	kept := profiles[:0]
	found := false
	for _, p := range profiles {
		if p.ID == id {
			found = true
			continue
		}
		kept = append(kept, p)
	}
	if !found {
		return ErrNotFound
	}
	if err := store.SetJSON(ctx, m.kv, store.KeyFamilyProfiles, kept); err != nil {
		return err
	}

	curID, err := m.currentID(ctx)
	if err != nil {
		return err
	}
	if curID != id {
		return nil
	}
	if len(kept) > 0 {
		return m.setCurrentID(ctx, kept[0].ID)
	}
	return m.kv.Remove(ctx, store.KeyCurrentProfile)
}

// SetCurrent marks the profile with the given id as current.
func (m *Manager) SetCurrent(ctx context.Context, id string) error {
	profiles, err := m.List(ctx)
	if err != nil {
		return err
	}
	for _, p := range profiles {
		if p.ID == id {
			return m.setCurrentID(ctx, id)
		}
	}
	return ErrNotFound
}

// Current returns the active profile, or nil when none is set. A pointer
// left dangling by out-of-band edits is repaired to the first remaining
// profile, matching Remove's behavior.
func (m *Manager) Current(ctx context.Context) (*model.FamilyProfile, error) {
	curID, err := m.currentID(ctx)
	if err != nil {
		return nil, err
	}
	if curID == "" {
		return nil, nil
	}
	profiles, err := m.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range profiles {
		if profiles[i].ID == curID {
			return &profiles[i], nil
		}
	}
	if len(profiles) == 0 {
		if err := m.kv.Remove(ctx, store.KeyCurrentProfile); err != nil {
			return nil, err
		}
		return nil, nil
	}
	if err := m.setCurrentID(ctx, profiles[0].ID); err != nil {
		return nil, err
	}
	return &profiles[0], nil
}

// AppendResult records a denormalized snapshot of the aggregate result
// onto the current profile's history, newest first. Without a current
// profile it is a no-op.
func (m *Manager) AppendResult(ctx context.Context, res model.AssessmentResult) error {
	cur, err := m.Current(ctx)
	if err != nil || cur == nil {
		return err
	}
	profiles, err := m.List(ctx)
	if err != nil {
		return err
	}
	snap := model.ResultSnapshot{
		Date:      res.CompletedAt,
		Score:     res.Score,
		RiskLevel: res.RiskLevel,
	}
	for i := range profiles {
		if profiles[i].ID == cur.ID {
			profiles[i].Results = append([]model.ResultSnapshot{snap}, profiles[i].Results...)
		}
	}
	return store.SetJSON(ctx, m.kv, store.KeyFamilyProfiles, profiles)
}

// Contact returns the emergency contact, or nil when unset.
func (m *Manager) Contact(ctx context.Context) (*model.EmergencyContact, error) {
	var c model.EmergencyContact
	ok, err := store.GetJSON(ctx, m.kv, store.KeyEmergencyContact, &c)
	if err != nil || !ok {
		return nil, err
	}
	if c.Name == "" || c.Phone == "" {
		return nil, nil
	}
	return &c, nil
}

// SetContact stores the emergency contact.
func (m *Manager) SetContact(ctx context.Context, c model.EmergencyContact) error {
	c.Name = strings.TrimSpace(c.Name)
	c.Phone = strings.TrimSpace(c.Phone)
	if c.Name == "" || c.Phone == "" {
		return errors.New("contact name and phone are required")
	}
	return store.SetJSON(ctx, m.kv, store.KeyEmergencyContact, c)
}

func (m *Manager) currentID(ctx context.Context) (string, error) {
	var id string
	if _, err := store.GetJSON(ctx, m.kv, store.KeyCurrentProfile, &id); err != nil {
		return "", err
	}
	return id, nil
}

func (m *Manager) setCurrentID(ctx context.Context, id string) error {
	return store.SetJSON(ctx, m.kv, store.KeyCurrentProfile, id)
}

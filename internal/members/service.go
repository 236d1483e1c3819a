package members

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/splitkit-dev/splitkit/internal/id"
	"github.com/splitkit-dev/splitkit/internal/model"
)

// FileName is the members file inside a trip directory.
const FileName = "members.csv"

// ErrDuplicateName is returned when a trip would contain two members with
// the same display name.
var ErrDuplicateName = errors.New("duplicate member name")

// Service provides in-memory lookup over a trip's members.
type Service struct {
	members []model.Member
	byID    map[model.MemberID]model.Member
}

// NewService creates a Service from a slice of members.
func NewService(members []model.Member) *Service {
	byID := make(map[model.MemberID]model.Member, len(members))
	for _, m := range members {
		byID[m.ID] = m
	}
	return &Service{members: members, byID: byID}
}

// FromNames builds members from display names, deriving unique IDs.
// Blank names are skipped; repeated names are rejected.
func FromNames(names []string) ([]model.Member, error) {
	var out []model.Member
	taken := make(map[string]bool)
	seenName := make(map[string]bool)
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		key := strings.ToLower(n)
		if seenName[key] {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateName, n)
		}
		seenName[key] = true

		slug := id.MemberSlug(n, func(s string) bool { return taken[s] })
		taken[slug] = true
		out = append(out, model.Member{ID: model.MemberID(slug), Name: n})
	}
	return out, nil
}

// Load reads members.csv from a trip directory and returns a Service.
func Load(tripDir string) (*Service, error) {
	path := filepath.Join(tripDir, FileName)
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening members: %w", err)
	}
	defer f.Close()

	ms, err := ReadMembers(f)
	if err != nil {
		return nil, fmt.Errorf("reading members: %w", err)
	}
	return NewService(ms), nil
}

// All returns all members in file order.
func (s *Service) All() []model.Member {
	return s.members
}

// Get returns a member by ID.
func (s *Service) Get(id model.MemberID) (model.Member, bool) {
	m, ok := s.byID[id]
	return m, ok
}

// Exists reports whether a member ID exists.
func (s *Service) Exists(id model.MemberID) bool {
	_, ok := s.byID[id]
	return ok
}

// Name returns the display name for id, or the ID itself when unknown.
func (s *Service) Name(id model.MemberID) string {
	if m, ok := s.byID[id]; ok {
		return m.Name
	}
	return string(id)
}

// Resolve finds a member by ID or, failing that, by case-insensitive name.
func (s *Service) Resolve(ref string) (model.Member, bool) {
	if m, ok := s.byID[model.MemberID(ref)]; ok {
		return m, true
	}
	for _, m := range s.members {
		if strings.EqualFold(m.Name, ref) {
			return m, true
		}
	}
	return model.Member{}, false
}

// Save writes the members to members.csv in tripDir.
func (s *Service) Save(tripDir string) error {
	if err := os.MkdirAll(tripDir, 0o755); err != nil {
		return fmt.Errorf("creating trip dir: %w", err)
	}

	path := filepath.Join(tripDir, FileName)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating members file: %w", err)
	}
	defer f.Close()

	if err := WriteMembers(f, s.members); err != nil {
		return fmt.Errorf("writing members: %w", err)
	}
	return nil
}

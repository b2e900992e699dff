package roster

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"capworks/internal/domain/validation"
)

type markKey struct {
	profileID string
	date      string
}

// Book keeps worker profiles and their attendance marks.
type Book struct {
	mu       sync.Mutex
	profiles []Profile
	marks    map[markKey]string
	now      func() time.Time
}

func NewBook() *Book {
	return &Book{marks: map[markKey]string{}, now: time.Now}
}

func validateProfile(p Profile) error {
	var c validation.Collector
	c.Required("name", p.Name)
	if p.DateOfBirth.IsZero() {
		c.Add("dateOfBirth")
	}
	c.Required("phone", p.Phone)
	return c.Err()
}

func normalizeProfile(p Profile) Profile {
	p.Name = strings.TrimSpace(p.Name)
	p.Phone = strings.TrimSpace(p.Phone)
	p.Email = strings.TrimSpace(p.Email)
	p.PhotoURL = strings.TrimSpace(p.PhotoURL)
	return p
}

func (b *Book) AddProfile(p Profile) (Profile, error) {
	p = normalizeProfile(p)
	if err := validateProfile(p); err != nil {
		return Profile{}, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	p.ID = uuid.NewString()
	p.CreatedAt = b.now().UTC()
	b.profiles = append(b.profiles, p)
	return p, nil
}

func (b *Book) UpdateProfile(id string, p Profile) (Profile, error) {
	p = normalizeProfile(p)
	if err := validateProfile(p); err != nil {
		return Profile{}, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	idx := b.index(id)
	if idx < 0 {
		return Profile{}, fmt.Errorf("%w: %s", ErrProfileNotFound, id)
	}
	p.ID = id
	p.CreatedAt = b.profiles[idx].CreatedAt
	b.profiles[idx] = p
	return p, nil
}

// RemoveProfile deletes the profile together with its attendance marks.
func (b *Book) RemoveProfile(id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	idx := b.index(id)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrProfileNotFound, id)
	}
	b.profiles = append(b.profiles[:idx], b.profiles[idx+1:]...)
	for key := range b.marks {
		if key.profileID == id {
			delete(b.marks, key)
		}
	}
	return nil
}

func (b *Book) Profile(id string) (Profile, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	idx := b.index(id)
	if idx < 0 {
		return Profile{}, fmt.Errorf("%w: %s", ErrProfileNotFound, id)
	}
	return b.profiles[idx], nil
}

// Profiles lists profiles whose name contains term (case-insensitive) or
// whose phone contains term. An empty term lists everything.
func (b *Book) Profiles(term string) []Profile {
	term = strings.TrimSpace(term)
	needle := strings.ToLower(term)

	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Profile, 0, len(b.profiles))
	for _, p := range b.profiles {
		if term != "" && !strings.Contains(strings.ToLower(p.Name), needle) && !strings.Contains(p.Phone, term) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func (b *Book) Count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.profiles)
}

// MarkAttendance sets the status of a profile for a day, replacing any
// earlier mark for that day.
func (b *Book) MarkAttendance(profileID string, day time.Time, status string) (Mark, error) {
	var c validation.Collector
	if day.IsZero() {
		c.Add("date")
	}
	if !validStatus(status) {
		c.Add("status")
	}
	if err := c.Err(); err != nil {
		return Mark{}, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.index(profileID) < 0 {
		return Mark{}, fmt.Errorf("%w: %s", ErrProfileNotFound, profileID)
	}
	date := day.Format(DateLayout)
	b.marks[markKey{profileID: profileID, date: date}] = status
	return Mark{ProfileID: profileID, Date: date, Status: status}, nil
}

// Attendance lists every profile with its status for day.
func (b *Book) Attendance(day time.Time) []AttendanceRow {
	date := day.Format(DateLayout)

	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]AttendanceRow, 0, len(b.profiles))
	for _, p := range b.profiles {
		status, ok := b.marks[markKey{profileID: p.ID, date: date}]
		if !ok {
			status = StatusNotMarked
		}
		out = append(out, AttendanceRow{ProfileID: p.ID, Name: p.Name, Date: date, Status: status})
	}
	return out
}

func (b *Book) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	state := State{Profiles: make([]Profile, len(b.profiles)), Marks: make([]Mark, 0, len(b.marks))}
	copy(state.Profiles, b.profiles)
	for key, status := range b.marks {
		state.Marks = append(state.Marks, Mark{ProfileID: key.profileID, Date: key.date, Status: status})
	}
	sort.Slice(state.Marks, func(i, j int) bool {
		if state.Marks[i].ProfileID == state.Marks[j].ProfileID {
			return state.Marks[i].Date < state.Marks[j].Date
		}
		return state.Marks[i].ProfileID < state.Marks[j].ProfileID
	})
	return state
}

func (b *Book) Restore(state State) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.profiles = append([]Profile(nil), state.Profiles...)
	b.marks = make(map[markKey]string, len(state.Marks))
	for _, m := range state.Marks {
		if !validStatus(m.Status) {
			continue
		}
		b.marks[markKey{profileID: m.ProfileID, date: m.Date}] = m.Status
	}
}

func (b *Book) index(id string) int {
	for i, p := range b.profiles {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func validStatus(status string) bool {
	for _, allowed := range AttendanceStatuses {
		if status == allowed {
			return true
		}
	}
	return false
}

package session

import "sync"

// Field names a single persisted session attribute
type Field string

const (
	FieldAccessToken  Field = "access_token"
	FieldRefreshToken Field = "refresh_token"
	FieldUserID       Field = "user_id"
	FieldUserEmail    Field = "user_email"
	FieldFullName     Field = "full_name"
	FieldIsAdmin      Field = "is_admin"
)

// Fields lists every persisted field in a stable order
var Fields = []Field{
	FieldAccessToken,
	FieldRefreshToken,
	FieldUserID,
	FieldUserEmail,
	FieldFullName,
	FieldIsAdmin,
}

// Session is the locally persisted state of an authenticated user.
// IsAdmin only controls what the client shows; the server decides capability.
type Session struct {
	AccessToken  string `json:"access_token,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
	UserID       string `json:"user_id,omitempty"`
	UserEmail    string `json:"user_email,omitempty"`
	FullName     string `json:"full_name,omitempty"`
	IsAdmin      bool   `json:"is_admin,omitempty"`
}

// Active reports whether the session carries a usable access token
func (s Session) Active() bool {
	return s.AccessToken != ""
}

// Value returns the string form of a field and whether it is present.
// is_admin reads back as "1" when set and is absent otherwise.
func (s Session) Value(f Field) (string, bool) {
	var v string
	switch f {
	case FieldAccessToken:
		v = s.AccessToken
	case FieldRefreshToken:
		v = s.RefreshToken
	case FieldUserID:
		v = s.UserID
	case FieldUserEmail:
		v = s.UserEmail
	case FieldFullName:
		v = s.FullName
	case FieldIsAdmin:
		if s.IsAdmin {
			v = "1"
		}
	}
	return v, v != ""
}

// Store defines the session persistence operations.
// Save and Clear write all fields at once; readers never observe a partial set.
type Store interface {
	Save(s Session) error
	Load() (Session, error)
	Get(f Field) (string, bool)
	SetAccessToken(token string) error
	Clear() error
	IsActive() bool
}

// MemoryStore keeps the session in process memory
type MemoryStore struct {
	mu      sync.RWMutex
	session Session
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Save(s Session) error {
	m.mu.Lock()
	m.session = s
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Load() (Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.session, nil
}

func (m *MemoryStore) Get(f Field) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.session.Value(f)
}

func (m *MemoryStore) SetAccessToken(token string) error {
	m.mu.Lock()
	m.session.AccessToken = token
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Clear() error {
	m.mu.Lock()
	m.session = Session{}
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) IsActive() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.session.Active()
}

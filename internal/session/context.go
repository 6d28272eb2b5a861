package session

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// Values are the named entries of one session, JSON encoded.
type Values map[string]json.RawMessage

func (v Values) clone() Values {
	out := make(Values, len(v))
	for k, raw := range v {
		out[k] = append(json.RawMessage(nil), raw...)
	}
	return out
}

// Context is the request-scoped view of one session. It is owned by the
// request handling that session and must not be shared across goroutines.
type Context struct {
	id        string
	values    Values
	destroyed bool
	dirty     bool
}

// NewID returns a fresh random session identifier.
func NewID() string {
	return uuid.NewString()
}

// NewContext wraps loaded values; nil values start an empty session.
func NewContext(id string, values Values) *Context {
	if values == nil {
		values = Values{}
	}
	return &Context{id: id, values: values.clone()}
}

func (c *Context) ID() string {
	return c.id
}

func (c *Context) Has(key string) bool {
	_, ok := c.values[key]
	return ok
}

// Get decodes the value under key into dst. It reports false when absent.
func (c *Context) Get(key string, dst any) (bool, error) {
	raw, ok := c.values[key]
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return true, fmt.Errorf(errDecodeValueFmt, key, err)
	}
	return true, nil
}

func (c *Context) Set(key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf(errEncodeValueFmt, key, err)
	}
	c.values[key] = raw
	c.dirty = true
	return nil
}

func (c *Context) Delete(key string) {
	if _, ok := c.values[key]; ok {
		delete(c.values, key)
		c.dirty = true
	}
}

// UserData returns a copy of the authenticated principal, if any.
// An undecodable entry is treated as absent.
func (c *Context) UserData() (*AuthSession, bool) {
	var s AuthSession
	ok, err := c.Get(KeyUserData, &s)
	if !ok || err != nil {
		return nil, false
	}
	return &s, true
}

func (c *Context) SetUserData(s *AuthSession) error {
	if s == nil {
		c.Delete(KeyUserData)
		return nil
	}
	return c.Set(KeyUserData, s)
}

// Destroy marks the session for removal from its store. Values not deleted
// explicitly stay readable until the request ends.
func (c *Context) Destroy() {
	c.destroyed = true
	c.dirty = true
}

func (c *Context) Destroyed() bool {
	return c.destroyed
}

func (c *Context) Dirty() bool {
	return c.dirty
}

// Values returns a copy of the current entries.
func (c *Context) Values() Values {
	return c.values.clone()
}

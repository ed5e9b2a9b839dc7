package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Template is a pre-built workflow offered to users as a starting point.
// Definition is stored verbatim; nothing in the write path interprets it.
type Template struct {
	ID          string         `gorm:"type:uuid;primaryKey" json:"id,omitempty"`
	Name        string         `gorm:"not null" json:"name"`
	Description string         `gorm:"type:text" json:"description"`
	Category    string         `gorm:"index;not null" json:"category"`
	Tags        pq.StringArray `gorm:"type:text[]" json:"tags" swaggertype:"array,string"`
	IsPublic    bool           `gorm:"not null;default:false" json:"is_public"`
	Definition  Definition     `gorm:"type:jsonb;not null" json:"definition"`
	CreatedAt   time.Time      `json:"created_at,omitempty"`
}

// TableName ensures consistent table naming
func (Template) TableName() string {
	return "templates"
}

// BeforeCreate assigns an id when inserting through a direct connection.
// Inserts through the REST endpoint leave it empty so the column default applies.
func (t *Template) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

// MarshalJSON omits created_at until the row has been stored
func (t Template) MarshalJSON() ([]byte, error) {
	type alias Template
	out := struct {
		alias
		CreatedAt *time.Time `json:"created_at,omitempty"`
	}{alias: alias(t)}
	if !t.CreatedAt.IsZero() {
		out.CreatedAt = &t.CreatedAt
	}
	return json.Marshal(out)
}

// Definition is the workflow graph of a template
type Definition struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Node is one step of a workflow graph. Data is provider specific.
type Node struct {
	ID   string                 `json:"id"`
	Type string                 `json:"type"`
	Data map[string]interface{} `json:"data"`
}

// Edge connects two nodes by id
type Edge struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// Value implements driver.Valuer so the graph is written as JSON
func (d Definition) Value() (driver.Value, error) {
	b, err := json.Marshal(d)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner for jsonb and text columns
func (d *Definition) Scan(value interface{}) error {
	var raw []byte
	switch v := value.(type) {
	case nil:
		*d = Definition{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into Definition", value)
	}
	return json.Unmarshal(raw, d)
}

// Validate checks that every edge references existing nodes and that node
// ids are unique. Seeding never calls it; authors own that invariant.
func (d Definition) Validate() error {
	if len(d.Nodes) == 0 {
		return errors.New("definition must contain at least one node")
	}

	ids := make(map[string]bool, len(d.Nodes))
	for _, n := range d.Nodes {
		if n.ID == "" {
			return errors.New("node id cannot be empty")
		}
		if ids[n.ID] {
			return fmt.Errorf("duplicate node id %q", n.ID)
		}
		ids[n.ID] = true
	}

	for _, e := range d.Edges {
		if !ids[e.Source] {
			return fmt.Errorf("edge source %q does not match a node", e.Source)
		}
		if !ids[e.Target] {
			return fmt.Errorf("edge target %q does not match a node", e.Target)
		}
	}
	return nil
}

// Providers lists the distinct providers referenced by node data, in node order
func (d Definition) Providers() []string {
	var providers []string
	seen := map[string]bool{}
	for _, n := range d.Nodes {
		p, ok := n.Data["provider"].(string)
		if !ok || p == "" || seen[p] {
			continue
		}
		seen[p] = true
		providers = append(providers, p)
	}
	return providers
}

// HasTag reports whether the template carries the given tag
func (t *Template) HasTag(tag string) bool {
	for _, existing := range t.Tags {
		if existing == tag {
			return true
		}
	}
	return false
}

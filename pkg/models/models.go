package models

import "sort"

// Kind is the discriminant that identifies a credential variant
type Kind string

// Known credential kinds
const (
	KindDatabase Kind = "database"
)

// DefaultPort is used for database credentials created without a port
const DefaultPort = 3306

// Credential is a named secret stored inside a project
type Credential interface {
	// Name identifies the credential within its project
	Name() string

	// Kind returns the discriminant written alongside the credential
	Kind() Kind
}

// DatabaseCredential holds the connection details for a database account
type DatabaseCredential struct {
	CredentialName string
	Host           string
	User           string
	Password       string
	Port           int
}

// NewDatabaseCredential creates a database credential, applying DefaultPort when port is 0
func NewDatabaseCredential(name, host, user, password string, port int) *DatabaseCredential {
	if port == 0 {
		port = DefaultPort
	}
	return &DatabaseCredential{
		CredentialName: name,
		Host:           host,
		User:           user,
		Password:       password,
		Port:           port,
	}
}

// Name returns the credential name
func (c *DatabaseCredential) Name() string { return c.CredentialName }

// Kind returns KindDatabase
func (c *DatabaseCredential) Kind() Kind { return KindDatabase }

// Project groups credentials under a name unique within the vault
type Project struct {
	Name        string
	Description string

	credentials map[string]Credential
}

// NewProject creates an empty project
func NewProject(name, description string) *Project {
	return &Project{
		Name:        name,
		Description: description,
		credentials: make(map[string]Credential),
	}
}

// AddCredential stores c under its name, replacing any credential with the same name
func (p *Project) AddCredential(c Credential) {
	if p.credentials == nil {
		p.credentials = make(map[string]Credential)
	}
	p.credentials[c.Name()] = c
}

// RemoveCredential deletes the named credential and reports whether it existed
func (p *Project) RemoveCredential(name string) bool {
	if _, ok := p.credentials[name]; !ok {
		return false
	}
	delete(p.credentials, name)
	return true
}

// Credential looks up a credential by name
func (p *Project) Credential(name string) (Credential, bool) {
	c, ok := p.credentials[name]
	return c, ok
}

// Credentials returns a snapshot of the project's credentials sorted by name
func (p *Project) Credentials() []Credential {
	creds := make([]Credential, 0, len(p.credentials))
	for _, c := range p.credentials {
		creds = append(creds, c)
	}
	sort.Slice(creds, func(i, j int) bool {
		return creds[i].Name() < creds[j].Name()
	})
	return creds
}

// Len returns the number of credentials in the project
func (p *Project) Len() int {
	return len(p.credentials)
}

// Clone returns a deep copy of the project
func (p *Project) Clone() *Project {
	clone := NewProject(p.Name, p.Description)
	for name, c := range p.credentials {
		if db, ok := c.(*DatabaseCredential); ok {
			cp := *db
			clone.credentials[name] = &cp
			continue
		}
		clone.credentials[name] = c
	}
	return clone
}

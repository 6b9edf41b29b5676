// Package codec converts the project graph to and from the JSON document that is
// encrypted inside a vault file.
//
// The document has the shape
//
//	{"projects": {<name>: {"name", "description", "credentials": {<name>: {"type", ...}}}}}
//
// Every credential object carries a "type" discriminant. Objects whose type is not
// recognised are skipped on decode and reported in Document.Skipped.
package codec

import (
	"encoding/json"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/Nymos1111/dev-password-organizer/pkg/models"
)

// ErrMalformed is returned when a payload is not a valid vault document
var ErrMalformed = errors.New("malformed vault document")

// ErrUnsupportedKind is returned when a credential has no registered encoding
var ErrUnsupportedKind = errors.New("unsupported credential kind")

// Document is the decoded content of a vault payload
type Document struct {
	Projects map[string]*models.Project
	Skipped  []Skipped
}

// Skipped identifies a credential dropped on decode because its kind is unknown
type Skipped struct {
	Project string
	Name    string
	Kind    models.Kind
}

type documentJSON struct {
	Projects map[string]projectJSON `json:"projects"`
}

type projectJSON struct {
	Name        string                     `json:"name"`
	Description string                     `json:"description"`
	Credentials map[string]json.RawMessage `json:"credentials"`
}

type credentialHeader struct {
	Type models.Kind `json:"type"`
}

type databaseJSON struct {
	Type     models.Kind `json:"type"`
	Name     string      `json:"name"`
	Host     string      `json:"host"`
	User     string      `json:"user"`
	Password string      `json:"password"`
	Port     *int        `json:"port"`
}

// Marshal encodes projects as an indented UTF-8 JSON document. Map keys are sorted, so
// the output depends only on field values.
func Marshal(projects map[string]*models.Project) ([]byte, error) {
	doc := documentJSON{Projects: make(map[string]projectJSON, len(projects))}

	for key, p := range projects {
		pj := projectJSON{
			Name:        p.Name,
			Description: p.Description,
			Credentials: make(map[string]json.RawMessage, p.Len()),
		}
		for _, c := range p.Credentials() {
			raw, err := marshalCredential(c)
			if err != nil {
				return nil, fmt.Errorf("project %q: %w", key, err)
			}
			pj.Credentials[c.Name()] = raw
		}
		doc.Projects[key] = pj
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode vault document: %w", err)
	}
	return data, nil
}

func marshalCredential(c models.Credential) (json.RawMessage, error) {
	switch v := c.(type) {
	case *models.DatabaseCredential:
		port := v.Port
		return json.Marshal(databaseJSON{
			Type:     models.KindDatabase,
			Name:     v.CredentialName,
			Host:     v.Host,
			User:     v.User,
			Password: v.Password,
			Port:     &port,
		})
	default:
		return nil, fmt.Errorf("%w: credential %q has kind %q", ErrUnsupportedKind, c.Name(), c.Kind())
	}
}

// Unmarshal decodes a vault document. Missing or empty project and credential maps
// decode as empty. Projects are keyed by their name field, falling back to the map key;
// two entries resolving to the same name are malformed.
func Unmarshal(data []byte) (*Document, error) {
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("%w: payload is not valid UTF-8", ErrMalformed)
	}

	var raw documentJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	doc := &Document{Projects: make(map[string]*models.Project, len(raw.Projects))}
	for key, pj := range raw.Projects {
		name := pj.Name
		if name == "" {
			name = key
		}
		if _, dup := doc.Projects[name]; dup {
			return nil, fmt.Errorf("%w: duplicate project name %q", ErrMalformed, name)
		}
		p := models.NewProject(name, pj.Description)

		for credKey, rc := range pj.Credentials {
			var hdr credentialHeader
			if err := json.Unmarshal(rc, &hdr); err != nil {
				return nil, fmt.Errorf("%w: project %q credential %q: %v", ErrMalformed, name, credKey, err)
			}

			switch hdr.Type {
			case models.KindDatabase:
				c, err := unmarshalDatabase(credKey, rc)
				if err != nil {
					return nil, fmt.Errorf("%w: project %q credential %q: %v", ErrMalformed, name, credKey, err)
				}
				p.AddCredential(c)
			default:
				doc.Skipped = append(doc.Skipped, Skipped{Project: name, Name: credKey, Kind: hdr.Type})
			}
		}

		doc.Projects[name] = p
	}

	return doc, nil
}

func unmarshalDatabase(key string, rc json.RawMessage) (*models.DatabaseCredential, error) {
	var dj databaseJSON
	if err := json.Unmarshal(rc, &dj); err != nil {
		return nil, err
	}

	name := dj.Name
	if name == "" {
		name = key
	}
	if dj.Port == nil {
		return models.NewDatabaseCredential(name, dj.Host, dj.User, dj.Password, models.DefaultPort), nil
	}
	// An explicit port is kept as stored, including 0
	return &models.DatabaseCredential{
		CredentialName: name,
		Host:           dj.Host,
		User:           dj.User,
		Password:       dj.Password,
		Port:           *dj.Port,
	}, nil
}

package codec

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nymos1111/dev-password-organizer/pkg/models"
)

func sampleProjects() map[string]*models.Project {
	infra := models.NewProject("infra", "prod infra")
	infra.AddCredential(models.NewDatabaseCredential("db1", "10.0.0.5", "admin", "s3cr3t", 5432))
	infra.AddCredential(models.NewDatabaseCredential("db2", "10.0.0.6", "root", "пароль", 0))

	empty := models.NewProject("sandbox", "")

	return map[string]*models.Project{
		infra.Name: infra,
		empty.Name: empty,
	}
}

func requireDatabase(t *testing.T, p *models.Project, name string) *models.DatabaseCredential {
	t.Helper()
	c, ok := p.Credential(name)
	require.True(t, ok, "credential %q missing", name)
	db, ok := c.(*models.DatabaseCredential)
	require.True(t, ok, "credential %q is %T", name, c)
	return db
}

func TestRoundTrip(t *testing.T) {
	data, err := Marshal(sampleProjects())
	require.NoError(t, err)

	doc, err := Unmarshal(data)
	require.NoError(t, err)
	assert.Empty(t, doc.Skipped)
	require.Len(t, doc.Projects, 2)

	infra := doc.Projects["infra"]
	require.NotNil(t, infra)
	assert.Equal(t, "prod infra", infra.Description)
	require.Equal(t, 2, infra.Len())

	db1 := requireDatabase(t, infra, "db1")
	assert.Equal(t, "10.0.0.5", db1.Host)
	assert.Equal(t, "admin", db1.User)
	assert.Equal(t, "s3cr3t", db1.Password)
	assert.Equal(t, 5432, db1.Port)

	db2 := requireDatabase(t, infra, "db2")
	assert.Equal(t, "пароль", db2.Password)
	assert.Equal(t, models.DefaultPort, db2.Port)

	assert.Equal(t, 0, doc.Projects["sandbox"].Len())
}

func TestMarshal_Stable(t *testing.T) {
	first, err := Marshal(sampleProjects())
	require.NoError(t, err)

	doc, err := Unmarshal(first)
	require.NoError(t, err)

	second, err := Marshal(doc.Projects)
	require.NoError(t, err)
	assert.JSONEq(t, string(first), string(second))
}

func TestMarshal_Shape(t *testing.T) {
	data, err := Marshal(sampleProjects())
	require.NoError(t, err)

	var generic map[string]map[string]map[string]any
	require.NoError(t, json.Unmarshal(data, &generic))

	infra := generic["projects"]["infra"]
	assert.Equal(t, "infra", infra["name"])
	assert.Equal(t, "prod infra", infra["description"])

	creds := infra["credentials"].(map[string]any)
	db1 := creds["db1"].(map[string]any)
	assert.Equal(t, "database", db1["type"])
	assert.Equal(t, "db1", db1["name"])
	assert.Equal(t, "10.0.0.5", db1["host"])
	assert.Equal(t, "admin", db1["user"])
	assert.Equal(t, "s3cr3t", db1["password"])
	assert.Equal(t, float64(5432), db1["port"])
}

func TestUnmarshal_EmptyAndMissingMaps(t *testing.T) {
	for _, payload := range []string{
		`{}`,
		`{"projects": {}}`,
		`{"projects": null}`,
	} {
		doc, err := Unmarshal([]byte(payload))
		require.NoError(t, err, payload)
		assert.Empty(t, doc.Projects, payload)
	}

	doc, err := Unmarshal([]byte(`{"projects": {
		"a": {"name": "a", "description": "no creds"},
		"b": {"name": "b", "description": "", "credentials": {}},
		"c": {"name": "c", "description": "", "credentials": null}
	}}`))
	require.NoError(t, err)
	require.Len(t, doc.Projects, 3)
	for _, p := range doc.Projects {
		assert.Equal(t, 0, p.Len(), p.Name)
	}
}

func TestUnmarshal_SkipsUnknownKinds(t *testing.T) {
	doc, err := Unmarshal([]byte(`{"projects": {"infra": {
		"name": "infra",
		"description": "prod infra",
		"credentials": {
			"db1": {"type": "database", "name": "db1", "host": "h", "user": "u", "password": "p", "port": 5432},
			"key": {"type": "ssh-key", "name": "key", "private": "-----BEGIN"},
			"untyped": {"name": "untyped"}
		}
	}}}`))
	require.NoError(t, err)

	infra := doc.Projects["infra"]
	require.NotNil(t, infra)
	assert.Equal(t, 1, infra.Len())
	requireDatabase(t, infra, "db1")

	assert.ElementsMatch(t, []Skipped{
		{Project: "infra", Name: "key", Kind: "ssh-key"},
		{Project: "infra", Name: "untyped", Kind: ""},
	}, doc.Skipped)
}

func TestUnmarshal_FallbacksAndDefaults(t *testing.T) {
	doc, err := Unmarshal([]byte(`{"projects": {"infra": {
		"description": "d",
		"credentials": {"db1": {"type": "database", "host": "h", "user": "u", "password": "p"}}
	}}}`))
	require.NoError(t, err)

	infra := doc.Projects["infra"]
	require.NotNil(t, infra)
	assert.Equal(t, "infra", infra.Name)

	db1 := requireDatabase(t, infra, "db1")
	assert.Equal(t, "db1", db1.Name())
	assert.Equal(t, models.DefaultPort, db1.Port)
}

func TestUnmarshal_ExplicitZeroPort(t *testing.T) {
	doc, err := Unmarshal([]byte(`{"projects": {"infra": {"name": "infra",
		"credentials": {"db1": {"type": "database", "name": "db1", "host": "h", "user": "u", "password": "p", "port": 0}}
	}}}`))
	require.NoError(t, err)
	assert.Equal(t, 0, requireDatabase(t, doc.Projects["infra"], "db1").Port)

	p := models.NewProject("infra", "")
	p.AddCredential(&models.DatabaseCredential{CredentialName: "db1", Host: "h", User: "u", Password: "p"})
	data, err := Marshal(map[string]*models.Project{"infra": p})
	require.NoError(t, err)

	doc, err = Unmarshal(data)
	require.NoError(t, err)
	assert.Equal(t, 0, requireDatabase(t, doc.Projects["infra"], "db1").Port)
}

func TestUnmarshal_DuplicateProjectNames(t *testing.T) {
	_, err := Unmarshal([]byte(`{"projects": {"a": {"name": "x"}, "b": {"name": "x"}}}`))
	assert.ErrorIs(t, err, ErrMalformed)

	_, err = Unmarshal([]byte(`{"projects": {"x": {}, "b": {"name": "x"}}}`))
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestUnmarshal_Malformed(t *testing.T) {
	for _, payload := range [][]byte{
		[]byte(``),
		[]byte(`not json`),
		[]byte(`{"projects": []}`),
		[]byte(`{"projects": {"a": {"credentials": {"x": 42}}}}`),
		[]byte(`{"projects": {"a": {"credentials": {"x": {"type": "database", "port": "abc"}}}}}`),
		{'{', '"', 0xff, 0xfe, '"', ':', '1', '}'},
	} {
		_, err := Unmarshal(payload)
		assert.ErrorIs(t, err, ErrMalformed, "payload %q", payload)
	}
}

type otherCredential struct{ name string }

func (c otherCredential) Name() string      { return c.name }
func (c otherCredential) Kind() models.Kind { return "ssh-key" }

func TestMarshal_UnsupportedKind(t *testing.T) {
	p := models.NewProject("infra", "")
	p.AddCredential(otherCredential{name: "key"})

	_, err := Marshal(map[string]*models.Project{"infra": p})
	assert.ErrorIs(t, err, ErrUnsupportedKind)
}

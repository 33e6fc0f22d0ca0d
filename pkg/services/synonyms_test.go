package services

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeToken(t *testing.T) {
	assert.Equal(t, "employee", NormalizeToken("Employees"))
	assert.Equal(t, "hire_date", NormalizeToken("Hire Date"))
	assert.Equal(t, "salary", NormalizeToken("salaries"))
}

func TestLoadAliasesDefaults(t *testing.T) {
	dict, err := LoadAliases("")
	require.NoError(t, err)
	assert.Contains(t, dict["salary"], "compensation")
	assert.Contains(t, dict["department"], "dept")
}

func TestLoadAliasesOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aliases.yaml")
	require.NoError(t, os.WriteFile(path, []byte("salary:\n  - wages\nbonus:\n  - incentive\n"), 0o600))

	dict, err := LoadAliases(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"wages"}, dict["salary"])
	assert.Equal(t, []string{"incentive"}, dict["bonus"])
	// Untouched entries keep defaults.
	assert.Contains(t, dict["department"], "dept")
}

func TestBuildSynonyms(t *testing.T) {
	dict, err := LoadAliases("")
	require.NoError(t, err)

	synonyms := dict.BuildSynonyms([]tableVocabulary{
		{name: "employees", columns: []string{"id", "name", "salary", "department_id"}},
	})

	employeeSyns := synonyms["employees"]
	assert.Contains(t, employeeSyns, "employees")
	assert.Contains(t, employeeSyns, "employee")
	assert.Contains(t, employeeSyns, "staff")
	assert.Contains(t, employeeSyns, "compensation")
	assert.Contains(t, employeeSyns, "dept")
}

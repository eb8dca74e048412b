package process

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckerPasses(t *testing.T) {
	var c Checker
	c.RequireFunc("factory", false)
	c.RequireString("id", "calc")
	c.Require("mode", true, "unused")
	assert.Nil(t, c.Violations())
	assert.Nil(t, c.Names())
}

func TestCheckerRecordsBothStages(t *testing.T) {
	var c Checker
	c.RequireFunc("new_content", true)
	c.RequireString("id", "  ")
	c.Require("launch_mode", false, "must be a known mode")

	violations := c.Violations()
	assert.Len(t, violations, 3)
	assert.Equal(t, KindMethod, violations[0].Kind)
	assert.Equal(t, KindAttribute, violations[1].Kind)
	assert.Equal(t, []string{"new_content", "id", "launch_mode"}, c.Names())
}

func TestValidationErrorNamesEveryMember(t *testing.T) {
	var c Checker
	c.RequireFunc("new_content", true)
	c.RequireString("name", "")

	err := ValidationError("app calc", c.Violations())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "app calc")
	assert.Contains(t, err.Error(), "new_content")
	assert.Contains(t, err.Error(), "name")
}

func TestValidationErrorNilOnSuccess(t *testing.T) {
	assert.NoError(t, ValidationError("subject", nil))
}

func TestViolationNames(t *testing.T) {
	var c Checker
	c.RequireFunc("a", true)
	c.RequireString("b", "")
	assert.Equal(t, "a,b", ViolationNames(c.Violations()))
}

func TestIdentityUIDPrefix(t *testing.T) {
	id := NewIdentity("app", "calc_2", "AppProcess")
	assert.Equal(t, "calc_2", id.ProcessID())
	assert.Contains(t, id.UID(), "appprocess:")
}

package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPolicyIsTerminal(t *testing.T) {
	assert.False(t, (&Policy{Status: PolicyStatusPending}).IsTerminal())
	assert.False(t, (&Policy{Status: PolicyStatusPendingApproval}).IsTerminal())
	assert.True(t, (&Policy{Status: PolicyStatusApproved}).IsTerminal())
	assert.True(t, (&Policy{Status: PolicyStatusRejected}).IsTerminal())
}

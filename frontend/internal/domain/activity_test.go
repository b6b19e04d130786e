package frontend_domain

import (
	"encoding/json"
	"testing"

	"github.com/microsmart/portal/shared/domain"
	"github.com/stretchr/testify/assert"
)

func TestActivities(t *testing.T) {
	in := []domain.Activity{
		{Type: domain.ActivityPayment, Details: json.RawMessage(`{"loan_id": 3, "amount": 120.5}`)},
		{Type: domain.ActivityLogin},
		{Type: "note", Details: json.RawMessage(`"manual entry"`)},
	}

	out := Activities(in)

	assert.Len(t, out, 3)
	assert.Equal(t, "amount: 120.5, loan id: 3", out[0].Summary)
	assert.Equal(t, "", out[1].Summary)
	assert.Equal(t, "manual entry", out[2].Summary)
	assert.Equal(t, domain.ActivityPayment, out[0].Type)
}
